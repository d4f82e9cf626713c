package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/yiblet/proboost/internal/history"
)

// Entry is one history item as shown in the browser, with its document
// text wrapped for the current pane width.
type Entry struct {
	Item history.HistoryItem
	Text string

	Lines         []string // wrapped Text
	SearchMatches []int    // line numbers with matches
	wrapWidth     int
}

func newEntry(item history.HistoryItem) *Entry {
	return &Entry{Item: item, Text: previewText(item)}
}

func entriesFor(items []history.HistoryItem) []*Entry {
	out := make([]*Entry, len(items))
	for i, item := range items {
		out[i] = newEntry(item)
	}
	return out
}

// previewText is the exportable document when there is one, otherwise the
// raw output pretty-printed.
func previewText(item history.HistoryItem) string {
	if text, err := history.DocumentText(item); err == nil {
		return text
	}
	raw := bytes.TrimSpace(item.Output)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "(no output)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Header is the metadata block shown above the document.
func (e *Entry) Header() string {
	ts := time.UnixMilli(e.Item.Timestamp).Local().Format("2006-01-02 15:04")
	return fmt.Sprintf("%s · %s", e.Item.FeatureType, ts)
}

// UpdateWrappedLines rewraps Text when the width changed.
func (e *Entry) UpdateWrappedLines(width int) {
	if width == e.wrapWidth && e.Lines != nil {
		return
	}
	e.wrapWidth = width
	e.Lines = WrapText(e.Text, width)
}

// performSearch records the wrapped lines matching pattern, case-insensitively.
func (e *Entry) performSearch(pattern string) error {
	e.SearchMatches = nil
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	for n, line := range e.Lines {
		if re.MatchString(line) {
			e.SearchMatches = append(e.SearchMatches, n)
		}
	}
	return nil
}
