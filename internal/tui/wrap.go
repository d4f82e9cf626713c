package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WrapText wraps text to maxWidth display columns, breaking on spaces when
// possible. Blank lines are kept; runs of spaces collapse to one.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if lipgloss.Width(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

func wrapLine(line string, maxWidth int) []string {
	var (
		result []string
		cur    strings.Builder
		width  int
	)
	flush := func() {
		if width > 0 {
			result = append(result, cur.String())
			cur.Reset()
			width = 0
		}
	}

	for _, word := range strings.Fields(line) {
		w := lipgloss.Width(word)
		if w > maxWidth {
			flush()
			result = append(result, breakWord(word, maxWidth)...)
			continue
		}
		if width > 0 && width+1+w > maxWidth {
			flush()
		}
		if width > 0 {
			cur.WriteByte(' ')
			width++
		}
		cur.WriteString(word)
		width += w
	}
	flush()
	return result
}

// breakWord splits a word wider than maxWidth into chunks by rune.
func breakWord(word string, maxWidth int) []string {
	var (
		out   []string
		cur   strings.Builder
		width int
	)
	for _, r := range word {
		w := lipgloss.Width(string(r))
		if width+w > maxWidth && width > 0 {
			out = append(out, cur.String())
			cur.Reset()
			width = 0
		}
		cur.WriteRune(r)
		width += w
	}
	if width > 0 {
		out = append(out, cur.String())
	}
	return out
}

// truncateRunes shortens s to limit display columns, ending in "..." when cut.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= limit {
		return s
	}
	if limit <= 3 {
		return strings.Repeat(".", limit)
	}
	var b strings.Builder
	width := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if width+w > limit-3 {
			break
		}
		b.WriteRune(r)
		width += w
	}
	return b.String() + "..."
}
