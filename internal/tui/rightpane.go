package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RightPaneMsg represents messages that the preview pane handles
type RightPaneMsg interface {
	isRightPaneMsg()
}

type ScrollToTopMsg struct{}

func (ScrollToTopMsg) isRightPaneMsg() {}

type ScrollToBottomMsg struct {
	MaxScroll int
}

func (ScrollToBottomMsg) isRightPaneMsg() {}

type PageUpMsg struct{}

func (PageUpMsg) isRightPaneMsg() {}

type PageDownMsg struct {
	MaxScroll int
}

func (PageDownMsg) isRightPaneMsg() {}

type JumpMsg struct {
	Direction string // "j" for down, "k" for up
	Lines     int
	MaxScroll int
}

func (JumpMsg) isRightPaneMsg() {}

type ResizeRightPaneMsg struct {
	Width  int
	Height int
}

func (ResizeRightPaneMsg) isRightPaneMsg() {}

// ResetViewMsg scrolls back to the top after the selection changed.
type ResetViewMsg struct{}

func (ResetViewMsg) isRightPaneMsg() {}

// RightPaneModel holds the state for the document preview
type RightPaneModel struct {
	Width   int
	Height  int
	ViewPos int // First visible line
}

func NewRightPaneModel(width, height int) RightPaneModel {
	return RightPaneModel{Width: width, Height: height}
}

func (r *RightPaneModel) Update(msg RightPaneMsg) {
	switch m := msg.(type) {
	case ScrollToTopMsg, ResetViewMsg:
		r.ViewPos = 0
	case ScrollToBottomMsg:
		r.ViewPos = m.MaxScroll
	case PageUpMsg:
		r.ViewPos = max(r.ViewPos-r.pageSize()/2, 0)
	case PageDownMsg:
		r.ViewPos = min(r.ViewPos+r.pageSize()/2, m.MaxScroll)
	case JumpMsg:
		switch m.Direction {
		case "j":
			r.ViewPos = min(r.ViewPos+m.Lines, m.MaxScroll)
		case "k":
			r.ViewPos = max(r.ViewPos-m.Lines, 0)
		}
	case ResizeRightPaneMsg:
		r.Width = m.Width
		r.Height = m.Height
	}
}

// pageSize is the number of document lines on screen.
func (r *RightPaneModel) pageSize() int {
	return max(r.Height-7, 1)
}

// textWidth is the wrap width of the document.
func (r *RightPaneModel) textWidth() int {
	return max(r.Width-6, 1)
}

// RightPaneView renders the selected item's document
func RightPaneView(model RightPaneModel, entry *Entry, search SearchModel, focused bool, index int) string {
	borderColor := "62"
	if focused {
		borderColor = "205"
		if search.IsActive() {
			borderColor = "220"
		}
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width - 2).
		Height(model.Height - 4)

	bold := lipgloss.NewStyle().Bold(true)
	if entry == nil {
		return style.Render(bold.Render("Preview") + "\n\nNo item selected")
	}

	entry.UpdateWrappedLines(model.textWidth())
	page := model.pageSize()

	title := fmt.Sprintf("[%d] %s", index, entry.Item.Title)
	if focused {
		title = "● " + title
	}
	if maxScroll := getMaxScroll(model, entry); maxScroll > 0 {
		bottom := min(model.ViewPos+page, len(entry.Lines))
		title += fmt.Sprintf(" (%d-%d/%d)", model.ViewPos+1, bottom, len(entry.Lines))
	}

	var b strings.Builder
	b.WriteString(bold.Render(truncateRunes(title, model.textWidth())) + "\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(entry.Header()) + "\n\n")

	matchLines := make(map[int]bool, len(search.Matches))
	for _, n := range search.Matches {
		matchLines[n] = true
	}

	end := min(model.ViewPos+page, len(entry.Lines))
	for i := model.ViewPos; i < end; i++ {
		line := entry.Lines[i]
		if matchLines[i] && search.Pattern != "" {
			line = highlightSearchMatches(line, search.Pattern, i == search.CurrentMatchLine())
		}
		b.WriteString(line + "\n")
	}

	return style.Render(strings.TrimSuffix(b.String(), "\n"))
}

func highlightSearchMatches(line, pattern string, current bool) string {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return line
	}
	matches := re.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return line
	}

	bg := "11"
	if current {
		bg = "220"
	}
	hl := lipgloss.NewStyle().Background(lipgloss.Color(bg)).Foreground(lipgloss.Color("0"))

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(line[last:m[0]])
		b.WriteString(hl.Render(line[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

func getMaxScroll(model RightPaneModel, entry *Entry) int {
	if entry == nil {
		return 0
	}
	entry.UpdateWrappedLines(model.textWidth())
	return max(len(entry.Lines)-model.pageSize(), 0)
}

// scrollToMatch centres a match line in the pane.
func scrollToMatch(model RightPaneModel, entry *Entry, line int) int {
	pos := max(0, line-model.pageSize()/2)
	return min(pos, getMaxScroll(model, entry))
}
