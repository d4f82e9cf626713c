package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LeftPaneMsg represents messages that the history list handles
type LeftPaneMsg interface {
	isLeftPaneMsg()
}

type GoToTopMsg struct{}

func (GoToTopMsg) isLeftPaneMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isLeftPaneMsg() {}

type JumpToIndexMsg struct {
	Index    int
	MaxIndex int
}

func (JumpToIndexMsg) isLeftPaneMsg() {}

type ResizeLeftPaneMsg struct {
	Width  int
	Height int
}

func (ResizeLeftPaneMsg) isLeftPaneMsg() {}

// LeftPaneModel holds the state for the history list
type LeftPaneModel struct {
	Cursor int // Selected item index
	Offset int // First visible item
	Width  int
	Height int
}

func NewLeftPaneModel(width, height int) LeftPaneModel {
	return LeftPaneModel{Width: width, Height: height}
}

// visibleRows is how many items fit under the pane title.
func (l *LeftPaneModel) visibleRows() int {
	return max(l.Height-6, 1)
}

func (l *LeftPaneModel) Update(msg LeftPaneMsg) {
	switch m := msg.(type) {
	case GoToTopMsg:
		l.Cursor = 0
	case GoToBottomMsg:
		if m.MaxIndex >= 0 {
			l.Cursor = m.MaxIndex
		}
	case JumpToIndexMsg:
		if m.Index >= 0 && m.Index <= m.MaxIndex {
			l.Cursor = m.Index
		}
	case ResizeLeftPaneMsg:
		l.Width = m.Width
		l.Height = m.Height
	}
	l.keepCursorVisible()
}

func (l *LeftPaneModel) keepCursorVisible() {
	rows := l.visibleRows()
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+rows {
		l.Offset = l.Cursor - rows + 1
	}
	l.Offset = max(l.Offset, 0)
}

// LeftPaneView renders the history list
func LeftPaneView(model LeftPaneModel, items []*Entry, filter string, limit int, focused bool) string {
	borderColor := "62"
	if focused {
		borderColor = "205"
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width).
		Height(model.Height - 4)

	var content strings.Builder
	title := fmt.Sprintf("History (%d/%d)", len(items), limit)
	if filter != "" {
		title = fmt.Sprintf("Matches /%s (%d)", filter, len(items))
	}
	if focused {
		title = "● " + title
	}
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(truncateRunes(title, model.Width-2)) + "\n\n")

	if len(items) == 0 {
		content.WriteString(lipgloss.NewStyle().Faint(true).Render("Nothing here yet"))
		return style.Render(content.String())
	}

	end := min(model.Offset+model.visibleRows(), len(items))
	for i := model.Offset; i < end; i++ {
		title := strings.ReplaceAll(items[i].Item.Title, "\n", " ")
		line := truncateRunes(fmt.Sprintf("%d. %s", i, title), model.Width-2)
		if i == model.Cursor {
			line = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				Width(model.Width - 2).
				Render(line)
		}
		content.WriteString(line + "\n")
	}

	return style.Render(strings.TrimSuffix(content.String(), "\n"))
}
