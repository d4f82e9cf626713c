package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModalMsg represents messages that the modal handles
type ModalMsg interface {
	isModalMsg()
}

type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel is a centred dialog drawn over the panes
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
	Height  int
}

func NewModalModel() ModalModel {
	return ModalModel{Width: 60, Height: 10}
}

func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		*m = ModalModel{Width: m.Width, Height: m.Height}
	}
}

// ModalView overlays the modal on backgroundView
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
	}

	parts := []string{lipgloss.NewStyle().Bold(true).Render(model.Title)}
	if model.Content != "" {
		parts = append(parts, model.Content)
	}
	if model.Options != "" {
		parts = append(parts, model.Options)
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2).
		Width(min(model.Width, windowWidth-4)).
		Height(min(model.Height, windowHeight-4)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(parts, "\n\n"))

	bgLines := strings.Split(backgroundView, "\n")
	modalLines := strings.Split(modal, "\n")
	startY := max((windowHeight-len(modalLines))/2, 0)
	startX := max((windowWidth-lipgloss.Width(modalLines[0]))/2, 0)

	var b strings.Builder
	for i, bg := range bgLines {
		if i > 0 {
			b.WriteString("\n")
		}
		idx := i - startY
		if idx < 0 || idx >= len(modalLines) {
			b.WriteString(bg)
			continue
		}
		line := modalLines[idx]
		if startX > 0 {
			b.WriteString(truncateToVisualWidth(bg, startX))
		}
		b.WriteString(line)
		if endX := startX + lipgloss.Width(line); endX < lipgloss.Width(bg) {
			b.WriteString(truncateFromVisualWidth(bg, endX))
		}
	}
	return b.String()
}

// ShowDeleteConfirmation asks before deleting a history item.
func ShowDeleteConfirmation(title string, index int) ShowModalMsg {
	return ShowModalMsg{
		Title:   "Delete Item?",
		Content: fmt.Sprintf("%d. %s", index, truncateRunes(title, 48)),
		Options: "[Y] Yes, delete    [N] No, cancel",
	}
}

// ShowExportPrompt asks for the export format.
func ShowExportPrompt(title string, hasPosts bool) ShowModalMsg {
	opts := "[t] txt  [p] pdf  [d] docx"
	if hasPosts {
		opts += "  [z] zip"
	}
	return ShowModalMsg{
		Title:   "Export",
		Content: truncateRunes(title, 48),
		Options: opts + "    [Esc] cancel",
	}
}

// ShowErrorModal reports a failed action.
func ShowErrorModal(title string, err error) ShowModalMsg {
	return ShowModalMsg{
		Title:   title,
		Content: err.Error(),
		Options: "Press any key to continue",
	}
}

// truncateToVisualWidth keeps the first targetWidth visible columns of a
// styled string. ANSI escapes are copied through.
func truncateToVisualWidth(s string, targetWidth int) string {
	if targetWidth <= 0 {
		return ""
	}
	var b strings.Builder
	width := 0
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		}
		if inEscape {
			b.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		if width >= targetWidth {
			break
		}
		b.WriteRune(r)
		width++
	}
	return b.String()
}

// truncateFromVisualWidth drops the first startWidth visible columns of a
// styled string, keeping escapes seen before the cut.
func truncateFromVisualWidth(s string, startWidth int) string {
	if startWidth <= 0 {
		return s
	}
	runes := []rune(s)
	var pending strings.Builder
	width := 0
	inEscape := false
	for i, r := range runes {
		switch {
		case r == '\x1b':
			inEscape = true
			pending.WriteRune(r)
		case inEscape:
			pending.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
		default:
			if width >= startWidth {
				return pending.String() + string(runes[i:])
			}
			width++
		}
	}
	return ""
}
