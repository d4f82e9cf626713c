// Package tui is the interactive history browser: a list of recorded
// generations on the left and the selected item's document on the right.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/clipboard"
	"github.com/yiblet/proboost/internal/export"
	"github.com/yiblet/proboost/internal/history"
)

// PaneType represents which pane is focused
type PaneType int

const (
	LeftPane PaneType = iota
	RightPane
)

// UIMode represents the current modal state of the browser
type UIMode int

const (
	NormalMode UIMode = iota
	SearchMode
	FilterMode
	HelpMode
	NumberInputMode
	DeleteMode
	RenameMode
	ExportMode
	ErrorMode
)

const flashDuration = 2 * time.Second

type flashExpiredMsg struct{}

// exportDoneMsg reports a finished background export.
type exportDoneMsg struct {
	name     string
	location string
	err      error
}

// AppModel orchestrates the panes, the modal and the history it browses
type AppModel struct {
	Width       int
	Height      int
	LeftWidth   int
	RightWidth  int
	ActivePane  PaneType
	CurrentMode UIMode

	LeftPane  LeftPaneModel
	RightPane RightPaneModel
	Search    SearchModel
	Modal     ModalModel
	Items     []*Entry

	Filter string // history filter pattern, empty for all items
	Input  string // text being typed in filter or rename mode

	// Number prefix for commands like "10j"
	NumberBuffer string
	BufferPane   PaneType

	FlashMessage string
	FlashExpiry  time.Time

	app       *app.App
	clipboard clipboard.Clipboard
}

// NewAppModel creates a browser over a's history. cb may be nil.
func NewAppModel(a *app.App, cb clipboard.Clipboard) AppModel {
	// Real sizes arrive with the first resize.
	const (
		width      = 120
		height     = 20
		leftWidth  = 30
		rightWidth = 88
	)
	m := AppModel{
		Width:      width,
		Height:     height,
		LeftWidth:  leftWidth,
		RightWidth: rightWidth,
		LeftPane:   NewLeftPaneModel(leftWidth, height),
		RightPane:  NewRightPaneModel(rightWidth, height),
		Search:     NewSearchModel(),
		Modal:      NewModalModel(),
		app:        a,
		clipboard:  cb,
	}
	m.reload()
	return m
}

// Run starts the browser and blocks until the user quits.
func Run(a *app.App, cb clipboard.Clipboard) error {
	m := NewAppModel(a, cb)
	if _, err := tea.NewProgram(&m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run history browser: %w", err)
	}
	return nil
}

func (a *AppModel) Init() tea.Cmd {
	return nil
}

func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(m.Width, m.Height)
		return a, nil
	case tea.KeyMsg:
		return a.handleKeyPress(m.String())
	case exportDoneMsg:
		if m.err != nil {
			a.Modal.Update(ShowErrorModal("Export Failed", m.err))
			a.CurrentMode = ErrorMode
			return a, nil
		}
		return a, a.setFlashMessage("Saved "+m.location, flashDuration)
	case flashExpiredMsg:
		if !time.Now().Before(a.FlashExpiry) {
			a.FlashMessage = ""
			a.FlashExpiry = time.Time{}
		}
		return a, nil
	}
	return a, nil
}

func (a *AppModel) resize(width, height int) {
	const (
		minTotalWidth = 30
		minLeftWidth  = 15
		minRightWidth = 20
		preferredLeft = 30
		borderSpacing = 2
	)
	a.Width = max(width, minTotalWidth)
	a.Height = height

	if a.Width < minLeftWidth+minRightWidth+borderSpacing {
		a.LeftWidth = minLeftWidth
		a.RightWidth = max(a.Width-a.LeftWidth-borderSpacing, minRightWidth)
	} else {
		a.LeftWidth = max(min(preferredLeft, a.Width/3), minLeftWidth)
		a.RightWidth = a.Width - a.LeftWidth - borderSpacing
		if a.RightWidth < minRightWidth {
			a.RightWidth = minRightWidth
			a.LeftWidth = a.Width - a.RightWidth - borderSpacing
		}
	}

	a.LeftPane.Update(ResizeLeftPaneMsg{Width: a.LeftWidth, Height: a.Height})
	a.RightPane.Update(ResizeRightPaneMsg{Width: a.RightWidth, Height: a.Height})
	a.RightPane.Update(ResetViewMsg{})
}

// handleKeyPress dispatches on the mode before looking at the key
func (a *AppModel) handleKeyPress(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		return a, tea.Quit
	}
	switch a.CurrentMode {
	case SearchMode:
		return a.handleSearchModeKeys(key)
	case FilterMode:
		return a.handleFilterModeKeys(key)
	case HelpMode:
		return a.handleHelpModeKeys(key)
	case NumberInputMode:
		return a.handleNumberInputModeKeys(key)
	case DeleteMode:
		return a.handleDeleteModeKeys(key)
	case RenameMode:
		return a.handleRenameModeKeys(key)
	case ExportMode:
		return a.handleExportModeKeys(key)
	case ErrorMode:
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	default:
		return a.handleNormalModeKeys(key)
	}
}

func (a *AppModel) handleSearchModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		a.Search.Update(CancelSearchMsg{})
		a.CurrentMode = NormalMode
	case "enter":
		a.Search.Update(ExecuteSearchMsg{})
		if a.Search.Error != "" {
			return a, nil
		}
		if e := a.selected(); e != nil {
			e.UpdateWrappedLines(a.RightPane.textWidth())
			e.performSearch(a.Search.Pattern)
			a.Search.SetMatches(e.SearchMatches)
			a.jumpToCurrentMatch()
		}
		a.CurrentMode = NormalMode
	default:
		a.Search.Update(UpdateSearchInputMsg{Input: editInput(a.Search.Input, key)})
	}
	return a, nil
}

func (a *AppModel) handleFilterModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		a.Input = ""
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		pattern := strings.TrimSpace(a.Input)
		if pattern != "" {
			if _, err := a.app.History.Search(pattern, 1); err != nil {
				return a, a.setFlashMessage(err.Error(), flashDuration)
			}
		}
		a.Filter = pattern
		a.Input = ""
		a.CurrentMode = NormalMode
		a.LeftPane.Update(GoToTopMsg{})
		a.reload()
		return a, nil
	default:
		a.Input = editInput(a.Input, key)
		return a, nil
	}
}

func (a *AppModel) handleHelpModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "z", "esc", "q":
		a.CurrentMode = NormalMode
	}
	return a, nil
}

func (a *AppModel) handleNumberInputModeKeys(key string) (tea.Model, tea.Cmd) {
	switch {
	case key == "esc":
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a, nil
	case key == "backspace":
		a.NumberBuffer = a.NumberBuffer[:len(a.NumberBuffer)-1]
		if a.NumberBuffer == "" {
			a.CurrentMode = NormalMode
		}
		return a, nil
	case key >= "0" && key <= "9":
		a.NumberBuffer += key
		return a, nil
	case isMovementCommand(key):
		multiplier := 1
		if n, err := strconv.Atoi(a.NumberBuffer); err == nil {
			multiplier = n
		}
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a.executeCommand(multiplier, key, a.BufferPane)
	default:
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a, nil
	}
}

func (a *AppModel) handleDeleteModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		e := a.selected()
		if e == nil {
			return a, nil
		}
		if !a.app.History.Delete(e.Item.ID) {
			a.reload()
			return a, a.setFlashMessage("Item no longer exists", flashDuration)
		}
		a.reload()
		return a, a.setFlashMessage("Item deleted", flashDuration)
	case "n", "N", "esc":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
	}
	return a, nil
}

func (a *AppModel) handleRenameModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		a.Input = ""
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		title := strings.TrimSpace(a.Input)
		if title == "" {
			return a, a.setFlashMessage("Title cannot be empty", flashDuration)
		}
		a.Input = ""
		a.CurrentMode = NormalMode
		e := a.selected()
		if e == nil || !a.app.History.Rename(e.Item.ID, title) {
			a.reload()
			return a, a.setFlashMessage("Item no longer exists", flashDuration)
		}
		a.reload()
		return a, a.setFlashMessage("Renamed", flashDuration)
	default:
		a.Input = editInput(a.Input, key)
		return a, nil
	}
}

func (a *AppModel) handleExportModeKeys(key string) (tea.Model, tea.Cmd) {
	var f export.Format
	switch key {
	case "esc", "q":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	case "t":
		f = export.FormatText
	case "p":
		f = export.FormatPDF
	case "d":
		f = export.FormatDOCX
	case "z":
		f = export.FormatZIP
	default:
		return a, nil
	}

	e := a.selected()
	if e == nil || (f == export.FormatZIP && !hasPosts(e.Item)) {
		return a, nil
	}
	a.Modal.Update(HideModalMsg{})
	a.CurrentMode = NormalMode
	flash := a.setFlashMessage(fmt.Sprintf("Exporting %s...", f), flashDuration)
	return a, tea.Batch(flash, a.exportCmd(e.Item, f))
}

func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return a, tea.Quit
	case "esc":
		if a.Filter != "" {
			a.Filter = ""
			a.reload()
			return a, nil
		}
		return a, tea.Quit
	case "z":
		a.CurrentMode = HelpMode
		return a, nil
	case "c":
		return a, a.copyToClipboard()
	case "e":
		if e := a.selected(); e != nil {
			a.Modal.Update(ShowExportPrompt(e.Item.Title, hasPosts(e.Item)))
			a.CurrentMode = ExportMode
		}
		return a, nil
	case "R":
		a.app.History.Load()
		a.reload()
		return a, a.setFlashMessage("Reloaded", flashDuration)
	case "tab":
		if a.ActivePane == LeftPane {
			a.ActivePane = RightPane
		} else {
			a.ActivePane = LeftPane
		}
		return a, nil
	case "h", "left":
		a.ActivePane = LeftPane
		return a, nil
	case "l", "right":
		a.ActivePane = RightPane
		return a, nil
	}

	if key >= "1" && key <= "9" {
		a.NumberBuffer = key
		a.BufferPane = a.ActivePane
		a.CurrentMode = NumberInputMode
		return a, nil
	}

	if isMovementCommand(key) {
		return a.executeCommand(1, key, a.ActivePane)
	}

	if a.ActivePane == LeftPane {
		return a.handleLeftPaneKeys(key)
	}
	return a.handleRightPaneKeys(key)
}

func (a *AppModel) handleLeftPaneKeys(key string) (tea.Model, tea.Cmd) {
	e := a.selected()
	switch key {
	case "/":
		a.Input = a.Filter
		a.CurrentMode = FilterMode
	case "d":
		if e != nil {
			a.Modal.Update(ShowDeleteConfirmation(e.Item.Title, a.LeftPane.Cursor))
			a.CurrentMode = DeleteMode
		}
	case "r":
		if e != nil {
			a.Input = e.Item.Title
			a.CurrentMode = RenameMode
		}
	}
	return a, nil
}

func (a *AppModel) handleRightPaneKeys(key string) (tea.Model, tea.Cmd) {
	maxScroll := getMaxScroll(a.RightPane, a.selected())
	page := a.RightPane.pageSize()

	switch key {
	case "/", "?":
		a.Search.Update(StartSearchMsg{})
		a.CurrentMode = SearchMode
	case "n":
		if a.Search.HasMatches() {
			a.Search.Update(NextMatchMsg{})
			a.jumpToCurrentMatch()
		}
	case "N":
		if a.Search.HasMatches() {
			a.Search.Update(PrevMatchMsg{})
			a.jumpToCurrentMatch()
		}
	case "ctrl+u":
		a.RightPane.Update(PageUpMsg{})
	case "ctrl+d":
		a.RightPane.Update(PageDownMsg{MaxScroll: maxScroll})
	case "ctrl+b":
		a.RightPane.Update(JumpMsg{Direction: "k", Lines: page, MaxScroll: maxScroll})
	case "ctrl+f":
		a.RightPane.Update(JumpMsg{Direction: "j", Lines: page, MaxScroll: maxScroll})
	}
	return a, nil
}

func isMovementCommand(key string) bool {
	switch key {
	case "up", "k", "down", "j", "g", "G":
		return true
	}
	return false
}

// executeCommand runs a movement key multiplier times on pane
func (a *AppModel) executeCommand(multiplier int, key string, pane PaneType) (tea.Model, tea.Cmd) {
	if pane == LeftPane {
		maxIndex := len(a.Items) - 1
		if maxIndex < 0 {
			return a, nil
		}
		prev := a.LeftPane.Cursor
		switch key {
		case "up", "k":
			a.LeftPane.Update(JumpToIndexMsg{Index: max(prev-multiplier, 0), MaxIndex: maxIndex})
		case "down", "j":
			a.LeftPane.Update(JumpToIndexMsg{Index: min(prev+multiplier, maxIndex), MaxIndex: maxIndex})
		case "g":
			if multiplier > 1 {
				a.LeftPane.Update(JumpToIndexMsg{Index: min(multiplier-1, maxIndex), MaxIndex: maxIndex})
			} else {
				a.LeftPane.Update(GoToTopMsg{})
			}
		case "G":
			a.LeftPane.Update(GoToBottomMsg{MaxIndex: maxIndex})
		}
		if a.LeftPane.Cursor != prev {
			a.selectionChanged()
		}
		return a, nil
	}

	maxScroll := getMaxScroll(a.RightPane, a.selected())
	switch key {
	case "up", "k":
		a.RightPane.Update(JumpMsg{Direction: "k", Lines: multiplier, MaxScroll: maxScroll})
	case "down", "j":
		a.RightPane.Update(JumpMsg{Direction: "j", Lines: multiplier, MaxScroll: maxScroll})
	case "g":
		if multiplier > 1 {
			a.RightPane.ViewPos = min(multiplier-1, maxScroll)
		} else {
			a.RightPane.Update(ScrollToTopMsg{})
		}
	case "G":
		a.RightPane.Update(ScrollToBottomMsg{MaxScroll: maxScroll})
	}
	return a, nil
}

// selected returns the entry under the cursor, or nil.
func (a *AppModel) selected() *Entry {
	if a.LeftPane.Cursor < 0 || a.LeftPane.Cursor >= len(a.Items) {
		return nil
	}
	return a.Items[a.LeftPane.Cursor]
}

func (a *AppModel) selectionChanged() {
	a.Search.Update(ClearSearchMsg{})
	a.RightPane.Update(ResetViewMsg{})
}

func (a *AppModel) jumpToCurrentMatch() {
	if line := a.Search.CurrentMatchLine(); line >= 0 {
		a.RightPane.ViewPos = scrollToMatch(a.RightPane, a.selected(), line)
	}
}

// reload rebuilds Items from history, applying Filter.
func (a *AppModel) reload() {
	items := a.app.History.List()
	if a.Filter != "" {
		found, err := a.app.History.Search(a.Filter, 0)
		if err == nil {
			items = found
		} else {
			a.Filter = ""
		}
	}
	a.SetItems(entriesFor(items))
}

// SetItems replaces the list, keeping the cursor in range.
func (a *AppModel) SetItems(items []*Entry) {
	a.Items = items
	if a.LeftPane.Cursor >= len(items) {
		a.LeftPane.Update(GoToBottomMsg{MaxIndex: len(items) - 1})
	}
	if len(items) == 0 {
		a.LeftPane.Update(GoToTopMsg{})
	}
	a.selectionChanged()
}

func (a *AppModel) setFlashMessage(message string, duration time.Duration) tea.Cmd {
	a.FlashMessage = message
	a.FlashExpiry = time.Now().Add(duration)
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

func (a *AppModel) copyToClipboard() tea.Cmd {
	e := a.selected()
	if e == nil {
		return a.setFlashMessage("No item selected", flashDuration)
	}
	n, err := clipboard.Copy(a.clipboard, e.Text)
	if err != nil {
		return a.setFlashMessage(fmt.Sprintf("Copy failed: %v", err), flashDuration)
	}
	return a.setFlashMessage(fmt.Sprintf("Copied %d bytes to clipboard", n), flashDuration)
}

func (a *AppModel) exportCmd(item history.HistoryItem, f export.Format) tea.Cmd {
	pa := a.app
	return func() tea.Msg {
		doc, err := pa.Render(item, f)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		loc, err := pa.Save(context.Background(), doc)
		return exportDoneMsg{name: doc.Name, location: loc, err: err}
	}
}

func hasPosts(item history.HistoryItem) bool {
	posts, err := item.Posts()
	return err == nil && len(posts) > 0
}

// editInput applies a key to a line being typed.
func editInput(buf, key string) string {
	if key == "backspace" || key == "ctrl+h" {
		r := []rune(buf)
		if len(r) == 0 {
			return buf
		}
		return string(r[:len(r)-1])
	}
	if r := []rune(key); len(r) == 1 && unicode.IsPrint(r[0]) {
		return buf + key
	}
	return buf
}

// AppView renders the whole screen
func AppView(model AppModel) string {
	if model.Width == 0 {
		return "Initializing..."
	}
	if model.CurrentMode == HelpMode {
		return renderHelpView(model) + "\n\n" + renderStatusLine(model)
	}

	left := strings.Split(LeftPaneView(model.LeftPane, model.Items, model.Filter, model.app.History.Limit(), model.ActivePane == LeftPane), "\n")
	var entry *Entry
	if model.LeftPane.Cursor < len(model.Items) {
		entry = model.Items[model.LeftPane.Cursor]
	}
	right := strings.Split(RightPaneView(model.RightPane, entry, model.Search, model.ActivePane == RightPane, model.LeftPane.Cursor), "\n")

	var b strings.Builder
	for i := 0; i < max(len(left), len(right)); i++ {
		if i < len(left) {
			b.WriteString(left[i])
		}
		if i < len(right) {
			b.WriteString(right[i])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + renderStatusLine(model))

	view := b.String()
	if model.Modal.Active {
		return ModalView(model.Modal, view, model.Width, model.Height)
	}
	return view
}

func (a *AppModel) View() string {
	return AppView(*a)
}

func renderStatusLine(model AppModel) string {
	style := lipgloss.NewStyle().Width(model.Width)
	if model.FlashMessage != "" && time.Now().Before(model.FlashExpiry) {
		return style.Foreground(lipgloss.Color("10")).Render(model.FlashMessage)
	}

	var line string
	switch {
	case model.CurrentMode == RenameMode:
		line = fmt.Sprintf("Title: %s█ (Enter to save, Esc to cancel)", model.Input)
	case model.CurrentMode == FilterMode:
		line = fmt.Sprintf("Filter: /%s█ (Enter to apply, empty clears)", model.Input)
	case model.NumberBuffer != "":
		line = model.NumberBuffer
	case model.Search.IsActive():
		line = "/" + model.Search.Input
		if model.Search.Error != "" {
			line += fmt.Sprintf(" (Error: %s)", model.Search.Error)
		} else {
			line += " (Enter to search, Esc to cancel)"
		}
	case model.Search.HasMatches():
		line = fmt.Sprintf("Pattern: %s - Match %d of %d", model.Search.Pattern, model.Search.CurrentMatch+1, len(model.Search.Matches))
	case model.CurrentMode == HelpMode:
		line = "Help - press z to return, q to quit"
	default:
		line = "z help · c copy · e export · r rename · d delete · / filter · q quit"
	}
	return style.Render(line)
}

func renderHelpView(model AppModel) string {
	help := `proboost - history browser

NAVIGATION:
  j, ↓ / k, ↑   Next / previous item, or scroll the preview
  g / G         Top / bottom (with a number: go to item or line N)
  #j, #k        Move N items or lines (e.g. 5j)
  Tab, h, l     Switch panes

HISTORY (left pane):
  /pattern      Filter items by title, input or output (Esc clears)
  r             Rename the selected item
  d             Delete the selected item
  R             Reload from storage

DOCUMENT:
  c             Copy the document to the clipboard
  e             Export as txt, pdf, docx or zip (post bundles)
  /pattern      Search the preview (right pane), n / N to step
  Ctrl+u/d      Half page up / down
  Ctrl+b/f      Full page up / down

Items are newest first; the oldest is dropped past the history limit.

  q, Esc        Quit
  Ctrl+c        Force quit`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1).
		Width(model.Width - 4).
		Height(model.Height - 4).
		Render(help)
}
