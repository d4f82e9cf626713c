package tui

import (
	"regexp"
)

// SearchMsg represents messages that the in-document search handles
type SearchMsg interface {
	isSearchMsg()
}

type StartSearchMsg struct{}

func (StartSearchMsg) isSearchMsg() {}

type UpdateSearchInputMsg struct {
	Input string
}

func (UpdateSearchInputMsg) isSearchMsg() {}

type ExecuteSearchMsg struct{}

func (ExecuteSearchMsg) isSearchMsg() {}

type CancelSearchMsg struct{}

func (CancelSearchMsg) isSearchMsg() {}

type NextMatchMsg struct{}

func (NextMatchMsg) isSearchMsg() {}

type PrevMatchMsg struct{}

func (PrevMatchMsg) isSearchMsg() {}

type ClearSearchMsg struct{}

func (ClearSearchMsg) isSearchMsg() {}

// SearchModel holds the in-document search state. Patterns are
// case-insensitive regular expressions.
type SearchModel struct {
	Active       bool   // typing a pattern
	Input        string // pattern being typed
	Pattern      string // last executed pattern
	Error        string
	Matches      []int // matching line numbers
	CurrentMatch int   // index into Matches, -1 when none
}

func NewSearchModel() SearchModel {
	return SearchModel{CurrentMatch: -1}
}

func (s *SearchModel) Update(msg SearchMsg) {
	switch m := msg.(type) {
	case StartSearchMsg:
		s.Active = true
		s.Input = ""
		s.Error = ""
	case UpdateSearchInputMsg:
		s.Input = m.Input
	case ExecuteSearchMsg:
		if s.Input == "" {
			s.clear()
			s.Active = false
			return
		}
		if _, err := regexp.Compile("(?i)" + s.Input); err != nil {
			// Stay active so the pattern can be fixed.
			s.Error = err.Error()
			return
		}
		s.Pattern = s.Input
		s.Error = ""
		s.Active = false
	case CancelSearchMsg:
		s.Active = false
		s.Input = ""
		s.Error = ""
	case NextMatchMsg:
		if len(s.Matches) > 0 {
			s.CurrentMatch = (s.CurrentMatch + 1) % len(s.Matches)
		}
	case PrevMatchMsg:
		if len(s.Matches) > 0 {
			s.CurrentMatch = (s.CurrentMatch - 1 + len(s.Matches)) % len(s.Matches)
		}
	case ClearSearchMsg:
		s.clear()
	}
}

func (s *SearchModel) clear() {
	s.Pattern = ""
	s.Matches = nil
	s.CurrentMatch = -1
	s.Error = ""
}

func (s *SearchModel) IsActive() bool { return s.Active }

func (s *SearchModel) HasMatches() bool { return len(s.Matches) > 0 }

// CurrentMatchLine returns the line of the current match, or -1.
func (s *SearchModel) CurrentMatchLine() int {
	if s.CurrentMatch >= 0 && s.CurrentMatch < len(s.Matches) {
		return s.Matches[s.CurrentMatch]
	}
	return -1
}

// SetMatches replaces the matches and selects the first.
func (s *SearchModel) SetMatches(matches []int) {
	s.Matches = matches
	s.CurrentMatch = -1
	if len(matches) > 0 {
		s.CurrentMatch = 0
	}
}
