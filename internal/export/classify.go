// Package export turns generated plain-text documents into downloadable
// files: flat text, paginated PDF, DOCX, ZIP post bundles and images.
//
// All encoders share one line classifier so the formats agree on structure.
package export

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the structural role of a single document line.
type Kind int

const (
	Blank Kind = iota
	Heading
	Bullet
	Paragraph
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Heading:
		return "heading"
	case Bullet:
		return "bullet"
	case Paragraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Run is a span of text with uniform weight.
type Run struct {
	Text string
	Bold bool
}

// Segment is a classified line.
type Segment struct {
	Kind Kind
	// Raw is the line as it appeared in the document.
	Raw string
	// Text is the display text: markers stripped, headings upper-cased.
	Text string
	// Runs splits Text into bold and regular spans. Empty for Blank.
	Runs []Run
}

const (
	boldMarker     = "**"
	minCapsHeading = 4
	bulletDash     = "- "
	bulletDot      = "• "
	bulletStar     = "* "
)

var (
	numberedRE = regexp.MustCompile(`^\d+\.\s+`)
	boldRE     = regexp.MustCompile(`\*\*(.+?)\*\*`)

	upper = cases.Upper(language.Und)
)

// Classify assigns a line to exactly one Kind, checked in order:
// blank, heading, bullet, paragraph.
func Classify(line string) Segment {
	trimmed := strings.TrimSpace(line)
	seg := Segment{Raw: line}

	switch {
	case trimmed == "":
		seg.Kind = Blank
	case isCapsHeading(trimmed):
		seg.Kind = Heading
		seg.Text = trimmed
		seg.Runs = []Run{{Text: seg.Text, Bold: true}}
	case isMarkedHeading(trimmed):
		seg.Kind = Heading
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, boldMarker), boldMarker)
		seg.Text = upper.String(strings.TrimSpace(inner))
		seg.Runs = []Run{{Text: seg.Text, Bold: true}}
	default:
		if rest, ok := bulletText(trimmed); ok {
			seg.Kind = Bullet
			seg.Runs = ParseRuns(rest)
		} else {
			seg.Kind = Paragraph
			seg.Runs = ParseRuns(trimmed)
		}
		seg.Text = runsText(seg.Runs)
	}
	return seg
}

// Parse classifies every line of doc, top to bottom.
func Parse(doc string) []Segment {
	lines := strings.Split(doc, "\n")
	segs := make([]Segment, 0, len(lines))
	for _, line := range lines {
		segs = append(segs, Classify(strings.TrimSuffix(line, "\r")))
	}
	return segs
}

// isCapsHeading reports whether s is only ASCII capitals and spaces and
// long enough to not be an acronym.
func isCapsHeading(s string) bool {
	if len(s) < minCapsHeading {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != ' ' && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func isMarkedHeading(s string) bool {
	return len(s) > 2*len(boldMarker) &&
		strings.HasPrefix(s, boldMarker) &&
		strings.HasSuffix(s, boldMarker) &&
		strings.TrimSpace(s[len(boldMarker):len(s)-len(boldMarker)]) != ""
}

func bulletText(s string) (string, bool) {
	for _, marker := range []string{bulletDash, bulletDot, bulletStar} {
		if strings.HasPrefix(s, marker) {
			return strings.TrimSpace(s[len(marker):]), true
		}
	}
	if loc := numberedRE.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:]), true
	}
	return "", false
}

// ParseRuns splits s on **bold** spans. Unpaired markers stay literal.
func ParseRuns(s string) []Run {
	var runs []Run
	last := 0
	for _, m := range boldRE.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			runs = append(runs, Run{Text: s[last:m[0]]})
		}
		runs = append(runs, Run{Text: s[m[2]:m[3]], Bold: true})
		last = m[1]
	}
	if last < len(s) {
		runs = append(runs, Run{Text: s[last:]})
	}
	return runs
}

func runsText(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
