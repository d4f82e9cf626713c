package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind Kind
		text string
	}{
		{"caps heading", "PROFESSIONAL SUMMARY", Heading, "PROFESSIONAL SUMMARY"},
		{"caps heading padded", "  SKILLS  ", Heading, "SKILLS"},
		{"short caps is paragraph", "CEO", Paragraph, "CEO"},
		{"caps with digits is paragraph", "TOP 10 TIPS", Paragraph, "TOP 10 TIPS"},
		{"marked heading", "**Work Experience**", Heading, "WORK EXPERIENCE"},
		{"marked heading accented", "**résumé**", Heading, "RÉSUMÉ"},
		{"dash bullet", "- Led a team of 5", Bullet, "Led a team of 5"},
		{"dot bullet", "• Shipped it", Bullet, "Shipped it"},
		{"star bullet", "* Mentored juniors", Bullet, "Mentored juniors"},
		{"numbered bullet", "1. First step", Bullet, "First step"},
		{"multi digit bullet", "12.   Twelfth", Bullet, "Twelfth"},
		{"decimal is paragraph", "3.5 years of Go", Paragraph, "3.5 years of Go"},
		{"empty", "", Blank, ""},
		{"whitespace", " \t ", Blank, ""},
		{"paragraph", "I led the project to success.", Paragraph, "I led the project to success."},
		{"inline bold paragraph", "Grew revenue **40%** in a year", Paragraph, "Grew revenue 40% in a year"},
		{"dash without space", "-dash", Paragraph, "-dash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := Classify(tt.line)
			assert.Equal(t, tt.kind, seg.Kind)
			assert.Equal(t, tt.text, seg.Text)
			assert.Equal(t, tt.line, seg.Raw)
		})
	}
}

func TestParseRuns(t *testing.T) {
	runs := ParseRuns("Grew **revenue** by **40%** fast")
	assert.Equal(t, []Run{
		{Text: "Grew "},
		{Text: "revenue", Bold: true},
		{Text: " by "},
		{Text: "40%", Bold: true},
		{Text: " fast"},
	}, runs)

	assert.Equal(t, []Run{{Text: "unpaired ** marker"}}, ParseRuns("unpaired ** marker"))
	assert.Nil(t, ParseRuns(""))
}

func TestBulletKeepsInlineBold(t *testing.T) {
	seg := Classify("- **Go** and Rust")
	assert.Equal(t, Bullet, seg.Kind)
	assert.Equal(t, []Run{{Text: "Go", Bold: true}, {Text: " and Rust"}}, seg.Runs)
}

func TestParse(t *testing.T) {
	segs := Parse("SUMMARY\r\nBuilt scalable systems.\n\n- Reduced latency by 30%")
	kinds := make([]Kind, len(segs))
	for i, s := range segs {
		kinds[i] = s.Kind
	}
	assert.Equal(t, []Kind{Heading, Paragraph, Blank, Bullet}, kinds)
	assert.Equal(t, "SUMMARY", segs[0].Text)
}

func TestText(t *testing.T) {
	doc := "**Title**\n- item\n\n  trailing  "
	first := Text(doc)
	assert.Equal(t, []byte(doc), first)
	assert.Equal(t, first, Text(doc))
}
