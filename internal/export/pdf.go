package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Font families accepted by PDF.
const (
	FontSans  = "sans"
	FontSerif = "serif"
)

// ErrUnsupportedFont is returned for an Options.Font outside FontSans and FontSerif.
var ErrUnsupportedFont = errors.New("unsupported font")

// Options controls PDF layout.
type Options struct {
	// Font is FontSans (default) or FontSerif.
	Font string
	// Title is written to the document info dictionary.
	Title string
}

// Page geometry, millimetres.
const (
	pageMargin    = 20.0
	bodySize      = 11.0
	bodyLine      = 5.5
	headingSize   = 14.0
	headingLine   = 7.0
	headingBefore = 4.0
	ruleGap       = 2.5
	blankGap      = 3.0
	bulletIndent  = 6.0
	blockGap      = 1.5
)

// pdfEpoch pins the creation date so identical input renders identical bytes.
var pdfEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func fontFamily(font string) (string, error) {
	switch font {
	case "", FontSans:
		return "Helvetica", nil
	case FontSerif:
		return "Times", nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: %s, %s)", ErrUnsupportedFont, font, FontSans, FontSerif)
	}
}

// PDF renders content to an A4 document. Headings are bold and larger with
// a rule beneath; bullets get a glyph and a hanging indent; paragraphs wrap
// to the text width. A block that would cross the bottom margin starts a
// new page.
func PDF(content string, opts Options) ([]byte, error) {
	family, err := fontFamily(opts.Font)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetCatalogSort(true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.AddPage()

	r := newPDFRenderer(pdf, family)
	for _, seg := range Parse(content) {
		r.render(seg)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string

	left, right, bottom float64
}

// newPDFRenderer lays out text between the page margins. Core fonts only
// cover cp1252; other characters are drawn as ".".
func newPDFRenderer(pdf *fpdf.Fpdf, family string) *pdfRenderer {
	w, h := pdf.GetPageSize()
	return &pdfRenderer{
		pdf:    pdf,
		family: family,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		left:   pageMargin,
		right:  w - pageMargin,
		bottom: h - pageMargin,
	}
}

func (r *pdfRenderer) render(seg Segment) {
	switch seg.Kind {
	case Blank:
		r.advance(blankGap)
	case Heading:
		r.heading(seg)
	case Bullet:
		r.bullet(seg)
	case Paragraph:
		r.paragraph(seg)
	}
}

// ensure starts a new page when height would not fit above the bottom margin.
func (r *pdfRenderer) ensure(height float64) {
	if r.pdf.GetY()+height > r.bottom {
		r.pdf.AddPage()
	}
}

func (r *pdfRenderer) advance(dy float64) {
	y := r.pdf.GetY() + dy
	if y > r.bottom {
		r.pdf.AddPage()
		return
	}
	r.pdf.SetY(y)
}

func (r *pdfRenderer) heading(seg Segment) {
	width := r.right - r.left
	lines := r.wrap(seg.Runs, width, headingSize)

	height := headingBefore + float64(len(lines))*headingLine + ruleGap*2
	r.ensure(height)
	if r.pdf.GetY() > pageMargin {
		r.pdf.SetY(r.pdf.GetY() + headingBefore)
	}
	r.pdf.SetFont(r.family, "B", headingSize)
	for _, line := range lines {
		r.pdf.SetX(r.left)
		r.pdf.CellFormat(width, headingLine, runsText(line), "", 1, "L", false, 0, "")
	}

	y := r.pdf.GetY() + ruleGap
	r.pdf.SetLineWidth(0.3)
	r.pdf.Line(r.left, y, r.right, y)
	r.pdf.SetY(y + ruleGap)
}

func (r *pdfRenderer) bullet(seg Segment) {
	indent := r.left + bulletIndent
	lines := r.wrap(seg.Runs, r.right-indent, bodySize)
	r.ensureFirst(lines)

	r.setFont(false, bodySize)
	r.pdf.SetX(r.left)
	r.pdf.CellFormat(bulletIndent, bodyLine, r.tr("•"), "", 0, "L", false, 0, "")
	r.lines(lines, indent)
	r.advance(blockGap)
}

func (r *pdfRenderer) paragraph(seg Segment) {
	lines := r.wrap(seg.Runs, r.right-r.left, bodySize)
	r.ensureFirst(lines)
	r.lines(lines, r.left)
	r.advance(blockGap)
}

// ensureFirst keeps short blocks together and lets long ones flow.
func (r *pdfRenderer) ensureFirst(lines [][]Run) {
	height := float64(len(lines)) * bodyLine
	if height > r.bottom-pageMargin {
		height = bodyLine
	}
	r.ensure(height)
}

func (r *pdfRenderer) lines(lines [][]Run, x float64) {
	for _, line := range lines {
		r.ensure(bodyLine)
		r.pdf.SetX(x)
		for _, run := range line {
			r.setFont(run.Bold, bodySize)
			w := r.pdf.GetStringWidth(run.Text)
			r.pdf.CellFormat(w, bodyLine, run.Text, "", 0, "L", false, 0, "")
		}
		r.pdf.Ln(bodyLine)
	}
}

func (r *pdfRenderer) setFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont(r.family, style, size)
}

// wrap breaks runs into lines no wider than width at the given font size.
// Text is translated to the page encoding before measuring.
func (r *pdfRenderer) wrap(runs []Run, width, size float64) [][]Run {
	type word struct {
		text string
		bold bool
	}
	var words []word
	for _, run := range runs {
		for _, f := range strings.Fields(run.Text) {
			words = append(words, word{text: r.tr(f), bold: run.Bold})
		}
	}

	var (
		lines [][]Run
		cur   []Run
		used  float64
	)
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
		}
		cur, used = nil, 0
	}
	place := func(piece string, bold bool) {
		text := piece
		if len(cur) > 0 {
			text = " " + text
		}
		tw := r.pdf.GetStringWidth(text)
		if len(cur) > 0 && used+tw > width {
			flush()
			text = piece
			tw = r.pdf.GetStringWidth(text)
		}
		if n := len(cur); n > 0 && cur[n-1].Bold == bold {
			cur[n-1].Text += text
		} else {
			cur = append(cur, Run{Text: text, Bold: bold})
		}
		used += tw
	}
	for _, w := range words {
		r.setFont(w.bold, size)
		for _, piece := range r.breakWord(w.text, width) {
			place(piece, w.bold)
		}
	}
	flush()
	return lines
}

// breakWord splits a word wider than width at character boundaries. The
// text is already in the single-byte page encoding, so bytes are characters.
func (r *pdfRenderer) breakWord(text string, width float64) []string {
	var parts []string
	for len(text) > 1 && r.pdf.GetStringWidth(text) > width {
		n := 1
		for n < len(text) && r.pdf.GetStringWidth(text[:n+1]) <= width {
			n++
		}
		parts = append(parts, text[:n])
		text = text[n:]
	}
	return append(parts, text)
}
