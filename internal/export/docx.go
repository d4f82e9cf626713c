package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

const (
	wordNS  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNS   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	pkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	ctNS    = "http://schemas.openxmlformats.org/package/2006/content-types"

	relTypeDocument  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"

	// Twentieths of a point.
	inch          = 1440
	spacingBlank  = 120
	spacingBefore = 240
	spacingAfter  = 120

	bulletNumID = 1
	headingID   = "Heading1"
)

// docxEpoch pins zip entry times so identical input yields identical bytes.
var docxEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wSpacing struct {
	Before int `xml:"w:before,attr,omitempty"`
	After  int `xml:"w:after,attr,omitempty"`
}

type wBorder struct {
	Val   string `xml:"w:val,attr"`
	Sz    int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type wPBdr struct {
	Bottom wBorder `xml:"w:bottom"`
}

type wNumPr struct {
	Ilvl  wVal `xml:"w:ilvl"`
	NumID wVal `xml:"w:numId"`
}

type wPPr struct {
	PStyle  *wVal     `xml:"w:pStyle,omitempty"`
	NumPr   *wNumPr   `xml:"w:numPr,omitempty"`
	PBdr    *wPBdr    `xml:"w:pBdr,omitempty"`
	Spacing *wSpacing `xml:"w:spacing,omitempty"`
}

type wRPr struct {
	B *struct{} `xml:"w:b,omitempty"`
}

type wText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Text  string `xml:",chardata"`
}

type wRun struct {
	RPr *wRPr `xml:"w:rPr,omitempty"`
	T   wText `xml:"w:t"`
}

type wParagraph struct {
	PPr  *wPPr  `xml:"w:pPr,omitempty"`
	Runs []wRun `xml:"w:r"`
}

type wPgMar struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
}

type wPgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type wSectPr struct {
	PgSz  wPgSz  `xml:"w:pgSz"`
	PgMar wPgMar `xml:"w:pgMar"`
}

type wBody struct {
	Paragraphs []wParagraph `xml:"w:p"`
	SectPr     wSectPr      `xml:"w:sectPr"`
}

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	W       string   `xml:"xmlns:w,attr"`
	R       string   `xml:"xmlns:r,attr"`
	Body    wBody    `xml:"w:body"`
}

// DOCX renders content as a word-processing document. Headings use the
// Heading1 style with a bottom border; bullets use a native numbering list
// at level 0; paragraphs keep **bold** spans. Margins are one inch.
func DOCX(content string) ([]byte, error) {
	doc := wDocument{
		W: wordNS,
		R: relNS,
		Body: wBody{
			SectPr: wSectPr{
				PgSz:  wPgSz{W: 11906, H: 16838}, // A4
				PgMar: wPgMar{Top: inch, Right: inch, Bottom: inch, Left: inch},
			},
		},
	}
	for _, seg := range Parse(content) {
		doc.Body.Paragraphs = append(doc.Body.Paragraphs, docxParagraph(seg))
	}

	documentXML, err := marshalPart(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", documentXML},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/numbering.xml", []byte(numberingXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
	}
	for _, p := range parts {
		if err := writeZipEntry(zw, p.name, p.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish docx: %w", err)
	}
	return buf.Bytes(), nil
}

func docxParagraph(seg Segment) wParagraph {
	switch seg.Kind {
	case Blank:
		return wParagraph{PPr: &wPPr{Spacing: &wSpacing{After: spacingBlank}}}
	case Heading:
		return wParagraph{
			PPr: &wPPr{
				PStyle:  &wVal{Val: headingID},
				PBdr:    &wPBdr{Bottom: wBorder{Val: "single", Sz: 6, Space: 1, Color: "auto"}},
				Spacing: &wSpacing{Before: spacingBefore, After: spacingAfter},
			},
			Runs: docxRuns(seg.Runs),
		}
	case Bullet:
		return wParagraph{
			PPr: &wPPr{
				PStyle: &wVal{Val: "ListParagraph"},
				NumPr:  &wNumPr{Ilvl: wVal{Val: "0"}, NumID: wVal{Val: fmt.Sprint(bulletNumID)}},
			},
			Runs: docxRuns(seg.Runs),
		}
	default:
		return wParagraph{Runs: docxRuns(seg.Runs)}
	}
}

func docxRuns(runs []Run) []wRun {
	out := make([]wRun, 0, len(runs))
	for _, r := range runs {
		wr := wRun{T: wText{Space: "preserve", Text: r.Text}}
		if r.Bold {
			wr.RPr = &wRPr{B: &struct{}{}}
		}
		out = append(out, wr)
	}
	return out
}

func marshalPart(v any) ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: docxEpoch,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

const contentTypesXML = xml.Header + `<Types xmlns="` + ctNS + `">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`</Types>`

const packageRelsXML = xml.Header + `<Relationships xmlns="` + pkgRels + `">` +
	`<Relationship Id="rId1" Type="` + relTypeDocument + `" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="` + pkgRels + `">` +
	`<Relationship Id="rId1" Type="` + relTypeStyles + `" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="` + relTypeNumbering + `" Target="numbering.xml"/>` +
	`</Relationships>`

const stylesXML = xml.Header + `<w:styles xmlns:w="` + wordNS + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="120"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="` + headingID + `"><w:name w:val="heading 1"/>` +
	`<w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
	`<w:pPr><w:keepNext/><w:outlineLvl w:val="0"/></w:pPr>` +
	`<w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/>` +
	`<w:basedOn w:val="Normal"/><w:pPr><w:ind w:left="720"/></w:pPr></w:style>` +
	`</w:styles>`

const numberingXML = xml.Header + `<w:numbering xmlns:w="` + wordNS + `">` +
	`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="singleLevel"/>` +
	`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/>` +
	`<w:lvlJc w:val="left"/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl>` +
	`</w:abstractNum>` +
	`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>` +
	`</w:numbering>`
