package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedType is returned by Ingest for files outside the upload
// allow-list.
var ErrUnsupportedType = errors.New("unsupported file type")

// Upload types accepted by Ingest, keyed by extension.
const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedUploads = map[string]string{
	".txt":  MimeText,
	".md":   MimeText,
	".pdf":  MimePDF,
	".docx": MimeDOCX,
}

// AllowedExtensions lists the accepted upload extensions.
func AllowedExtensions() []string {
	return []string{".txt", ".md", ".pdf", ".docx"}
}

// DetectType maps a file name to an allowed MIME type.
func DetectType(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	mime, ok := allowedUploads[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedType, name, strings.Join(AllowedExtensions(), ", "))
	}
	return mime, nil
}

// Ingest extracts the text of an uploaded resume or document. Files outside
// the allow-list are rejected before any parsing.
func Ingest(name string, data []byte) (string, error) {
	mime, err := DetectType(name)
	if err != nil {
		return "", err
	}
	return ExtractText(mime, data)
}

// ExtractText extracts text from data of the given MIME type.
func ExtractText(mime string, data []byte) (string, error) {
	switch mime {
	case MimeText:
		return string(data), nil
	case MimePDF:
		return extractPDFText(data)
	case MimeDOCX:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger().Debugw("pdf page text fail", "page", i, "err", err)
			continue
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

// documentXMLText flattens word/document.xml to one line per paragraph.
func documentXMLText(content string) string {
	dec := xml.NewDecoder(strings.NewReader(content))
	var (
		lines []string
		cur   strings.Builder
		inT   bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inT = true
			case "tab":
				cur.WriteByte('\t')
			}
		case xml.CharData:
			if inT {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "p":
				lines = append(lines, cur.String())
			}
		}
	}
	return strings.Join(lines, "\n")
}
