package export

import (
	"fmt"
	"strings"
)

// Format names a downloadable output.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatZIP  Format = "zip"
	FormatJPG  Format = "jpg"
)

// Formats lists every output format.
var Formats = []Format{FormatText, FormatPDF, FormatDOCX, FormatZIP, FormatJPG}

// ParseFormat accepts a format name or a file extension (".pdf").
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch s {
	case "text":
		return FormatText, nil
	case "jpeg":
		return FormatJPG, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format: %q", s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatPDF:
		return MimePDF
	case FormatDOCX:
		return MimeDOCX
	case FormatZIP:
		return "application/zip"
	case FormatJPG:
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// FileName builds a download name from a title, e.g. "senior-engineer.pdf".
func FileName(title string, f Format) string {
	base := "document"
	if strings.TrimSpace(title) != "" {
		base = Slug(title)
	}
	return base + "." + string(f)
}
