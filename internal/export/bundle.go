package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Post is one generated social post variant.
type Post struct {
	Tone         string   `json:"tone"`
	Text         string   `json:"text"`
	Hashtags     []string `json:"hashtags"`
	FirstComment string   `json:"firstComment"`
	StoryVariant string   `json:"storyVariant"`
}

const defaultSlug = "post"

// FormatPost renders a post as the plain-text blob stored in a bundle.
func FormatPost(p Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TONE: %s\n\n", strings.TrimSpace(p.Tone))
	b.WriteString(strings.TrimSpace(p.Text))
	b.WriteString("\n")

	if tags := NormalizeHashtags(p.Hashtags); len(tags) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n")
	}
	if c := strings.TrimSpace(p.FirstComment); c != "" {
		fmt.Fprintf(&b, "\nFIRST COMMENT:\n%s\n", c)
	}
	if s := strings.TrimSpace(p.StoryVariant); s != "" {
		fmt.Fprintf(&b, "\nSTORY VARIANT:\n%s\n", s)
	}
	return b.String()
}

// NormalizeHashtags prefixes each tag with # unless it already has one.
// Blank tags are dropped.
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || t == "#" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		out = append(out, t)
	}
	return out
}

// BundleName is the archive entry name for the post at 1-based index i.
func BundleName(i int, tone string) string {
	return fmt.Sprintf("post-%d-%s.txt", i, Slug(tone))
}

// Bundle packages one text file per post into a ZIP archive, in order.
func Bundle(posts []Post) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, p := range posts {
		if err := writeZipEntry(zw, BundleName(i+1, p.Tone), []byte(FormatPost(p))); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish bundle: %w", err)
	}
	return buf.Bytes(), nil
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug lower-cases s, drops diacritics and joins alphanumeric words with
// hyphens. An empty result becomes "post".
func Slug(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return defaultSlug
	}
	return b.String()
}
