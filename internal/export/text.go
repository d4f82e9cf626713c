package export

// Text returns content unchanged. Plain-text export keeps headings and
// markers exactly as written.
func Text(content string) []byte {
	return []byte(content)
}
