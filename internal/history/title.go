package history

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxTitleLength bounds stored titles, in characters.
	MaxTitleLength = 80

	// ExcerptLength is how much free text a derived title quotes.
	ExcerptLength = 20

	untitledProject = "Untitled Project"
	newProject      = "New Project"
)

// DeriveTitle builds a title from the entry's feature type and input.
// A missing type-specific field yields "Untitled Project"; an input that
// cannot be decoded at all yields "New Project".
func DeriveTitle(e Entry) string {
	in, err := DecodeInput(e.FeatureType, e.Input)
	if err != nil {
		return newProject
	}
	return TruncateTitle(SanitizeTitle(titleFor(in)), MaxTitleLength)
}

func titleFor(in Input) string {
	label := in.Feature().Label()
	switch v := in.(type) {
	case ContentGenerationInput:
		return orUntitled(Excerpt(v.Text, ExcerptLength), "")
	case ProfileOptimizationInput:
		return orUntitled(firstNonEmpty(v.TargetRole, v.Headline), label)
	case JobApplicationInput:
		return orUntitled(emailLocalPart(v.Email), label)
	case CaseStudyInput:
		return orUntitled(v.ProjectName, label)
	case JobPostInput:
		return orUntitled(joinNonEmpty(v.JobTitle, " at ", v.Company), label)
	case NewsToPostInput:
		return orUntitled(Excerpt(v.Headline, 2*ExcerptLength), label)
	case NetworkingInput:
		return orUntitled(v.TargetRole, label)
	case JobSearchInput:
		return orUntitled(joinNonEmpty(v.Query, " in ", v.Location), label)
	case JobFetchInput:
		return orUntitled(joinNonEmpty(v.Query, " in ", v.Location), label)
	case InterviewPrepInput:
		return orUntitled(joinNonEmpty(v.Role, " at ", v.Company), label)
	case SavedJobInput:
		return orUntitled(joinNonEmpty(v.Title, " at ", v.Company), "")
	}
	return newProject
}

// orUntitled prefixes value with label, or falls back when value is blank.
func orUntitled(value, label string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return untitledProject
	}
	if label == "" {
		return value
	}
	return label + ": " + value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// joinNonEmpty appends sep+extra to head when both are present. A blank
// head yields "" so the caller falls back to a placeholder.
func joinNonEmpty(head, sep, extra string) string {
	head = strings.TrimSpace(head)
	extra = strings.TrimSpace(extra)
	if head == "" {
		return ""
	}
	if extra == "" {
		return head
	}
	return head + sep + extra
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}

// Excerpt returns the first n characters of s with whitespace collapsed,
// followed by "..." when s was longer.
func Excerpt(s string, n int) string {
	s = SanitizeTitle(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

// TruncateTitle ensures title is at most maxLen characters.
// If truncation is needed, appends "..." to indicate truncation.
func TruncateTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)

	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	runes := []rune(title)
	return string(runes[:maxLen-3]) + "..."
}

// SanitizeTitle removes control characters and collapses whitespace.
// This ensures titles are safe for display in terminals and UIs.
func SanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			// Convert control characters to space for later collapsing
			return ' '
		}
		return r
	}, title)

	// Collapse all whitespace (spaces, tabs, newlines, etc.) into single spaces
	fields := strings.Fields(title)
	return strings.Join(fields, " ")
}
