package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yiblet/proboost/internal/export"
)

// ErrNoDocument is returned when an item's output holds nothing exportable.
var ErrNoDocument = errors.New("no exportable text")

// TextOutput is the output of features that produce a single document.
type TextOutput struct {
	Text string `json:"text"`
}

// PostsOutput is the output of the post-writing features.
type PostsOutput struct {
	Posts []export.Post `json:"posts"`
}

// Job is one listing produced by job search or fetch, or kept as a saved job.
type Job struct {
	Title    string `json:"title"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// JobsOutput is the output of the job search features.
type JobsOutput struct {
	Jobs []Job `json:"jobs"`
}

// Posts returns the post variants of a post-writing item.
func (h HistoryItem) Posts() ([]export.Post, error) {
	switch h.FeatureType {
	case ContentGeneration, NewsToPost:
		var out PostsOutput
		if err := json.Unmarshal(h.Output, &out); err != nil {
			return nil, fmt.Errorf("failed to decode posts: %w", err)
		}
		return out.Posts, nil
	default:
		return nil, fmt.Errorf("%s items have no posts", h.FeatureType)
	}
}

// DocumentText extracts the exportable document from an item's output.
// Outputs stored as a bare JSON string are returned as-is.
func DocumentText(h HistoryItem) (string, error) {
	var s string
	if err := json.Unmarshal(h.Output, &s); err == nil {
		return nonEmpty(s)
	}

	switch h.FeatureType {
	case ContentGeneration, NewsToPost:
		posts, err := h.Posts()
		if err != nil {
			return "", err
		}
		parts := make([]string, len(posts))
		for i, p := range posts {
			parts[i] = export.FormatPost(p)
		}
		return nonEmpty(strings.Join(parts, "\n"))

	case JobSearch, JobFetch:
		var out JobsOutput
		if err := json.Unmarshal(h.Output, &out); err != nil {
			return "", fmt.Errorf("failed to decode jobs: %w", err)
		}
		parts := make([]string, len(out.Jobs))
		for i, j := range out.Jobs {
			parts[i] = formatJob(j)
		}
		return nonEmpty(strings.Join(parts, "\n"))

	case SavedJob:
		var j Job
		if err := json.Unmarshal(h.Output, &j); err != nil {
			return "", fmt.Errorf("failed to decode job: %w", err)
		}
		return nonEmpty(formatJob(j))

	case ProfileOptimization, JobApplication, CaseStudy, JobPost, Networking, InterviewPrep:
		var out TextOutput
		if err := json.Unmarshal(h.Output, &out); err != nil {
			return "", fmt.Errorf("failed to decode output: %w", err)
		}
		return nonEmpty(out.Text)

	default:
		return "", fmt.Errorf("unknown feature type: %q", h.FeatureType)
	}
}

func formatJob(j Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", joinNonEmpty(orUntitled(j.Title, ""), " at ", j.Company))
	if j.Location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", j.Location)
	}
	if j.URL != "" {
		fmt.Fprintf(&b, "- Link: %s\n", j.URL)
	}
	if j.Summary != "" {
		b.WriteString(j.Summary)
		b.WriteString("\n")
	}
	return b.String()
}

func nonEmpty(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrNoDocument
	}
	return s, nil
}
