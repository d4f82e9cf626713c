package history

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeatureType tags which feature screen produced a history item.
type FeatureType string

const (
	ContentGeneration   FeatureType = "content-generation"
	ProfileOptimization FeatureType = "profile-optimization"
	JobApplication      FeatureType = "job-application"
	CaseStudy           FeatureType = "case-study"
	JobPost             FeatureType = "job-post"
	NewsToPost          FeatureType = "news-to-post"
	Networking          FeatureType = "networking"
	JobSearch           FeatureType = "job-search"
	JobFetch            FeatureType = "job-fetch"
	InterviewPrep       FeatureType = "interview-prep"
	SavedJob            FeatureType = "saved-job"
)

// FeatureTypes lists every feature type in display order.
var FeatureTypes = []FeatureType{
	ContentGeneration,
	ProfileOptimization,
	JobApplication,
	CaseStudy,
	JobPost,
	NewsToPost,
	Networking,
	JobSearch,
	JobFetch,
	InterviewPrep,
	SavedJob,
}

// ParseFeatureType validates s against the closed set of feature types.
func ParseFeatureType(s string) (FeatureType, error) {
	for _, ft := range FeatureTypes {
		if string(ft) == s {
			return ft, nil
		}
	}
	return "", fmt.Errorf("unknown feature type: %q", s)
}

// Label is a short human name used in derived titles and listings.
func (ft FeatureType) Label() string {
	switch ft {
	case ContentGeneration:
		return "Post"
	case ProfileOptimization:
		return "Profile"
	case JobApplication:
		return "Application"
	case CaseStudy:
		return "Case Study"
	case JobPost:
		return "Job Post"
	case NewsToPost:
		return "News"
	case Networking:
		return "Networking"
	case JobSearch:
		return "Search"
	case JobFetch:
		return "Jobs"
	case InterviewPrep:
		return "Interview"
	case SavedJob:
		return "Saved Job"
	}
	return string(ft)
}

// Input is the feature-specific form payload of a history item.
// Each feature type has exactly one concrete Input.
type Input interface {
	Feature() FeatureType
}

type ContentGenerationInput struct {
	Text     string `json:"text"`
	Tone     string `json:"tone,omitempty"`
	Platform string `json:"platform,omitempty"`
}

type ProfileOptimizationInput struct {
	Headline   string `json:"headline,omitempty"`
	About      string `json:"about,omitempty"`
	TargetRole string `json:"targetRole,omitempty"`
}

type JobApplicationInput struct {
	Email          string `json:"email"`
	JobDescription string `json:"jobDescription,omitempty"`
	Resume         string `json:"resume,omitempty"`
}

type CaseStudyInput struct {
	ProjectName string `json:"projectName"`
	Challenge   string `json:"challenge,omitempty"`
	Solution    string `json:"solution,omitempty"`
	Results     string `json:"results,omitempty"`
}

type JobPostInput struct {
	JobTitle     string `json:"jobTitle"`
	Company      string `json:"company,omitempty"`
	Requirements string `json:"requirements,omitempty"`
}

type NewsToPostInput struct {
	Headline string `json:"headline"`
	URL      string `json:"url,omitempty"`
	Article  string `json:"article,omitempty"`
}

type NetworkingInput struct {
	TargetRole    string `json:"targetRole"`
	RecipientName string `json:"recipientName,omitempty"`
	Goal          string `json:"goal,omitempty"`
}

type JobSearchInput struct {
	Query    string `json:"query"`
	Location string `json:"location,omitempty"`
}

type JobFetchInput struct {
	Query    string `json:"query"`
	Location string `json:"location,omitempty"`
}

type InterviewPrepInput struct {
	Role    string `json:"role"`
	Company string `json:"company,omitempty"`
}

type SavedJobInput struct {
	Title   string `json:"title"`
	Company string `json:"company,omitempty"`
	URL     string `json:"url,omitempty"`
}

func (ContentGenerationInput) Feature() FeatureType   { return ContentGeneration }
func (ProfileOptimizationInput) Feature() FeatureType { return ProfileOptimization }
func (JobApplicationInput) Feature() FeatureType      { return JobApplication }
func (CaseStudyInput) Feature() FeatureType           { return CaseStudy }
func (JobPostInput) Feature() FeatureType             { return JobPost }
func (NewsToPostInput) Feature() FeatureType          { return NewsToPost }
func (NetworkingInput) Feature() FeatureType          { return Networking }
func (JobSearchInput) Feature() FeatureType           { return JobSearch }
func (JobFetchInput) Feature() FeatureType            { return JobFetch }
func (InterviewPrepInput) Feature() FeatureType       { return InterviewPrep }
func (SavedJobInput) Feature() FeatureType            { return SavedJob }

// DecodeInput decodes raw into the concrete Input for ft.
func DecodeInput(ft FeatureType, raw json.RawMessage) (Input, error) {
	if t := bytes.TrimSpace(raw); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil, fmt.Errorf("empty input for %s", ft)
	}

	var in Input
	var err error
	switch ft {
	case ContentGeneration:
		in, err = decodeAs[ContentGenerationInput](raw)
	case ProfileOptimization:
		in, err = decodeAs[ProfileOptimizationInput](raw)
	case JobApplication:
		in, err = decodeAs[JobApplicationInput](raw)
	case CaseStudy:
		in, err = decodeAs[CaseStudyInput](raw)
	case JobPost:
		in, err = decodeAs[JobPostInput](raw)
	case NewsToPost:
		in, err = decodeAs[NewsToPostInput](raw)
	case Networking:
		in, err = decodeAs[NetworkingInput](raw)
	case JobSearch:
		in, err = decodeAs[JobSearchInput](raw)
	case JobFetch:
		in, err = decodeAs[JobFetchInput](raw)
	case InterviewPrep:
		in, err = decodeAs[InterviewPrepInput](raw)
	case SavedJob:
		in, err = decodeAs[SavedJobInput](raw)
	default:
		return nil, fmt.Errorf("unknown feature type: %q", ft)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s input: %w", ft, err)
	}
	return in, nil
}

func decodeAs[T Input](raw json.RawMessage) (Input, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
