package domain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument          = errors.New("invalid argument")
	ErrConfigurationMissing     = errors.New("configuration missing")
	ErrBothProvidersUnavailable = errors.New("both providers unavailable")
	ErrEmptyResult              = errors.New("empty result")
	ErrUpstreamTimeout          = errors.New("upstream timeout")
	ErrUpstreamRateLimit        = errors.New("upstream rate limit")
	ErrUpstreamProvider         = errors.New("upstream provider error")
)

// Provider tags which side of a fallback pair produced a result.
type Provider string

const (
	ProviderPrimary   Provider = "primary"
	ProviderSecondary Provider = "secondary"
)

// Capability names a fallback pipeline.
type Capability string

const (
	CapabilityOCR      Capability = "ocr"
	CapabilityAnalysis Capability = "analysis"
)

// DefaultLanguage is the OCR language hint used when a request carries none.
const DefaultLanguage = "eng"

// ExtractionRequest is a document to OCR.
// Invariants: DocumentBase64 non-empty and valid standard base64.
type ExtractionRequest struct {
	DocumentBase64 string `json:"document_base64" validate:"required"`
	FilenameHint   string `json:"filename,omitempty"`
	Language       string `json:"language,omitempty"`
}

// Validate checks the request invariants.
func (r ExtractionRequest) Validate() error {
	if strings.TrimSpace(r.DocumentBase64) == "" {
		return fmt.Errorf("%w: document is empty", ErrInvalidArgument)
	}
	if _, err := r.Decode(); err != nil {
		return err
	}
	return nil
}

// Decode returns the raw document bytes.
func (r ExtractionRequest) Decode() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(r.DocumentBase64))
	if err != nil {
		return nil, fmt.Errorf("%w: document is not valid base64: %v", ErrInvalidArgument, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidArgument)
	}
	return b, nil
}

// LanguageOr returns the request's language hint, else fallback, else DefaultLanguage.
func (r ExtractionRequest) LanguageOr(fallback string) string {
	if l := strings.TrimSpace(r.Language); l != "" {
		return l
	}
	if l := strings.TrimSpace(fallback); l != "" {
		return l
	}
	return DefaultLanguage
}

// ExtractionResult is the outcome of a successful extraction.
type ExtractionResult struct {
	Text         string   `json:"text"`
	ProviderUsed Provider `json:"provider_used"`
}

// SkillList decodes from either a JSON array of strings or a comma-joined string.
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SkillList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if b[0] == '"' {
		var joined string
		if err := json.Unmarshal(b, &joined); err != nil {
			return err
		}
		*s = ParseSkills(joined)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("required_skills must be a string or an array of strings: %w", err)
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*s = out
	return nil
}

// Joined renders the skills as a comma-separated list.
func (s SkillList) Joined() string { return strings.Join(s, ", ") }

// ParseSkills splits a comma-joined skill string.
func ParseSkills(joined string) SkillList {
	parts := strings.Split(joined, ",")
	out := make(SkillList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExperienceLevel holds either a free-form level ("mid", "senior") or a number of years.
type ExperienceLevel string

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExperienceLevel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = ExperienceLevel(strings.TrimSpace(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("experience level must be a string or a number: %w", err)
	}
	*e = ExperienceLevel(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// MarshalJSON emits a JSON number when the level is numeric.
func (e ExperienceLevel) MarshalJSON() ([]byte, error) {
	if e == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseFloat(string(e), 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(e))
}

// JobRequirements describes the position a resume is scored against.
type JobRequirements struct {
	Title           string          `json:"title" validate:"required"`
	RequiredSkills  SkillList       `json:"required_skills"`
	ExperienceLevel ExperienceLevel `json:"years_experience"`
	Description     string          `json:"job_description,omitempty"`
}

// UnmarshalJSON accepts the alias keys sent by older callers
// (job_title, experience_level).
func (j *JobRequirements) UnmarshalJSON(b []byte) error {
	var raw struct {
		Title           string          `json:"title"`
		JobTitle        string          `json:"job_title"`
		RequiredSkills  SkillList       `json:"required_skills"`
		YearsExperience ExperienceLevel `json:"years_experience"`
		ExperienceLevel ExperienceLevel `json:"experience_level"`
		Description     string          `json:"job_description"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	j.Title = strings.TrimSpace(raw.Title)
	if j.Title == "" {
		j.Title = strings.TrimSpace(raw.JobTitle)
	}
	j.RequiredSkills = raw.RequiredSkills
	j.ExperienceLevel = raw.YearsExperience
	if j.ExperienceLevel == "" {
		j.ExperienceLevel = raw.ExperienceLevel
	}
	j.Description = strings.TrimSpace(raw.Description)
	return nil
}

// MarshalJSON writes both key spellings so either generation of the
// inference service can read the payload.
func (j JobRequirements) MarshalJSON() ([]byte, error) {
	skills := j.RequiredSkills
	if skills == nil {
		skills = SkillList{}
	}
	return json.Marshal(struct {
		Title           string          `json:"title"`
		JobTitle        string          `json:"job_title"`
		RequiredSkills  []string        `json:"required_skills"`
		YearsExperience ExperienceLevel `json:"years_experience"`
		ExperienceLevel ExperienceLevel `json:"experience_level"`
		Description     string          `json:"job_description"`
	}{j.Title, j.Title, skills, j.ExperienceLevel, j.ExperienceLevel, j.Description})
}

// AnalysisResult is the canonical resume assessment.
// Invariants: 0 <= Score <= 100; YearsOfExperience >= 0.
type AnalysisResult struct {
	CandidateName     *string  `json:"candidate_name,omitempty"`
	CandidateEmail    *string  `json:"candidate_email,omitempty"`
	Score             float64  `json:"score"`
	SkillsFound       []string `json:"skills_found"`
	SkillsMissing     []string `json:"skills_missing"`
	YearsOfExperience float64  `json:"years_of_experience"`
	IsGoodFit         bool     `json:"is_good_fit"`
	Reasoning         string   `json:"reasoning"`
	ProviderUsed      Provider `json:"provider_used,omitempty"`
	ProcessingTimeMs  *int64   `json:"processing_time_ms,omitempty"`
	Model             string   `json:"model,omitempty"`
}

// Ports

// TextProvider extracts plain text from one document with a single attempt.
type TextProvider interface {
	Name() string
	ExtractText(ctx Context, req ExtractionRequest) (string, error)
}

// AnalysisProvider returns a raw analysis payload (flat or nested shape).
type AnalysisProvider interface {
	Name() string
	Analyze(ctx Context, resumeText string, job JobRequirements) (map[string]any, error)
}

// CompletionProvider runs one chat completion against one model.
type CompletionProvider interface {
	Name() string
	Complete(ctx Context, model, prompt string) (string, error)
}

// Context is an alias to allow decoupling from std context in domain
type Context = context.Context
