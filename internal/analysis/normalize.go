package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

// GoodFitThreshold is the score at or above which a candidate is a good fit
// when the provider does not say so explicitly.
const GoodFitThreshold = 70

// payload covers both the flat and the nested (extracted_info) shapes.
type payload struct {
	CandidateName  *string  `mapstructure:"candidate_name"`
	CandidateEmail *string  `mapstructure:"candidate_email"`
	Score          *float64 `mapstructure:"score"`
	MatchScore     *float64 `mapstructure:"match_score"`
	SkillsFound    any      `mapstructure:"skills_found"`
	SkillsMissing  any      `mapstructure:"skills_missing"`
	Years          *float64 `mapstructure:"years_of_experience"`
	IsGoodFit      *bool    `mapstructure:"is_good_fit"`
	Reasoning      *string  `mapstructure:"reasoning"`
	Recommendation *string  `mapstructure:"recommendation"`
	Extracted      *struct {
		Name   *string  `mapstructure:"name"`
		Email  *string  `mapstructure:"email"`
		Skills any      `mapstructure:"skills"`
		Years  *float64 `mapstructure:"years_experience"`
	} `mapstructure:"extracted_info"`
}

// Normalize maps a raw provider payload onto the canonical result. It never
// fails: fields that cannot be decoded are treated as absent.
func Normalize(raw map[string]any) domain.AnalysisResult {
	var p payload
	if raw != nil {
		if err := weakDecode(raw, &p); err != nil {
			slog.Debug("analysis payload partially decoded", slog.Any("error", err))
		}
	}

	out := domain.AnalysisResult{
		SkillsFound:   []string{},
		SkillsMissing: []string{},
	}

	switch {
	case p.Score != nil:
		out.Score = clampScore(*p.Score)
	case p.MatchScore != nil:
		out.Score = clampScore(*p.MatchScore)
	}

	out.CandidateName = firstText(p.CandidateName, nil)
	out.CandidateEmail = firstText(p.CandidateEmail, nil)
	if p.Years != nil {
		out.YearsOfExperience = nonNegative(*p.Years)
	}

	found := p.SkillsFound
	if p.Extracted != nil {
		out.CandidateName = firstText(p.CandidateName, p.Extracted.Name)
		out.CandidateEmail = firstText(p.CandidateEmail, p.Extracted.Email)
		if found == nil {
			found = p.Extracted.Skills
		}
		if p.Years == nil && p.Extracted.Years != nil {
			out.YearsOfExperience = nonNegative(*p.Extracted.Years)
		}
	}
	out.SkillsFound = stringList(found)
	out.SkillsMissing = stringList(p.SkillsMissing)

	if p.IsGoodFit != nil {
		out.IsGoodFit = *p.IsGoodFit
	} else {
		out.IsGoodFit = out.Score >= GoodFitThreshold
	}

	switch {
	case p.Reasoning != nil && strings.TrimSpace(*p.Reasoning) != "":
		out.Reasoning = strings.TrimSpace(*p.Reasoning)
	case p.Recommendation != nil:
		out.Reasoning = strings.TrimSpace(*p.Recommendation)
	}
	return out
}

func weakDecode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// stringList accepts only arrays; every element is rendered as text, blanks
// are dropped and duplicates removed keeping first occurrence.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if ss, isStrings := v.([]string); isStrings {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		} else {
			return []string{}
		}
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		var s string
		switch x := it.(type) {
		case string:
			s = x
		case nil:
			continue
		case map[string]any, []any:
			continue
		default:
			s = fmt.Sprint(x)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func firstText(candidates ...*string) *string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if s := strings.TrimSpace(*c); s != "" {
			return &s
		}
	}
	return nil
}

func clampScore(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 100:
		return 100
	}
	return f
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
