package analysis

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

// DegradedReasoningLimit bounds the raw completion excerpt kept when no JSON
// can be recovered.
const DegradedReasoningLimit = 1000

const unparsedReasoning = "Failed to parse analysis response"

// objectSpan matches from the first '{' to the last '}'.
var objectSpan = regexp.MustCompile(`\{[\s\S]*\}`)

// RecoverJSON extracts a scored JSON object from model output. It tries the
// whole text, then the text without code fences, then the widest {...} span.
func RecoverJSON(content string) (map[string]any, bool) {
	if m, ok := parseScored(content); ok {
		return m, true
	}
	stripped := stripCodeFences(content)
	if stripped != content {
		if m, ok := parseScored(stripped); ok {
			return m, true
		}
	}
	if span := objectSpan.FindString(stripped); span != "" {
		if m, ok := parseScored(span); ok {
			return m, true
		}
	}
	return nil, false
}

// MapCompletion converts a chat completion into a result. Unrecoverable
// output yields a zero score with an excerpt of the text as reasoning.
func MapCompletion(content string) domain.AnalysisResult {
	if m, ok := RecoverJSON(content); ok {
		return Normalize(m)
	}
	return Degraded(content)
}

// Degraded is the zero-value result for unparseable model output.
func Degraded(content string) domain.AnalysisResult {
	reasoning := truncateRunes(content, DegradedReasoningLimit)
	if reasoning == "" {
		reasoning = unparsedReasoning
	}
	return domain.AnalysisResult{
		SkillsFound:   []string{},
		SkillsMissing: []string{},
		Reasoning:     reasoning,
	}
}

func parseScored(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	if !numeric(m["score"]) && !numeric(m["match_score"]) {
		return nil, false
	}
	return m, true
}

func numeric(v any) bool {
	switch x := v.(type) {
	case float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil
	}
	return false
}

func stripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		// drop the info string, e.g. ```json
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
