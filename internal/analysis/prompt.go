// Package analysis turns job requirements into model prompts and turns
// heterogeneous provider payloads into domain.AnalysisResult values.
package analysis

import (
	"strings"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

const notAvailable = "N/A"

const promptHeader = `You are a professional resume screening AI. Your task is to analyze a candidate's resume against specific job requirements and provide a detailed, accurate assessment.

CRITICAL INSTRUCTIONS:
1. Extract candidate information FIRST (name, email) from the resume text
2. Calculate a match score (0-100) based on:
   - Skills match (weight: 40%)
   - Experience level match (weight: 30%)
   - Overall fit and quality (weight: 30%)
3. Be OPTIMISTIC but FAIR - give credit where due, but don't inflate scores
4. Score 70+ only for genuinely strong candidates
5. Score 50-69 for decent candidates with some gaps
6. Score below 50 only for poor fits
7. Extract ALL skills found in resume (not just required ones)
8. List ONLY missing required skills
9. Calculate years of experience from resume work history

REQUIRED OUTPUT FORMAT (JSON only, no markdown, no code blocks):
{
  "candidate_name": "Full Name from Resume",
  "candidate_email": "email@example.com",
  "score": 75,
  "skills_found": ["skill1", "skill2", "skill3"],
  "skills_missing": ["skill4", "skill5"],
  "years_of_experience": 5,
  "is_good_fit": true,
  "reasoning": "Detailed 2-3 sentence explanation of why this score was given, highlighting strengths and weaknesses"
}
`

// BuildPrompt renders the screening prompt sent to chat models. Output is
// fully determined by its inputs.
func BuildPrompt(resumeText string, job domain.JobRequirements) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(resumeText) + 256)
	b.WriteString(promptHeader)

	b.WriteString("\nJOB REQUIREMENTS:\n")
	b.WriteString("- Job Title: " + orNA(job.Title) + "\n")
	b.WriteString("- Required Skills: " + orNA(job.RequiredSkills.Joined()) + "\n")
	b.WriteString("- Experience Level: " + orNA(string(job.ExperienceLevel)) + "\n")
	if d := strings.TrimSpace(job.Description); d != "" {
		b.WriteString("- Job Description: " + d + "\n")
	}

	b.WriteString("\nRESUME TEXT:\n")
	b.WriteString(resumeText)
	b.WriteString("\n\nReturn ONLY valid JSON, no other text.")
	return b.String()
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notAvailable
	}
	return s
}
