package services

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"math"
	"strings"
	"time"
)

const maxPromptDescription = 8000

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

type AIService struct {
	aiClient aiClient
}

func NewAIService(aiClient aiClient) *AIService {
	return &AIService{aiClient: aiClient}
}

type filterResponse struct {
	Keep          *bool    `json:"keep"`
	BaselineScore *float64 `json:"baseline_score"`
	FilterReason  string   `json:"filter_reason"`
}

type analysisResponse struct {
	QualificationScore *float64 `json:"qualification_score"`
	ShouldApply        bool     `json:"should_apply"`
	Strengths          []string `json:"strengths"`
	Gaps               []string `json:"gaps"`
	Recommendation     string   `json:"recommendation"`
}

func (a *AIService) FilterAndScore(ctx context.Context, posting models.Posting, resume string,
	prefs models.Preferences) (models.FilterDecision, error) {

	response, err := a.aiClient.GenerateResponse(ctx, a.filterRequest(posting, resume, prefs))
	if err != nil {
		return models.FilterDecision{}, err
	}
	log.Debugf("got filter response %q for %v", response, posting.URL)

	var parsed filterResponse
	if err = json.Unmarshal([]byte(cleanMarkdownJSON(response)), &parsed); err != nil {
		return models.FilterDecision{}, fmt.Errorf("unexpected filter response for %v: %w", posting.URL, err)
	}
	if parsed.Keep == nil || parsed.BaselineScore == nil {
		return models.FilterDecision{}, fmt.Errorf("filter response for %v misses keep or baseline_score", posting.URL)
	}

	return models.FilterDecision{
		Keep:          *parsed.Keep,
		BaselineScore: clampScore(*parsed.BaselineScore),
		FilterReason:  strings.TrimSpace(parsed.FilterReason),
	}, nil
}

func (a *AIService) Analyze(ctx context.Context, posting models.Posting, resume string) (models.Analysis, error) {

	response, err := a.aiClient.GenerateResponse(ctx, a.analysisRequest(posting, resume))
	if err != nil {
		return models.Analysis{}, err
	}

	var parsed analysisResponse
	if err = json.Unmarshal([]byte(cleanMarkdownJSON(response)), &parsed); err != nil {
		return models.Analysis{}, fmt.Errorf("unexpected analysis response for %v: %w", posting.URL, err)
	}
	if parsed.QualificationScore == nil {
		return models.Analysis{}, fmt.Errorf("analysis response for %v misses qualification_score", posting.URL)
	}

	return models.Analysis{
		QualificationScore: clampScore(*parsed.QualificationScore),
		ShouldApply:        parsed.ShouldApply,
		Strengths:          compactStrings(parsed.Strengths),
		Gaps:               compactStrings(parsed.Gaps),
		Recommendation:     strings.TrimSpace(parsed.Recommendation),
	}, nil
}

func (a *AIService) filterRequest(posting models.Posting, resume string, prefs models.Preferences) string {

	var b strings.Builder
	b.WriteString("You screen job postings for one candidate.\n\n")
	writePosting(&b, posting)
	b.WriteString("\nCandidate resume:\n")
	b.WriteString(resume)

	if prefs.Salary.Minimum > 0 {
		fmt.Fprintf(&b, "\n\nMinimum acceptable salary: %d USD per year.", prefs.Salary.Minimum)
	}
	if locations := describeLocations(prefs.Location.Primary); locations != "" {
		b.WriteString("\nPreferred locations: " + locations + ".")
	}
	if prefs.Notes != "" {
		b.WriteString("\nCandidate notes: " + prefs.Notes)
	}

	b.WriteString("\n\nDecide whether the posting is worth a closer look. Reject only clear mismatches " +
		"(wrong field, wrong seniority by far, unrelated stack). Rate how well the candidate fits from 1 to 100.\n" +
		`Answer with JSON only: {"keep": true|false, "baseline_score": 1-100, "filter_reason": "short reason when keep is false"}`)
	return b.String()
}

func (a *AIService) analysisRequest(posting models.Posting, resume string) string {

	var b strings.Builder
	b.WriteString("You review how qualified a candidate is for a job.\n\n")
	writePosting(&b, posting)
	b.WriteString("\nCandidate resume:\n")
	b.WriteString(resume)
	b.WriteString("\n\nCompare the requirements with the resume. List concrete strengths and gaps.\n" +
		`Answer with JSON only: {"qualification_score": 1-100, "should_apply": true|false, ` +
		`"strengths": ["..."], "gaps": ["..."], "recommendation": "one or two sentences"}`)
	return b.String()
}

func writePosting(b *strings.Builder, posting models.Posting) {
	b.WriteString("Job title: " + posting.Title + "\n")
	b.WriteString("Company: " + posting.Company + "\n")
	if posting.Location != "" {
		b.WriteString("Location: " + posting.Location + "\n")
	}
	if posting.PostedAt != nil {
		b.WriteString("Posted: " + posting.PostedAt.Format(time.DateOnly) + "\n")
	}
	description := []rune(posting.Body)
	if len(description) > maxPromptDescription {
		description = description[:maxPromptDescription]
	}
	b.WriteString("Description:\n" + string(description) + "\n")
}

func describeLocations(entries []models.LocationEntry) string {
	return strings.Join(lo.FilterMap(entries, func(entry models.LocationEntry, _ int) (string, bool) {
		if entry.Type == models.LocationRemote {
			return "remote", true
		}
		if entry.Value == "" {
			return "", false
		}
		if entry.State != "" {
			return entry.Value + ", " + entry.State, true
		}
		return entry.Value, true
	}), "; ")
}

// cleanMarkdownJSON strips code fences and any prose around the JSON object.
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start, end := strings.Index(content, "{"), strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return strings.TrimSpace(content)
}

func clampScore(score float64) int {
	return int(math.Max(1, math.Min(100, math.Round(score))))
}

func compactStrings(values []string) []string {
	return lo.Compact(lo.Map(values, func(s string, _ int) string { return strings.TrimSpace(s) }))
}
