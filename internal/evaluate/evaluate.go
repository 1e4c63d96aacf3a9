// Package evaluate scores documentation against a rubric using an LLM.
package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/doc-autopilot/internal/llm"
	"github.com/jonathan/doc-autopilot/internal/prompts"
	"github.com/jonathan/doc-autopilot/internal/rubric"
	"github.com/jonathan/doc-autopilot/internal/schemas"
)

// Grade labels assigned by score band
const (
	GradeExcellent        = "Excellent"
	GradeGood             = "Good"
	GradeSatisfactory     = "Satisfactory"
	GradeNeedsImprovement = "Needs Improvement"
	GradePoor             = "Poor"
)

// CategoryScore is the scored outcome for one rubric category.
type CategoryScore struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Reason   string `json:"reason"`
}

// Result is a normalized evaluation of one document.
type Result struct {
	DocType            string                   `json:"doc_type"`
	TotalScore         int                      `json:"total_score"`
	MaxScore           int                      `json:"max_score"`
	Grade              string                   `json:"grade"`
	Summary            string                   `json:"summary"`
	CategoryScores     map[string]CategoryScore `json:"category_scores"`
	TopRecommendations []string                 `json:"top_recommendations"`
	// Warnings carries schema validation findings for responses that were
	// parseable but off-shape. Advisory only.
	Warnings []string `json:"warnings,omitempty"`

	// CategoryOrder preserves rubric ordering for display
	CategoryOrder []string `json:"-"`
}

// Percentage returns the total score as a percentage of the maximum.
func (r *Result) Percentage() float64 {
	if r.MaxScore == 0 {
		return 0
	}
	return float64(r.TotalScore) / float64(r.MaxScore) * 100
}

// Metrics flattens the result into named numeric metrics.
func (r *Result) Metrics() map[string]float64 {
	metrics := map[string]float64{
		"total_score":      float64(r.TotalScore),
		"score_percentage": r.Percentage(),
	}
	for category, data := range r.CategoryScores {
		metrics[category] = float64(data.Score)
		if data.MaxScore > 0 {
			metrics[category+"_percentage"] = float64(data.Score) / float64(data.MaxScore) * 100
		}
	}
	return metrics
}

// UnparseableError indicates the model returned something that is not the
// expected JSON document even after fence stripping.
type UnparseableError struct {
	Raw   string
	Cause error
}

func (e *UnparseableError) Error() string {
	raw := e.Raw
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	return fmt.Sprintf("unparseable evaluation response: %v (content: %s)", e.Cause, raw)
}

func (e *UnparseableError) Unwrap() error {
	return e.Cause
}

// Evaluator scores documents through an LLM client.
type Evaluator struct {
	client  llm.Client
	rubrics *rubric.Registry
}

// NewEvaluator creates an evaluator. A nil registry gets the built-in rubrics.
func NewEvaluator(client llm.Client, rubrics *rubric.Registry) *Evaluator {
	if rubrics == nil {
		rubrics = rubric.NewRegistry()
	}
	return &Evaluator{client: client, rubrics: rubrics}
}

// Evaluate scores content under the rubric for docType. Empty content is
// evaluated like any other document. extraCriteria, when non-empty, is
// appended to the prompt as additional scoring guidance.
//
// Gateway errors propagate wrapped. A response that cannot be parsed as
// JSON yields an *UnparseableError.
func (e *Evaluator) Evaluate(ctx context.Context, content, docType, extraCriteria string) (*Result, error) {
	spec := e.rubrics.ForDocType(docType)

	prompt := buildEvalPrompt(spec, content, extraCriteria)

	raw, err := e.client.CompleteJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("evaluation request failed: %w", err)
	}
	raw = llm.CleanJSONBlock(raw)

	var warnings []string
	if verr := schemas.ValidateEvaluation(raw); verr != nil {
		var vErr *schemas.ValidationError
		if errors.As(verr, &vErr) {
			for _, fe := range vErr.Errors {
				warnings = append(warnings, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
			}
		}
	}

	var parsed rawResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &UnparseableError{Raw: raw, Cause: err}
	}

	result := normalize(&parsed, spec)
	result.Warnings = warnings
	return result, nil
}

func buildEvalPrompt(spec *rubric.Spec, content, extraCriteria string) string {
	extra := ""
	if strings.TrimSpace(extraCriteria) != "" {
		extra = "\nADDITIONAL EVALUATION CRITERIA:\n" + extraCriteria + "\n"
	}

	template := prompts.MustGet("evaluation.json", "evaluate-document")
	return prompts.Format(template, map[string]string{
		"Categories":    spec.PromptSection(),
		"Content":       content,
		"ExtraCriteria": extra,
		"Schema":        spec.SchemaExample(),
	})
}

// rawResult mirrors the model's response before normalization. Category
// values stay raw because models return several shapes for them.
type rawResult struct {
	CategoryScores     map[string]json.RawMessage `json:"category_scores"`
	TotalScore         *float64                   `json:"total_score"`
	Grade              string                     `json:"grade"`
	Summary            string                     `json:"summary"`
	TopRecommendations []string                   `json:"top_recommendations"`
}

// normalize converts a raw response into a Result that honors the rubric:
// every rubric category present, scores clamped to category weight, total
// within [0, 100], grade filled from score bands when missing.
func normalize(parsed *rawResult, spec *rubric.Spec) *Result {
	summary := parsed.Summary
	if strings.TrimSpace(summary) == "" {
		summary = "No summary provided"
	}

	result := &Result{
		DocType:            spec.DocType,
		MaxScore:           rubric.MaxScore,
		Summary:            summary,
		CategoryScores:     make(map[string]CategoryScore, len(spec.Categories)),
		TopRecommendations: parsed.TopRecommendations,
		CategoryOrder:      spec.CategoryNames(),
	}

	for _, c := range spec.Categories {
		raw, ok := parsed.CategoryScores[c.Name]
		if !ok {
			result.CategoryScores[c.Name] = CategoryScore{
				Score:    0,
				MaxScore: c.Weight,
				Reason:   "Not addressed in the evaluation response",
			}
			result.TopRecommendations = append(result.TopRecommendations,
				fmt.Sprintf("Add or improve %s (no score was returned for it)", displayName(c.Name)))
			continue
		}

		score, reason := decodeCategoryScore(raw)
		if score < 0 {
			score = 0
		}
		if score > c.Weight {
			score = c.Weight
		}
		result.CategoryScores[c.Name] = CategoryScore{
			Score:    score,
			MaxScore: c.Weight,
			Reason:   reason,
		}
	}

	if parsed.TotalScore != nil {
		result.TotalScore = clamp(int(math.Round(*parsed.TotalScore)), 0, rubric.MaxScore)
	} else {
		total := 0
		for _, data := range result.CategoryScores {
			total += data.Score
		}
		result.TotalScore = clamp(total, 0, rubric.MaxScore)
	}

	if parsed.Grade != "" {
		result.Grade = parsed.Grade
	} else {
		result.Grade = GradeFor(result.TotalScore)
	}

	return result
}

// decodeCategoryScore handles the score shapes models actually produce:
// {"score": n, "reason": "..."}, a bare number, or [n, "reason"].
func decodeCategoryScore(raw json.RawMessage) (int, string) {
	var obj struct {
		Score  *float64 `json:"score"`
		Reason string   `json:"reason"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Score != nil {
		reason := obj.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		return int(math.Round(*obj.Score)), reason
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return int(math.Round(num)), "No reason provided"
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err == nil && len(pair) >= 2 {
		if err := json.Unmarshal(pair[0], &num); err == nil {
			var reason string
			if err := json.Unmarshal(pair[1], &reason); err != nil || reason == "" {
				reason = "No reason provided"
			}
			return int(math.Round(num)), reason
		}
	}

	return 0, string(raw)
}

// GradeFor maps a total score to its grade band.
func GradeFor(score int) string {
	switch {
	case score >= 90:
		return GradeExcellent
	case score >= 80:
		return GradeGood
	case score >= 70:
		return GradeSatisfactory
	case score >= 50:
		return GradeNeedsImprovement
	default:
		return GradePoor
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func displayName(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
