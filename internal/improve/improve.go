// Package improve rewrites documentation based on evaluation feedback.
package improve

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/doc-autopilot/internal/evaluate"
	"github.com/jonathan/doc-autopilot/internal/llm"
	"github.com/jonathan/doc-autopilot/internal/prompts"
)

// Improver generates improved document revisions through an LLM client.
type Improver struct {
	client llm.Client
}

// NewImprover creates an improver backed by client.
func NewImprover(client llm.Client) *Improver {
	return &Improver{client: client}
}

// Improve rewrites content to address the findings in evaluation. The
// returned text is always a complete standalone document, never a patch.
// When the evaluation carries no recommendations and no category scored
// below its maximum, content is returned unchanged without an API call.
func (i *Improver) Improve(ctx context.Context, content string, evaluation *evaluate.Result, docType string) (string, error) {
	if evaluation != nil && !needsImprovement(evaluation) {
		return content, nil
	}

	prompt := buildImprovePrompt(content, evaluation)

	improved, err := i.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("improvement request failed: %w", err)
	}

	improved = stripWrapperFence(improved)
	if improved == "" {
		return content, nil
	}
	return improved, nil
}

// stripWrapperFence unwraps a response that is one fenced block wrapping
// the entire document. A document that merely begins or ends with a code
// example keeps its fences.
func stripWrapperFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}

	body := strings.TrimSuffix(trimmed, "```")
	idx := strings.Index(body, "\n")
	if idx < 0 {
		return trimmed
	}

	inner := body[idx+1:]
	if strings.Contains(inner, "```") {
		return trimmed
	}
	return strings.TrimSpace(inner)
}

// needsImprovement reports whether the evaluation leaves anything to fix.
func needsImprovement(evaluation *evaluate.Result) bool {
	if len(evaluation.TopRecommendations) > 0 {
		return true
	}
	for _, data := range evaluation.CategoryScores {
		if data.Score < data.MaxScore {
			return true
		}
	}
	return false
}

func buildImprovePrompt(content string, evaluation *evaluate.Result) string {
	evalText := "{}"
	if evaluation != nil {
		if data, err := json.MarshalIndent(evaluation, "", "  "); err == nil {
			evalText = string(data)
		}
	}

	template := prompts.MustGet("improvement.json", "improve-document")
	return prompts.Format(template, map[string]string{
		"Content":    content,
		"Evaluation": evalText,
		"FocusAreas": focusAreas(evaluation),
	})
}

// focusAreas picks the improvement targets: the evaluator's
// recommendations when present, otherwise the lowest-scoring categories
// under 80%, otherwise generic guidance.
func focusAreas(evaluation *evaluate.Result) string {
	if evaluation == nil {
		return defaultFocusAreas()
	}

	if len(evaluation.TopRecommendations) > 0 {
		var lines []string
		for _, rec := range evaluation.TopRecommendations {
			lines = append(lines, "- "+rec)
		}
		return strings.Join(lines, "\n")
	}

	type weakCategory struct {
		name       string
		score      int
		maxScore   int
		percentage float64
	}

	var weak []weakCategory
	for name, data := range evaluation.CategoryScores {
		if data.MaxScore == 0 {
			continue
		}
		weak = append(weak, weakCategory{
			name:       name,
			score:      data.Score,
			maxScore:   data.MaxScore,
			percentage: float64(data.Score) / float64(data.MaxScore) * 100,
		})
	}
	sort.Slice(weak, func(a, b int) bool {
		if weak[a].percentage != weak[b].percentage {
			return weak[a].percentage < weak[b].percentage
		}
		return weak[a].name < weak[b].name
	})

	var lines []string
	for _, c := range weak {
		if len(lines) >= 3 {
			break
		}
		if c.percentage < 80 {
			lines = append(lines, fmt.Sprintf("- Improve %s: currently scores %d/%d", displayName(c.name), c.score, c.maxScore))
		}
	}

	if len(lines) == 0 {
		return defaultFocusAreas()
	}
	return strings.Join(lines, "\n")
}

func defaultFocusAreas() string {
	return strings.Join([]string{
		"- Improve overall document structure and clarity",
		"- Add more detail where needed",
		"- Ensure all information is accurate and complete",
	}, "\n")
}

func displayName(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
