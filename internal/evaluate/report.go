package evaluate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/doc-autopilot/internal/markdown"
)

// FormatReport renders a markdown evaluation report for one document.
// content is the evaluated document text; it feeds the structure section
// and may be empty.
func FormatReport(result *Result, filename, content string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Documentation Evaluation: %s\n\n", filename))
	sb.WriteString(fmt.Sprintf("**Overall Score:** %d/%d — Grade: %s\n\n", result.TotalScore, result.MaxScore, result.Grade))
	sb.WriteString(fmt.Sprintf("**Summary:** %s\n\n", result.Summary))

	sb.WriteString("## Category Breakdown\n\n")
	for _, category := range orderedCategories(result) {
		data := result.CategoryScores[category]
		sb.WriteString(fmt.Sprintf("- **%s:** %d/%d — %s\n", displayName(category), data.Score, data.MaxScore, data.Reason))
	}
	sb.WriteString("\n")

	stats := markdown.Analyze(content)
	sb.WriteString("## Document Structure\n\n")
	sb.WriteString(stats.Summary() + "\n")
	if outline := stats.Outline(); outline != "" {
		sb.WriteString("\n" + outline)
	}
	sb.WriteString("\n")

	if len(result.TopRecommendations) > 0 {
		sb.WriteString("## Top Improvement Recommendations\n\n")
		for _, rec := range result.TopRecommendations {
			sb.WriteString("- " + rec + "\n")
		}
		sb.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("## Response Warnings\n\n")
		for _, w := range result.Warnings {
			sb.WriteString("- " + w + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// orderedCategories returns category names in rubric order when known,
// otherwise alphabetically for stable output.
func orderedCategories(result *Result) []string {
	if len(result.CategoryOrder) > 0 {
		names := make([]string, 0, len(result.CategoryOrder))
		for _, name := range result.CategoryOrder {
			if _, ok := result.CategoryScores[name]; ok {
				names = append(names, name)
			}
		}
		return names
	}

	names := make([]string, 0, len(result.CategoryScores))
	for name := range result.CategoryScores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
