package improve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/doc-autopilot/internal/evaluate"
)

// FormatReport renders a markdown report comparing a document before and
// after improvement. evalAfter may be nil when re-evaluation was skipped.
func FormatReport(original, improved string, evalBefore, evalAfter *evaluate.Result) string {
	var sb strings.Builder

	sb.WriteString("# Improvement Report\n\n")

	if evalBefore != nil && evalAfter != nil {
		delta := evalAfter.TotalScore - evalBefore.TotalScore
		sb.WriteString(fmt.Sprintf("**Score Before:** %d\n", evalBefore.TotalScore))
		sb.WriteString(fmt.Sprintf("**Score After:** %d\n", evalAfter.TotalScore))
		sb.WriteString(fmt.Sprintf("**Improvement:** %+d points\n\n", delta))
	}

	originalWords := len(strings.Fields(original))
	improvedWords := len(strings.Fields(improved))
	wordChange := improvedWords - originalWords

	sb.WriteString("## Content Changes\n\n")
	sb.WriteString(fmt.Sprintf("- Original word count: %d\n", originalWords))
	sb.WriteString(fmt.Sprintf("- Improved word count: %d\n", improvedWords))
	switch {
	case wordChange > 0:
		sb.WriteString(fmt.Sprintf("- Added %d words\n", wordChange))
	case wordChange < 0:
		sb.WriteString(fmt.Sprintf("- Removed %d words\n", -wordChange))
	}
	sb.WriteString("\n")

	if evalBefore != nil && len(evalBefore.TopRecommendations) > 0 {
		sb.WriteString("## Improvements Addressed\n\n")
		for _, rec := range evalBefore.TopRecommendations {
			sb.WriteString("- " + rec + "\n")
		}
		sb.WriteString("\n")
	}

	if evalBefore != nil && evalAfter != nil {
		if section := categoryChanges(evalBefore, evalAfter); section != "" {
			sb.WriteString("## Category Changes\n\n")
			sb.WriteString(section)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func categoryChanges(before, after *evaluate.Result) string {
	names := make([]string, 0, len(before.CategoryScores))
	for name := range before.CategoryScores {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		afterScore, ok := after.CategoryScores[name]
		if !ok {
			continue
		}
		beforeScore := before.CategoryScores[name]
		change := afterScore.Score - beforeScore.Score
		if change != 0 {
			sb.WriteString(fmt.Sprintf("- %s: %d → %d (%+d)\n", displayName(name), beforeScore.Score, afterScore.Score, change))
		}
	}
	return sb.String()
}
