// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/doc-autopilot/internal/batch"
	"github.com/jonathan/doc-autopilot/internal/cycle"
	"github.com/jonathan/doc-autopilot/internal/enrich"
	"github.com/jonathan/doc-autopilot/internal/evaluate"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEvaluation outputs a summary of one document's evaluation.
func (p *Printer) PrintEvaluation(result *evaluate.Result, filename string) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("File:   %s\n", filename))
	sb.WriteString(fmt.Sprintf("Score:  %d/%d (%s)\n", result.TotalScore, result.MaxScore, result.Grade))
	sb.WriteString("\n")

	if len(result.CategoryScores) > 0 {
		sb.WriteString("Categories:\n")
		names := result.CategoryOrder
		if len(names) == 0 {
			for name := range result.CategoryScores {
				names = append(names, name)
			}
		}
		count := 0
		for _, name := range names {
			data, ok := result.CategoryScores[name]
			if !ok {
				continue
			}
			if count >= maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.CategoryScores)-count))
				break
			}
			sb.WriteString(fmt.Sprintf("  • %s: %d/%d\n", name, data.Score, data.MaxScore))
			count++
		}
	}

	if len(result.TopRecommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		count := min(len(result.TopRecommendations), 3)
		for i := 0; i < count; i++ {
			rec := result.TopRecommendations[i]
			if len(rec) > 50 {
				rec = rec[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", rec))
		}
		if len(result.TopRecommendations) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.TopRecommendations)-3))
		}
	}

	p.printBox("EVALUATION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCycle outputs the per-iteration score progression of a cycle.
func (p *Printer) PrintCycle(result *cycle.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cycle:  %s\n", result.CycleID))
	sb.WriteString(fmt.Sprintf("Score:  %d → %d (%+d)\n", result.InitialScore, result.FinalScore, result.FinalScore-result.InitialScore))
	sb.WriteString(fmt.Sprintf("Stop:   %s\n", result.StopReason))

	if len(result.History) > 0 {
		sb.WriteString("\nIterations:\n")
		for _, record := range result.History {
			sb.WriteString(fmt.Sprintf("  #%d  %d → %d (%+d)\n", record.Iteration, record.PreScore, record.PostScore, record.Delta))
		}
	}

	if result.Err != "" {
		sb.WriteString(fmt.Sprintf("\n⚠ aborted at iteration %d\n", result.AbortedAt))
	}

	p.printBox("IMPROVEMENT CYCLE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatch outputs the scored files of a directory evaluation.
func (p *Printer) PrintBatch(results []batch.FileResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	sb.WriteString(fmt.Sprintf("Evaluated %d files (%d failed)\n\n", len(results), len(results)-succeeded))

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		name := r.Path
		if len(name) > 40 {
			name = "..." + name[len(name)-37:]
		}
		if r.Err != nil {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", name))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %3d  %s\n", r.Score, name))
	}
	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more files", len(results)-maxItemsToShow))
	}

	p.printBox("BATCH EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEnrichment outputs what the enrichment pipeline changed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEnrichment(result *enrich.Result) {
	if result == nil {
		return
	}

	if result.NoChanges {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO STAGED CHANGES — NOTHING TO ENRICH")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	if len(result.SelectedArticles) > 0 {
		sb.WriteString(fmt.Sprintf("Selected articles: %s\n\n", strings.Join(result.SelectedArticles, ", ")))
	}

	for _, outcome := range result.Outcomes {
		name := outcome.Path
		if len(name) > 45 {
			name = "..." + name[len(name)-42:]
		}
		switch {
		case outcome.Err != nil:
			sb.WriteString(fmt.Sprintf("✗ %s\n", name))
		case outcome.Updated:
			sb.WriteString(fmt.Sprintf("✓ %s (updated)\n", name))
		default:
			sb.WriteString(fmt.Sprintf("- %s (no changes)\n", name))
		}
	}

	p.printBox("ENRICHMENT", strings.TrimSuffix(sb.String(), "\n"))
}
