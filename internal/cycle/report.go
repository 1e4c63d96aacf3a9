package cycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormatReport renders a human-readable summary of the cycle.
func (r *Result) FormatReport() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Improvement Cycle: %s\n\n", r.CycleID))
	sb.WriteString(fmt.Sprintf("Iterations: %d\n", len(r.History)))
	sb.WriteString(fmt.Sprintf("Started: %s\n\n", r.StartedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString(fmt.Sprintf("Initial Score: %d\n", r.InitialScore))
	sb.WriteString(fmt.Sprintf("Final Score: %d\n", r.FinalScore))
	sb.WriteString(fmt.Sprintf("Total Improvement: %+d points\n\n", r.FinalScore-r.InitialScore))

	if len(r.History) > 0 {
		sb.WriteString("## Iteration Summary\n\n")
		for _, record := range r.History {
			sb.WriteString(fmt.Sprintf("- Iteration %d: %d → %d (%+d)\n",
				record.Iteration, record.PreScore, record.PostScore, record.Delta))
		}
		sb.WriteString("\n")
	}

	switch r.StopReason {
	case StopTargetReached:
		sb.WriteString("Target score reached.\n")
	case StopMaxIterations:
		sb.WriteString("Stopped at the iteration cap; target not reached.\n")
	case StopPlateau:
		sb.WriteString("Stopped on improvement plateau; target not reached.\n")
	case StopAborted:
		sb.WriteString(fmt.Sprintf("Target was not reached due to an error at iteration %d: %s\n", r.AbortedAt, r.Err))
	}

	return sb.String()
}

// Save writes the cycle artifacts under dir/<doc type>/<cycle id>/:
// report.md, data.json, original.md, final.md, and per-iteration
// before/after content with both evaluations.
func (r *Result) Save(dir string) error {
	cycleDir := filepath.Join(dir, r.DocType, r.CycleID)
	if err := os.MkdirAll(cycleDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	if err := writeFile(filepath.Join(cycleDir, "report.md"), []byte(r.FormatReport())); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cycle data: %w", err)
	}
	if err := writeFile(filepath.Join(cycleDir, "data.json"), data); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(cycleDir, "original.md"), []byte(r.InitialContent)); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(cycleDir, "final.md"), []byte(r.FinalContent)); err != nil {
		return err
	}

	for _, record := range r.History {
		iterDir := filepath.Join(cycleDir, fmt.Sprintf("iteration_%d", record.Iteration))
		if err := os.MkdirAll(iterDir, 0o755); err != nil {
			return fmt.Errorf("failed to create iteration directory: %w", err)
		}

		if err := writeFile(filepath.Join(iterDir, "before.md"), []byte(record.ContentBefore)); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(iterDir, "after.md"), []byte(record.ContentAfter)); err != nil {
			return err
		}

		for name, eval := range map[string]any{
			"eval_before.json": record.EvalBefore,
			"eval_after.json":  record.EvalAfter,
		} {
			data, err := json.MarshalIndent(eval, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal evaluation: %w", err)
			}
			if err := writeFile(filepath.Join(iterDir, name), data); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
