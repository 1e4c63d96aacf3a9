// Package main implements the doc_agent CLI tool for documentation automation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-autopilot/internal/batch"
	"github.com/jonathan/doc-autopilot/internal/config"
	"github.com/jonathan/doc-autopilot/internal/evaluate"
	"github.com/jonathan/doc-autopilot/internal/rubric"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <path>",
	Short: "Score a document or directory against a rubric",
	Long:  "Evaluates a markdown document (or with --dir, every markdown file under a directory) against a weighted rubric and prints a scored report with improvement recommendations.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvaluate,
}

var (
	evaluateDir       bool
	evaluateType      string
	evaluateExtra     string
	evaluateOutput    string
	evaluateOutputDir string
	evaluateJSON      bool
	evaluateWorkers   int
)

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateDir, "dir", false, "Treat <path> as a directory and evaluate every markdown file in it")
	evaluateCmd.Flags().StringVarP(&evaluateType, "type", "t", "", "Document type (readme, generic, or a custom rubric type); inferred from the filename when empty")
	evaluateCmd.Flags().StringVar(&evaluateExtra, "extra-criteria", "", "Additional evaluation criteria appended to the rubric")
	evaluateCmd.Flags().StringVarP(&evaluateOutput, "output", "o", "", "Write the report to this file instead of stdout")
	evaluateCmd.Flags().StringVar(&evaluateOutputDir, "output-dir", "", "With --dir, write one report per file into this directory")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "Emit the evaluation result as JSON instead of a markdown report")
	evaluateCmd.Flags().IntVar(&evaluateWorkers, "workers", 0, "Concurrent evaluations with --dir (default 4)")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(_ *cobra.Command, args []string) error {
	// 1. Load configuration and build the evaluator
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := context.Background()

	client, err := buildClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	evaluator := evaluate.NewEvaluator(client, registry)

	// 2. Dispatch to single-file or directory mode
	if evaluateDir {
		return evaluateDirectory(ctx, cfg, evaluator, args[0])
	}
	return evaluateSingle(ctx, cfg, evaluator, args[0])
}

func evaluateSingle(ctx context.Context, cfg config.Config, evaluator *evaluate.Evaluator, path string) error {
	// 1. Read the document
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	docType := evaluateType
	if docType == "" {
		docType = rubric.InferDocType(filepath.Base(path))
	}

	// 2. Run the evaluation
	result, err := evaluator.Evaluate(ctx, string(content), docType, evaluateExtra)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if printer := verbosePrinter(cfg); printer != nil {
		printer.PrintEvaluation(result, filepath.Base(path))
	}

	// 3. Render and emit the report
	output, err := renderEvaluation(result, filepath.Base(path), string(content))
	if err != nil {
		return err
	}

	if evaluateOutput != "" {
		if err := os.WriteFile(evaluateOutput, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", evaluateOutput)
		return nil
	}

	fmt.Println(output)
	return nil
}

func evaluateDirectory(ctx context.Context, cfg config.Config, evaluator *evaluate.Evaluator, dir string) error {
	workers := evaluateWorkers
	if workers == 0 {
		workers = cfg.Workers
	}

	// 1. Evaluate every markdown file under the directory
	results, err := batch.EvaluateDir(ctx, evaluator, dir, evaluateType, evaluateExtra, workers)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Printf("No markdown files found under %s\n", dir)
		return nil
	}

	if printer := verbosePrinter(cfg); printer != nil {
		printer.PrintBatch(results)
	}

	// 2. Write per-file reports when an output directory was given
	if evaluateOutputDir != "" {
		if err := writeBatchReports(results, evaluateOutputDir); err != nil {
			return err
		}
	}

	// 3. Print the summary
	if evaluateJSON {
		if err := printBatchJSON(results); err != nil {
			return err
		}
	} else {
		printBatchSummary(results)
	}

	// 4. The run only fails when every file failed
	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return fmt.Errorf("all %d files failed to evaluate", len(results))
	}
	return nil
}

// renderEvaluation returns either the markdown report or the JSON
// encoding of the result, depending on the --json flag.
func renderEvaluation(result *evaluate.Result, filename, content string) (string, error) {
	if !evaluateJSON {
		return evaluate.FormatReport(result, filename, content), nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

func printBatchSummary(results []batch.FileResult) {
	fmt.Printf("Evaluated %d files:\n", len(results))
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  FAIL  %s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Printf("  %3d   %s (%s)\n", r.Score, r.Path, r.Result.Grade)
	}
}

func printBatchJSON(results []batch.FileResult) error {
	type fileEntry struct {
		Path   string           `json:"path"`
		Error  string           `json:"error,omitempty"`
		Result *evaluate.Result `json:"result,omitempty"`
	}
	entries := make([]fileEntry, 0, len(results))
	for _, r := range results {
		entry := fileEntry{Path: r.Path, Result: r.Result}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		entries = append(entries, entry)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func writeBatchReports(results []batch.FileResult, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		content, err := os.ReadFile(r.Path)
		if err != nil {
			content = nil
		}
		report := evaluate.FormatReport(r.Result, filepath.Base(r.Path), string(content))
		name := filepath.Base(r.Path) + ".report.md"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(report), 0o644); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", r.Path, err)
		}
	}
	fmt.Printf("Reports written to %s\n", dir)
	return nil
}
