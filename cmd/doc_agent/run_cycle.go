// Package main implements the doc_agent CLI tool for documentation automation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-autopilot/internal/cycle"
	"github.com/jonathan/doc-autopilot/internal/evaluate"
	"github.com/jonathan/doc-autopilot/internal/improve"
	"github.com/jonathan/doc-autopilot/internal/rubric"
)

var runCycleCmd = &cobra.Command{
	Use:   "run-cycle <path>",
	Short: "Run the evaluate-improve loop until the document stops getting better",
	Long:  "Repeatedly evaluates and rewrites a markdown document until it reaches the target score, hits the iteration cap, or plateaus. The best-scoring revision is kept even when a later round fails.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunCycle,
}

var (
	runCycleType           string
	runCycleIterations     int
	runCycleMinImprovement float64
	runCycleTargetScore    int
	runCycleOutput         string
	runCycleReport         string
	runCycleJSON           bool
	runCycleSaveResults    bool
	runCycleResultsDir     string
)

func init() {
	runCycleCmd.Flags().StringVarP(&runCycleType, "type", "t", "", "Document type (readme, generic, or a custom rubric type); inferred from the filename when empty")
	runCycleCmd.Flags().IntVar(&runCycleIterations, "iterations", 0, "Maximum improvement rounds (default 3)")
	runCycleCmd.Flags().Float64Var(&runCycleMinImprovement, "min-improvement", 0, "Minimum score gain per round before the cycle plateaus (default 1)")
	runCycleCmd.Flags().IntVar(&runCycleTargetScore, "target-score", 0, "Stop as soon as the document reaches this score; unset means no target")
	runCycleCmd.Flags().StringVarP(&runCycleOutput, "output", "o", "", "Write the best revision to this file")
	runCycleCmd.Flags().StringVar(&runCycleReport, "report", "", "Write the cycle report to this file")
	runCycleCmd.Flags().BoolVar(&runCycleJSON, "json", false, "Emit the cycle result as JSON instead of a markdown report")
	runCycleCmd.Flags().BoolVar(&runCycleSaveResults, "save-results", false, "Save all cycle artifacts under the results directory")
	runCycleCmd.Flags().StringVar(&runCycleResultsDir, "results-dir", "", "Directory for saved cycle artifacts (default results)")

	rootCmd.AddCommand(runCycleCmd)
}

func runRunCycle(cmd *cobra.Command, args []string) error {
	// 1. Load configuration and read the document
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	docType := runCycleType
	if docType == "" {
		docType = rubric.InferDocType(filepath.Base(path))
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

	// 2. Assemble the runner, letting flags override config file values
	opts := cycle.Options{
		MaxIterations:  runCycleIterations,
		MinImprovement: runCycleMinImprovement,
		SaveResults:    runCycleSaveResults,
		ResultsDir:     runCycleResultsDir,
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = cfg.MaxIterations
	}
	if opts.MinImprovement == 0 {
		opts.MinImprovement = cfg.MinImprovement
	}
	// A target of 0 is meaningful (any score meets it), so only an
	// explicitly set flag counts.
	if cmd.Flags().Changed("target-score") {
		opts.TargetScore = cycle.Target(runCycleTargetScore)
	} else if cfg.TargetScore > 0 {
		opts.TargetScore = cycle.Target(cfg.TargetScore)
	}
	if opts.ResultsDir == "" {
		opts.ResultsDir = cfg.ResultsDir
	}

	runner := cycle.NewRunner(
		evaluate.NewEvaluator(client, registry),
		improve.NewImprover(client),
		opts,
	)

	// 3. Run the cycle; a failed round still returns the partial result
	result, runErr := runner.Run(ctx, string(content), docType)

	if printer := verbosePrinter(cfg); printer != nil {
		printer.PrintCycle(result)
	}

	// 4. Emit the report and best revision before surfacing any failure
	if err := emitCycleResult(result); err != nil {
		return err
	}

	if runErr != nil {
		var abortErr *cycle.AbortError
		if errors.As(runErr, &abortErr) {
			fmt.Fprintf(os.Stderr, "Cycle aborted at iteration %d; best revision from %d completed rounds was kept\n", abortErr.Iteration, len(result.History))
		}
		return runErr
	}
	return nil
}

func emitCycleResult(result *cycle.Result) error {
	if runCycleOutput != "" {
		if err := os.WriteFile(runCycleOutput, []byte(result.FinalContent), 0o644); err != nil {
			return fmt.Errorf("failed to write best revision: %w", err)
		}
		fmt.Printf("Best revision written to %s\n", runCycleOutput)
	}

	var rendered string
	if runCycleJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		rendered = string(data)
	} else {
		rendered = result.FormatReport()
	}

	if runCycleReport != "" {
		if err := os.WriteFile(runCycleReport, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", runCycleReport)
		return nil
	}

	fmt.Println(rendered)
	return nil
}
