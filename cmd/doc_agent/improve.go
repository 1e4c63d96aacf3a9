// Package main implements the doc_agent CLI tool for documentation automation.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-autopilot/internal/evaluate"
	"github.com/jonathan/doc-autopilot/internal/improve"
	"github.com/jonathan/doc-autopilot/internal/rubric"
)

var improveCmd = &cobra.Command{
	Use:   "improve <path>",
	Short: "Rewrite a document based on its evaluation",
	Long:  "Evaluates a markdown document, asks the model to rewrite it addressing the weakest areas, and emits the improved version together with a before/after report.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImprove,
}

var (
	improveType       string
	improveOutput     string
	improveReport     string
	improveSkipReeval bool
)

func init() {
	improveCmd.Flags().StringVarP(&improveType, "type", "t", "", "Document type (readme, generic, or a custom rubric type); inferred from the filename when empty")
	improveCmd.Flags().StringVarP(&improveOutput, "output", "o", "", "Write the improved document to this file instead of stdout")
	improveCmd.Flags().StringVar(&improveReport, "report", "", "Write a before/after improvement report to this file")
	improveCmd.Flags().BoolVar(&improveSkipReeval, "skip-reeval", false, "Skip the second evaluation of the improved document")

	rootCmd.AddCommand(improveCmd)
}

func runImprove(_ *cobra.Command, args []string) error {
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

	docType := improveType
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
	evaluator := evaluate.NewEvaluator(client, registry)
	improver := improve.NewImprover(client)

	// 2. Evaluate the current document
	evalBefore, err := evaluator.Evaluate(ctx, string(content), docType, "")
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if printer := verbosePrinter(cfg); printer != nil {
		printer.PrintEvaluation(evalBefore, filepath.Base(path))
	}

	// 3. Improve it
	improved, err := improver.Improve(ctx, string(content), evalBefore, docType)
	if err != nil {
		return fmt.Errorf("improvement failed: %w", err)
	}

	// 4. Optionally re-evaluate the improved version
	var evalAfter *evaluate.Result
	if !improveSkipReeval {
		evalAfter, err = evaluator.Evaluate(ctx, improved, docType, "")
		if err != nil {
			return fmt.Errorf("re-evaluation failed: %w", err)
		}
		fmt.Printf("Score: %d → %d (%+d)\n", evalBefore.TotalScore, evalAfter.TotalScore, evalAfter.TotalScore-evalBefore.TotalScore)
	}

	// 5. Write the improvement report when requested
	if improveReport != "" {
		report := improve.FormatReport(string(content), improved, evalBefore, evalAfter)
		if err := os.WriteFile(improveReport, []byte(report), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", improveReport)
	}

	// 6. Emit the improved document
	if improveOutput != "" {
		if err := os.WriteFile(improveOutput, []byte(improved), 0o644); err != nil {
			return fmt.Errorf("failed to write improved document: %w", err)
		}
		fmt.Printf("Improved document written to %s\n", improveOutput)
		return nil
	}

	fmt.Println(improved)
	return nil
}
