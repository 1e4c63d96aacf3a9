// Package main implements the doc_agent CLI tool for documentation automation.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-autopilot/internal/enrich"
	"github.com/jonathan/doc-autopilot/internal/gitops"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Update README and wiki articles from the staged git diff",
	Long:  "Reads the staged git diff, asks the model which wiki articles are affected, appends model-suggested updates to them and to the README, and stages the modified files. Exits cleanly when nothing is staged.",
	Args:  cobra.NoArgs,
	RunE:  runEnrich,
}

var (
	enrichWikiDir      string
	enrichReadme       string
	enrichSinceDays    int
	enrichSinceTag     string
	enrichSinceLastTag bool
	enrichTag          string
)

func init() {
	enrichCmd.Flags().StringVar(&enrichWikiDir, "wiki-dir", "", "Directory containing wiki articles (default wiki)")
	enrichCmd.Flags().StringVar(&enrichReadme, "readme", "", "Path to the README file (default README.md)")
	enrichCmd.Flags().IntVar(&enrichSinceDays, "since-days", 0, "Enrich from the commit history of the last N days instead of the staged diff")
	enrichCmd.Flags().StringVar(&enrichSinceTag, "since-tag", "", "Enrich from all changes since this tag instead of the staged diff")
	enrichCmd.Flags().BoolVar(&enrichSinceLastTag, "since-last-tag", false, "Enrich from all changes since the most recent tag")
	enrichCmd.Flags().StringVar(&enrichTag, "tag", "", "Create this annotated tag after files were enriched")
	enrichCmd.MarkFlagsMutuallyExclusive("since-tag", "since-last-tag")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(_ *cobra.Command, _ []string) error {
	// 1. Load configuration and build the pipeline
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

	git := &gitops.Git{}

	opts := enrich.Options{
		WikiDir:    enrichWikiDir,
		ReadmePath: enrichReadme,
		SinceDays:  enrichSinceDays,
		SinceTag:   enrichSinceTag,
	}
	if opts.WikiDir == "" {
		opts.WikiDir = cfg.WikiDir
	}
	if opts.ReadmePath == "" {
		opts.ReadmePath = cfg.ReadmePath
	}
	if enrichSinceLastTag {
		tag, err := git.LatestTag(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve the latest tag: %w", err)
		}
		opts.SinceTag = tag
	}

	pipeline := enrich.NewPipeline(client, git, opts)

	// 2. Run the enrichment
	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	if printer := verbosePrinter(cfg); printer != nil {
		printer.PrintEnrichment(result)
	}

	// 3. Report the outcome; an empty diff is a successful no-op
	if result.NoChanges {
		fmt.Println("No changes found; nothing to enrich.")
		return nil
	}

	updated := 0
	failed := 0
	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Err != nil:
			failed++
			fmt.Printf("FAIL  %s: %v\n", outcome.Path, outcome.Err)
		case outcome.Updated:
			updated++
			fmt.Printf("ok    %s (updated and staged)\n", outcome.Path)
		default:
			fmt.Printf("skip  %s (no changes suggested)\n", outcome.Path)
		}
	}
	fmt.Printf("Enriched %d of %d files (%d failed)\n", updated, len(result.Outcomes), failed)

	if enrichTag != "" && updated > 0 {
		if err := git.CreateTag(ctx, enrichTag, "docs: enriched documentation"); err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		fmt.Printf("Created tag %s\n", enrichTag)
	}
	return nil
}
