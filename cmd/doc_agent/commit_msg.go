// Package main implements the doc_agent CLI tool for documentation automation.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-autopilot/internal/enrich"
	"github.com/jonathan/doc-autopilot/internal/gitops"
)

var commitMsgCmd = &cobra.Command{
	Use:   "commit-msg",
	Short: "Generate a commit message from the staged changes",
	Long:  "Summarizes the staged git diff into a conventional commit message and prints it to stdout. Falls back to the last commit when nothing is staged.",
	Args:  cobra.NoArgs,
	RunE:  runCommitMsg,
}

func init() {
	rootCmd.AddCommand(commitMsgCmd)
}

func runCommitMsg(_ *cobra.Command, _ []string) error {
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

	pipeline := enrich.NewPipeline(client, &gitops.Git{}, enrich.Options{
		WikiDir:    cfg.WikiDir,
		ReadmePath: cfg.ReadmePath,
	})

	message, err := pipeline.CommitSummary(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to generate commit message: %w", err)
	}

	fmt.Println(message)
	return nil
}
