// Package main implements the doc_agent CLI tool for documentation automation.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-autopilot/internal/llm"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported document types and providers",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	fmt.Println("Document types:")
	for _, docType := range registry.DocTypes() {
		fmt.Printf("  %s\n", docType)
	}

	fmt.Println("\nProviders:")
	fmt.Printf("  %-8s (default model %s)\n", llm.ProviderOpenAI, llm.DefaultConfig().Model)
	fmt.Printf("  %-8s (default model %s)\n", llm.ProviderGemini, llm.DefaultGeminiConfig().Model)
	return nil
}
