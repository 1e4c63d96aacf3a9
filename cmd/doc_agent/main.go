// Package main provides the entry point for the doc_agent documentation CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "doc_agent",
	Short: "Documentation automation agent",
	Long:  "doc_agent evaluates and improves project documentation against weighted rubrics, and enriches README and wiki files from git diffs using an LLM.",
}

var (
	flagProvider string
	flagModel    string
	flagRubric   string
	flagConfig   string
	flagVerbose  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: openai or gemini (default openai)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Model name override")
	rootCmd.PersistentFlags().StringVar(&flagRubric, "rubric", "", "Path to a custom rubric YAML file")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed progress information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
