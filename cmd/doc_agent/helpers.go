// Package main implements the doc_agent CLI tool for documentation automation.
package main

import (
	"context"
	"os"

	"github.com/jonathan/doc-autopilot/internal/config"
	"github.com/jonathan/doc-autopilot/internal/llm"
	"github.com/jonathan/doc-autopilot/internal/observability"
	"github.com/jonathan/doc-autopilot/internal/rubric"
)

// loadSettings merges flag values over the optional config file and
// validates the result. Flags always win.
func loadSettings() (config.Config, error) {
	fileCfg := config.Config{}
	if flagConfig != "" {
		loaded, err := config.LoadConfig(flagConfig)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	flagCfg := config.Config{
		Provider:   flagProvider,
		Model:      flagModel,
		RubricPath: flagRubric,
	}
	merged := flagCfg.MergeWithDefaults(fileCfg)
	if flagVerbose || fileCfg.Verbose {
		merged.Verbose = true
	}

	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// buildClient constructs the retrying completion client for the chosen
// provider. A missing credential fails here, before any work starts.
func buildClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	llmCfg := llm.DefaultConfig()
	if cfg.Provider == string(llm.ProviderGemini) {
		llmCfg = llm.DefaultGeminiConfig()
	}
	if cfg.Model != "" {
		llmCfg = llmCfg.WithModel(cfg.Model)
	}
	if cfg.Temperature > 0 {
		llmCfg.Temperature = float32(cfg.Temperature)
	}

	apiKey, err := llmCfg.LookupCredential()
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(client), nil
}

// buildRegistry returns the rubric registry, extended with the custom
// rubric file when one was configured.
func buildRegistry(cfg config.Config) (*rubric.Registry, error) {
	registry := rubric.NewRegistry()
	if cfg.RubricPath != "" {
		spec, err := rubric.Load(cfg.RubricPath)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(spec); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// verbosePrinter returns a Printer when verbose output is enabled,
// nil otherwise.
func verbosePrinter(cfg config.Config) *observability.Printer {
	if !cfg.Verbose {
		return nil
	}
	return observability.NewPrinter(os.Stdout)
}
