// Package llm provides centralized LLM configuration and client abstractions.
// This package enables switching between completion providers without touching
// the evaluation and enrichment logic built on top of it.
package llm

import "os"

// Provider represents an LLM completion provider
type Provider string

// Provider constants define supported completion providers
const (
	// ProviderOpenAI is the OpenAI chat completions provider
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Config holds the completion client configuration for the application
type Config struct {
	Provider Provider
	Model    string
	// Temperature for model inference; low values keep scoring consistent
	Temperature float32
}

// DefaultConfig returns the default configuration (OpenAI, gpt-4o)
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o",
		Temperature: 0.2,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       "gemini-2.5-flash",
		Temperature: 0.2,
	}
}

// WithModel returns a copy of the config with a specific model
func (c *Config) WithModel(model string) *Config {
	out := *c
	out.Model = model
	return &out
}

// CredentialEnvVar returns the environment variable that holds the API key
// for the configured provider.
func (c *Config) CredentialEnvVar() string {
	if c.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// LookupCredential reads the provider API key from the environment.
// A missing key is reported as *AuthError so callers can fail fast at startup.
func (c *Config) LookupCredential() (string, error) {
	key := os.Getenv(c.CredentialEnvVar())
	if key == "" {
		return "", &AuthError{
			Provider: c.Provider,
			Message:  c.CredentialEnvVar() + " environment variable not set",
		}
	}
	return key, nil
}
