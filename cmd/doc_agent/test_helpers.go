package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func getBinaryPath(t *testing.T) string {
	binaryName := "doc_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}

// testEnv returns the current environment with both provider API keys
// removed, plus any overrides. Keeps tests independent of the caller's
// shell environment.
func testEnv(overrides ...string) []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "OPENAI_API_KEY=") || strings.HasPrefix(kv, "GEMINI_API_KEY=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, overrides...)
}
