package main

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCommand_MissingCredential(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "evaluate", filepath.Join(tmpDir, "README.md"))
	cmd.Dir = tmpDir
	cmd.Env = testEnv()
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "OPENAI_API_KEY environment variable not set")
}

func TestEvaluateCommand_MissingFile(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "evaluate", filepath.Join(tmpDir, "nonexistent.md"))
	cmd.Dir = tmpDir
	cmd.Env = testEnv("OPENAI_API_KEY=test-key")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to read document")
}

func TestEvaluateCommand_UnknownProvider(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "evaluate", "--provider", "claude", filepath.Join(tmpDir, "README.md"))
	cmd.Dir = tmpDir
	cmd.Env = testEnv("OPENAI_API_KEY=test-key")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "Provider")
}

func TestEvaluateCommand_MissingRubricFile(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "evaluate", "--rubric", filepath.Join(tmpDir, "nonexistent.yaml"), filepath.Join(tmpDir, "README.md"))
	cmd.Dir = tmpDir
	cmd.Env = testEnv("OPENAI_API_KEY=test-key")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "rubric file not found")
}
