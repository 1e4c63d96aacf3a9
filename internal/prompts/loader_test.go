package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPrompts(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		key      string
		contains string
	}{
		{
			name:     "Evaluation prompt",
			filename: "evaluation.json",
			key:      "evaluate-document",
			contains: "{{.Content}}",
		},
		{
			name:     "Improvement prompt",
			filename: "improvement.json",
			key:      "improve-document",
			contains: "{{.Evaluation}}",
		},
		{
			name:     "Article selection prompt",
			filename: "enrichment.json",
			key:      "select-articles",
			contains: "{{.ArticleList}}",
		},
		{
			name:     "Enrichment prompt",
			filename: "enrichment.json",
			key:      "enrich-file",
			contains: "NO CHANGES",
		},
		{
			name:     "Commit summary prompt",
			filename: "enrichment.json",
			key:      "commit-summary",
			contains: "{{.Diff}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := Get(tt.filename, tt.key)
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.contains)
		})
	}
}

func TestGetMissingKey(t *testing.T) {
	_, err := Get("evaluation.json", "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestGetMissingFile(t *testing.T) {
	_, err := Get("absent.json", "anything")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	template := "Evaluate {{.Filename}} with content:\n{{.Content}}"

	result := Format(template, map[string]string{
		"Filename": "README.md",
		"Content":  "# Title",
	})

	assert.Equal(t, "Evaluate README.md with content:\n# Title", result)
}

func TestFormatLeavesUnknownPlaceholders(t *testing.T) {
	result := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "x"})
	assert.Equal(t, "x and {{.Unknown}}", result)
}
