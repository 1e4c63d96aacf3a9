package enrich

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/doc-autopilot/internal/gitops"
)

// fakeGit serves canned diffs and records staged paths.
type fakeGit struct {
	staged      string
	stagedErr   error
	nameOnly    string
	sinceDays   string
	sinceTag    string
	headDiff    string
	headErr     error
	stagedPaths []string
}

func (g *fakeGit) StagedDiff(ctx context.Context) (string, error) {
	if g.stagedErr != nil {
		return "", g.stagedErr
	}
	return g.staged, nil
}

func (g *fakeGit) NameOnlyDiff(ctx context.Context) (string, error) {
	return g.nameOnly, nil
}

func (g *fakeGit) DiffAgainst(ctx context.Context, ref string) (string, error) {
	if g.headErr != nil {
		return "", g.headErr
	}
	return g.headDiff, nil
}

func (g *fakeGit) DiffSinceDays(ctx context.Context, days int) (string, error) {
	return g.sinceDays, nil
}

func (g *fakeGit) DiffSinceTag(ctx context.Context, tag string) (string, error) {
	return g.sinceTag, nil
}

func (g *fakeGit) Stage(ctx context.Context, path string) error {
	g.stagedPaths = append(g.stagedPaths, path)
	return nil
}

// routingClient answers prompts by substring matching, so selection and
// per-file enrichment can respond differently in one run.
type routingClient struct {
	respond func(prompt string) (string, error)
	prompts []string
}

func (c *routingClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.respond(prompt)
}

func (c *routingClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return c.Complete(ctx, prompt)
}

func (c *routingClient) Model() string { return "stub-model" }
func (c *routingClient) Close() error  { return nil }

func setupDocs(t *testing.T) (string, Options) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Project\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "wiki"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wiki", "Usage.md"), []byte("# Usage\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wiki", "API.md"), []byte("# API\n"), 0o644))

	return dir, Options{
		WikiDir:    filepath.Join(dir, "wiki"),
		ReadmePath: filepath.Join(dir, "README.md"),
	}
}

func TestRunNoChanges(t *testing.T) {
	git := &fakeGit{stagedErr: gitops.ErrNoChanges}
	client := &routingClient{respond: func(string) (string, error) {
		return "", errors.New("should not be called")
	}}
	_, opts := setupDocs(t)

	result, err := NewPipeline(client, git, opts).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.NoChanges)
	assert.Empty(t, client.prompts)
}

func TestRunEnrichesSelectedFiles(t *testing.T) {
	git := &fakeGit{staged: "diff --git a/main.go b/main.go\n+func New()"}
	client := &routingClient{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "AVAILABLE WIKI ARTICLES"):
			return "API.md, Bogus.md", nil
		case strings.Contains(prompt, "CURRENT CONTENT OF README.md"):
			return "## New Feature\n\nDocumented.", nil
		default:
			return "NO CHANGES", nil
		}
	}}
	dir, opts := setupDocs(t)

	result, err := NewPipeline(client, git, opts).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.NoChanges)
	// Invalid selections are filtered against the candidate list.
	assert.Equal(t, []string{"API.md"}, result.SelectedArticles)

	require.Len(t, result.Outcomes, 2)
	assert.True(t, result.Outcomes[0].Updated)
	assert.False(t, result.Outcomes[1].Updated)

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "# Project")
	assert.Contains(t, string(readme), "## New Feature")

	api, err := os.ReadFile(filepath.Join(dir, "wiki", "API.md"))
	require.NoError(t, err)
	assert.Equal(t, "# API\n", string(api))

	assert.Equal(t, []string{filepath.Join(dir, "README.md")}, git.stagedPaths)
}

func TestRunFallsBackToUsageArticle(t *testing.T) {
	git := &fakeGit{staged: "some diff"}
	client := &routingClient{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "AVAILABLE WIKI ARTICLES") {
			return "nothing that matches", nil
		}
		return "NO CHANGES", nil
	}}
	_, opts := setupDocs(t)

	result, err := NewPipeline(client, git, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Usage.md"}, result.SelectedArticles)
}

func TestRunLargeDiffUsesFileList(t *testing.T) {
	git := &fakeGit{
		staged:   strings.Repeat("x", maxDiffChars+1),
		nameOnly: "main.go\nserver.go",
	}
	client := &routingClient{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "AVAILABLE WIKI ARTICLES") {
			assert.Contains(t, prompt, "main.go\nserver.go")
			assert.NotContains(t, prompt, "xxxxx")
			return "Usage.md", nil
		}
		return "NO CHANGES", nil
	}}
	_, opts := setupDocs(t)

	_, err := NewPipeline(client, git, opts).Run(context.Background())
	require.NoError(t, err)
}

func TestRunRecordsPerFileFailures(t *testing.T) {
	git := &fakeGit{staged: "some diff"}
	client := &routingClient{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "AVAILABLE WIKI ARTICLES"):
			return "Usage.md", nil
		case strings.Contains(prompt, "CURRENT CONTENT OF README.md"):
			return "", errors.New("model unavailable")
		default:
			return "## Usage Update", nil
		}
	}}
	dir, opts := setupDocs(t)

	result, err := NewPipeline(client, git, opts).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 2)
	assert.Error(t, result.Outcomes[0].Err)
	assert.True(t, result.Outcomes[1].Updated)

	usage, err := os.ReadFile(filepath.Join(dir, "wiki", "Usage.md"))
	require.NoError(t, err)
	assert.Contains(t, string(usage), "## Usage Update")
}

func TestRunMissingReadmeTreatedAsEmpty(t *testing.T) {
	git := &fakeGit{staged: "some diff"}
	client := &routingClient{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "AVAILABLE WIKI ARTICLES") {
			return "Usage.md", nil
		}
		if strings.Contains(prompt, "CURRENT CONTENT OF README.md") {
			return "# Fresh README", nil
		}
		return "NO CHANGES", nil
	}}
	dir, opts := setupDocs(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))

	result, err := NewPipeline(client, git, opts).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Outcomes[0].Updated)

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Fresh README\n", string(readme))
}

func TestCommitSummary(t *testing.T) {
	git := &fakeGit{}
	client := &routingClient{respond: func(prompt string) (string, error) {
		assert.Contains(t, prompt, "provided diff")
		return "docs: update usage guide\n", nil
	}}

	pipeline := NewPipeline(client, git, Options{})
	message, err := pipeline.CommitSummary(context.Background(), "provided diff")
	require.NoError(t, err)
	assert.Equal(t, "docs: update usage guide", message)
}

func TestCommitSummaryFallsBackToStaged(t *testing.T) {
	git := &fakeGit{staged: "staged diff"}
	client := &routingClient{respond: func(prompt string) (string, error) {
		assert.Contains(t, prompt, "staged diff")
		return "feat: add parser", nil
	}}

	message, err := NewPipeline(client, git, Options{}).CommitSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "feat: add parser", message)
}

func TestCommitSummaryFallsBackToLastCommit(t *testing.T) {
	git := &fakeGit{stagedErr: gitops.ErrNoChanges, headDiff: "last commit diff"}
	client := &routingClient{respond: func(prompt string) (string, error) {
		assert.Contains(t, prompt, "last commit diff")
		return "fix: close file handle", nil
	}}

	message, err := NewPipeline(client, git, Options{}).CommitSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "fix: close file handle", message)
}

func TestCommitSummaryNothingToSummarize(t *testing.T) {
	git := &fakeGit{stagedErr: gitops.ErrNoChanges, headErr: errors.New("no HEAD~1")}
	client := &routingClient{respond: func(string) (string, error) {
		return "", errors.New("should not be called")
	}}

	message, err := NewPipeline(client, git, Options{}).CommitSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "No changes to summarize", message)
	assert.Empty(t, client.prompts)
}
