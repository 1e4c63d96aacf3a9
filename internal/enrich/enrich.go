// Package enrich turns a git diff into appended documentation updates
// for the README and selected wiki articles.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/doc-autopilot/internal/gitops"
	"github.com/jonathan/doc-autopilot/internal/llm"
	"github.com/jonathan/doc-autopilot/internal/prompts"
)

const (
	// maxDiffChars is the point past which the full diff is replaced by
	// the staged file list before prompting
	maxDiffChars = 100000

	// noChangesSentinel is the model's way of declining an update
	noChangesSentinel = "NO CHANGES"

	// fallbackArticle receives updates when the model selects nothing valid
	fallbackArticle = "Usage.md"
)

// GitClient is the slice of git operations the pipeline needs.
// Satisfied by *gitops.Git.
type GitClient interface {
	StagedDiff(ctx context.Context) (string, error)
	NameOnlyDiff(ctx context.Context) (string, error)
	DiffAgainst(ctx context.Context, ref string) (string, error)
	DiffSinceDays(ctx context.Context, days int) (string, error)
	DiffSinceTag(ctx context.Context, tag string) (string, error)
	Stage(ctx context.Context, path string) error
}

// Options configures a pipeline run.
type Options struct {
	// WikiDir holds the candidate wiki articles; default "wiki"
	WikiDir string
	// ReadmePath is the README location; default "README.md"
	ReadmePath string
	// SinceDays widens the diff to the last n committed days
	SinceDays int
	// SinceTag diffs against a tag instead of the index
	SinceTag string
}

func (o Options) withDefaults() Options {
	if o.WikiDir == "" {
		o.WikiDir = "wiki"
	}
	if o.ReadmePath == "" {
		o.ReadmePath = "README.md"
	}
	return o
}

// FileOutcome records what happened to one document during a run.
type FileOutcome struct {
	Path    string
	Updated bool
	Err     error
}

// Result summarizes a pipeline run.
type Result struct {
	// NoChanges is true when the diff was empty and nothing ran
	NoChanges        bool
	SelectedArticles []string
	Outcomes         []FileOutcome
}

// Pipeline sequences diff retrieval, article selection, enrichment, and
// staging.
type Pipeline struct {
	client llm.Client
	git    GitClient
	opts   Options
}

// NewPipeline creates a pipeline.
func NewPipeline(client llm.Client, git GitClient, opts Options) *Pipeline {
	return &Pipeline{client: client, git: git, opts: opts.withDefaults()}
}

// Run executes the pipeline. An empty diff is a clean no-op, not an
// error. Per-document failures are recorded in the result and skipped;
// only diff retrieval and article selection failures abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	diff, err := p.collectDiff(ctx)
	if errors.Is(err, gitops.ErrNoChanges) {
		return &Result{NoChanges: true}, nil
	}
	if err != nil {
		return nil, err
	}

	result := &Result{}

	readmeOutcome := p.enrichFile(ctx, filepath.Base(p.opts.ReadmePath), p.opts.ReadmePath, diff)
	result.Outcomes = append(result.Outcomes, readmeOutcome)

	wikiFiles, err := gitops.ListWikiFiles(p.opts.WikiDir)
	if err != nil {
		return nil, err
	}
	if len(wikiFiles) > 0 {
		selected, err := p.selectArticles(ctx, diff, wikiFiles)
		if err != nil {
			return nil, err
		}
		result.SelectedArticles = selected

		for _, filename := range selected {
			outcome := p.enrichFile(ctx, filename, filepath.Join(p.opts.WikiDir, filename), diff)
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}

	return result, nil
}

// collectDiff picks the diff source from the options and applies the
// large-diff fallback for staged changes.
func (p *Pipeline) collectDiff(ctx context.Context) (string, error) {
	switch {
	case p.opts.SinceTag != "":
		diff, err := p.git.DiffSinceTag(ctx, p.opts.SinceTag)
		if err != nil {
			return "", err
		}
		return truncate(diff, maxDiffChars), nil
	case p.opts.SinceDays > 0:
		diff, err := p.git.DiffSinceDays(ctx, p.opts.SinceDays)
		if err != nil {
			return "", err
		}
		return truncate(diff, maxDiffChars), nil
	default:
		diff, err := p.git.StagedDiff(ctx)
		if err != nil {
			return "", err
		}
		if len(diff) > maxDiffChars {
			return p.git.NameOnlyDiff(ctx)
		}
		return diff, nil
	}
}

// selectArticles asks the model which wiki articles the diff touches.
// The response is validated against the candidate list; nothing valid
// falls back to Usage.md.
func (p *Pipeline) selectArticles(ctx context.Context, diff string, wikiFiles []string) ([]string, error) {
	template := prompts.MustGet("enrichment.json", "select-articles")
	prompt := prompts.Format(template, map[string]string{
		"ArticleList": strings.Join(wikiFiles, "\n"),
		"Diff":        diff,
	})

	response, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("article selection failed: %w", err)
	}

	known := make(map[string]bool, len(wikiFiles))
	for _, f := range wikiFiles {
		known[f] = true
	}

	var selected []string
	for _, name := range strings.Split(response, ",") {
		name = strings.TrimSpace(name)
		if name != "" && known[name] {
			selected = append(selected, name)
		}
	}

	if len(selected) == 0 {
		return []string{fallbackArticle}, nil
	}
	return selected, nil
}

// enrichFile asks the model for an addition to one document and appends
// plus stages it unless the model declines. A missing file reads as
// empty content.
func (p *Pipeline) enrichFile(ctx context.Context, filename, path, diff string) FileOutcome {
	content := ""
	if data, err := os.ReadFile(path); err == nil {
		content = string(data)
	}

	template := prompts.MustGet("enrichment.json", "enrich-file")
	prompt := prompts.Format(template, map[string]string{
		"Filename": filename,
		"Diff":     diff,
		"Content":  content,
	})

	suggestion, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return FileOutcome{Path: path, Err: fmt.Errorf("enrichment failed: %w", err)}
	}

	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" || suggestion == noChangesSentinel {
		return FileOutcome{Path: path}
	}

	if err := appendToFile(path, content, suggestion); err != nil {
		return FileOutcome{Path: path, Err: err}
	}
	if err := p.git.Stage(ctx, path); err != nil {
		return FileOutcome{Path: path, Err: err}
	}

	return FileOutcome{Path: path, Updated: true}
}

// CommitSummary generates a commit message for diff. An empty diff falls
// back to the staged changes, then to the last commit; when neither has
// anything it returns a fixed no-op message.
func (p *Pipeline) CommitSummary(ctx context.Context, diff string) (string, error) {
	if strings.TrimSpace(diff) == "" {
		staged, err := p.git.StagedDiff(ctx)
		switch {
		case err == nil:
			diff = staged
		case errors.Is(err, gitops.ErrNoChanges):
			last, err := p.git.DiffAgainst(ctx, "HEAD~1")
			if err != nil {
				return "No changes to summarize", nil
			}
			diff = last
		default:
			return "", err
		}
	}

	template := prompts.MustGet("enrichment.json", "commit-summary")
	prompt := prompts.Format(template, map[string]string{"Diff": truncate(diff, maxDiffChars)})

	message, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("commit summary failed: %w", err)
	}
	return strings.TrimSpace(message), nil
}

// appendToFile adds suggestion to the end of path, separated from any
// existing content by a blank line.
func appendToFile(path, existing, suggestion string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	text := suggestion + "\n"
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		text = "\n\n" + text
	} else if existing != "" {
		text = "\n" + text
	}

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
