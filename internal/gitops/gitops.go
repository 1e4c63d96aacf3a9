// Package gitops shells out to git for the diff, staging, and tagging
// operations the enrichment pipeline needs.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoChanges signals an empty diff. It is a clean no-op for callers,
// not a failure.
var ErrNoChanges = errors.New("no changes detected")

// Git runs git commands in a fixed working directory. An empty Dir uses
// the process working directory.
type Git struct {
	Dir string
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return string(out), nil
}

// StagedDiff returns the staged changes with minimal context lines.
// Returns ErrNoChanges when nothing is staged.
func (g *Git) StagedDiff(ctx context.Context) (string, error) {
	diff, err := g.run(ctx, "diff", "--cached", "-U1")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}
	return diff, nil
}

// NameOnlyDiff returns just the staged file names. Used as a fallback
// when the full diff is too large to send to a model.
func (g *Git) NameOnlyDiff(ctx context.Context) (string, error) {
	names, err := g.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(names) == "" {
		return "", ErrNoChanges
	}
	return names, nil
}

// DiffAgainst returns the diff between ref and the working tree.
func (g *Git) DiffAgainst(ctx context.Context, ref string) (string, error) {
	diff, err := g.run(ctx, "diff", ref, "-U1")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}
	return diff, nil
}

// DiffSinceDays returns the committed changes of the last n days as
// patches.
func (g *Git) DiffSinceDays(ctx context.Context, days int) (string, error) {
	diff, err := g.run(ctx, "log", fmt.Sprintf("--since=%d.days", days), "-p", "-U1", "--no-color")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}
	return diff, nil
}

// DiffSinceTag returns the changes between tag and HEAD.
func (g *Git) DiffSinceTag(ctx context.Context, tag string) (string, error) {
	diff, err := g.run(ctx, "diff", tag+"..HEAD", "-U1")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}
	return diff, nil
}

// Stage adds path to the index.
func (g *Git) Stage(ctx context.Context, path string) error {
	_, err := g.run(ctx, "add", path)
	return err
}

// CreateTag creates an annotated tag at HEAD.
func (g *Git) CreateTag(ctx context.Context, name, message string) error {
	if message == "" {
		message = name
	}
	_, err := g.run(ctx, "tag", "-a", name, "-m", message)
	return err
}

// LatestTag returns the most recent tag reachable from HEAD.
func (g *Git) LatestTag(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ListWikiFiles returns the markdown filenames (basenames, sorted)
// directly under dir. A missing directory yields an empty list.
func ListWikiFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read wiki directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
