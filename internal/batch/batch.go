// Package batch evaluates every markdown document under a directory.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/doc-autopilot/internal/evaluate"
	"github.com/jonathan/doc-autopilot/internal/rubric"
)

// DefaultWorkers bounds concurrent evaluations when none is given
const DefaultWorkers = 4

// Evaluator scores a document. Satisfied by *evaluate.Evaluator.
type Evaluator interface {
	Evaluate(ctx context.Context, content, docType, extraCriteria string) (*evaluate.Result, error)
}

// FileResult is the outcome for one file. Err is set when reading or
// evaluating that file failed; the rest of the batch is unaffected.
type FileResult struct {
	Path    string
	DocType string
	Score   int
	Result  *evaluate.Result
	Err     error
}

// EvaluateDir walks dir for .md files and evaluates each one through a
// bounded worker pool. When docType is empty it is inferred per file
// (README.md gets the readme rubric). Results come back sorted by score
// descending with failed files last; one file's failure never aborts the
// batch. Results are keyed by path, not by completion order.
func EvaluateDir(ctx context.Context, evaluator Evaluator, dir, docType, extraCriteria string, workers int) ([]FileResult, error) {
	paths, err := collectMarkdownFiles(dir)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = evaluateFile(gctx, evaluator, path, docType, extraCriteria)
			return nil
		})
	}
	// Workers record their own failures, so Wait only reflects ctx state.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortResults(results)
	return results, nil
}

func evaluateFile(ctx context.Context, evaluator Evaluator, path, docType, extraCriteria string) FileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
	}

	dt := docType
	if dt == "" {
		dt = rubric.InferDocType(filepath.Base(path))
	}

	result, err := evaluator.Evaluate(ctx, string(data), dt, extraCriteria)
	if err != nil {
		return FileResult{Path: path, DocType: dt, Err: err}
	}

	return FileResult{
		Path:    path,
		DocType: dt,
		Score:   result.TotalScore,
		Result:  result,
	}
}

func collectMarkdownFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return paths, nil
}

// sortResults orders by score descending, failures last, path as the
// tie-break so output is stable regardless of completion order.
func sortResults(results []FileResult) {
	sort.Slice(results, func(a, b int) bool {
		ra, rb := results[a], results[b]
		if (ra.Err == nil) != (rb.Err == nil) {
			return ra.Err == nil
		}
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return ra.Path < rb.Path
	})
}
