package cycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/doc-autopilot/internal/evaluate"
)

// scriptedEvaluator returns a fixed sequence of scores, one per call.
type scriptedEvaluator struct {
	scores []int
	errAt  int // 1-based call index that fails; 0 never fails
	calls  int
}

func (e *scriptedEvaluator) Evaluate(ctx context.Context, content, docType, extraCriteria string) (*evaluate.Result, error) {
	e.calls++
	if e.errAt > 0 && e.calls == e.errAt {
		return nil, errors.New("evaluation backend unavailable")
	}
	idx := e.calls - 1
	if idx >= len(e.scores) {
		idx = len(e.scores) - 1
	}
	score := e.scores[idx]
	return &evaluate.Result{
		DocType:            docType,
		TotalScore:         score,
		MaxScore:           100,
		Grade:              evaluate.GradeFor(score),
		Summary:            "scripted",
		TopRecommendations: []string{"keep going"},
	}, nil
}

// scriptedImprover appends suffix on each call; an empty suffix returns
// the input unchanged.
type scriptedImprover struct {
	suffix string
	errAt  int
	calls  int
}

func (i *scriptedImprover) Improve(ctx context.Context, content string, evaluation *evaluate.Result, docType string) (string, error) {
	i.calls++
	if i.errAt > 0 && i.calls == i.errAt {
		return "", errors.New("improvement backend unavailable")
	}
	return content + i.suffix, nil
}

func TestRunTargetAtBaseline(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{95}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{TargetScore: Target(90)})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	assert.True(t, result.TargetReached)
	assert.Equal(t, StopTargetReached, result.StopReason)
	assert.Empty(t, result.History)
	assert.Equal(t, "# Doc", result.FinalContent)
	assert.Equal(t, 95, result.InitialScore)
	assert.Equal(t, 95, result.FinalScore)
	assert.Equal(t, 1, evaluator.calls)
	assert.Zero(t, improver.calls)
}

func TestRunZeroTargetStopsBeforeFirstImprovement(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{10, 20, 30, 40}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{TargetScore: Target(0)})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	// Any baseline score meets a target of zero, so no round runs and the
	// document comes back untouched.
	assert.True(t, result.TargetReached)
	assert.Equal(t, StopTargetReached, result.StopReason)
	assert.Empty(t, result.History)
	assert.Equal(t, "# Doc", result.FinalContent)
	assert.Equal(t, 1, evaluator.calls)
	assert.Zero(t, improver.calls)
}

func TestRunNoTargetRunsToIterationCap(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{10, 20, 30, 40}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{MaxIterations: 3})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	assert.False(t, result.TargetReached)
	assert.Equal(t, StopMaxIterations, result.StopReason)
	require.Len(t, result.History, 3)
}

func TestRunUntilTarget(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50, 70, 92}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{TargetScore: Target(90), MaxIterations: 5})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	assert.True(t, result.TargetReached)
	require.Len(t, result.History, 2)
	assert.Equal(t, ImprovementRecord{
		Iteration:     1,
		PreScore:      50,
		PostScore:     70,
		Delta:         20,
		ContentBefore: "# Doc",
		ContentAfter:  "# Doc more",
		EvalBefore:    result.History[0].EvalBefore,
		EvalAfter:     result.History[0].EvalAfter,
		Timestamp:     result.History[0].Timestamp,
	}, result.History[0])
	assert.Equal(t, 2, result.History[1].Iteration)
	assert.Equal(t, 92, result.FinalScore)
	assert.Equal(t, "# Doc more more", result.FinalContent)
	assert.Equal(t, 42, result.Metrics.TotalImprovement)
	assert.Equal(t, 21.0, result.Metrics.ImprovementPerIteration)
}

func TestRunPlateau(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50, 60, 60}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	assert.Equal(t, StopPlateau, result.StopReason)
	assert.False(t, result.TargetReached)
	require.Len(t, result.History, 2)
	assert.Equal(t, 0, result.History[1].Delta)
	assert.Equal(t, 60, result.FinalScore)
}

func TestRunMaxIterations(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50, 55, 60, 65}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{MaxIterations: 3})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	assert.Equal(t, StopMaxIterations, result.StopReason)
	require.Len(t, result.History, 3)
	for i, record := range result.History {
		assert.Equal(t, i+1, record.Iteration)
	}
	assert.Equal(t, 65, result.FinalScore)
	assert.Equal(t, 4, evaluator.calls)
}

func TestRunIdenticalContentPlateaus(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50, 50}}
	improver := &scriptedImprover{suffix: ""}
	// Negative MinImprovement disables the delta check, so only the
	// identical-content rule can stop this run early.
	runner := NewRunner(evaluator, improver, Options{MinImprovement: -1, MaxIterations: 5})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	assert.Equal(t, StopPlateau, result.StopReason)
	require.Len(t, result.History, 1)
	assert.Equal(t, "# Doc", result.FinalContent)
}

func TestRunImproverErrorKeepsProgress(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50, 60, 70}}
	improver := &scriptedImprover{suffix: " more", errAt: 2}
	runner := NewRunner(evaluator, improver, Options{MaxIterations: 3})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.Error(t, err)

	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, 2, abortErr.Iteration)

	require.NotNil(t, result)
	assert.Equal(t, StopAborted, result.StopReason)
	assert.Equal(t, 2, result.AbortedAt)
	assert.NotEmpty(t, result.Err)
	require.Len(t, result.History, 1)
	assert.Equal(t, 60, result.FinalScore)
	assert.Equal(t, "# Doc more", result.FinalContent)
}

func TestRunBaselineEvaluatorError(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50}, errAt: 1}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.Error(t, err)

	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, 0, abortErr.Iteration)

	require.NotNil(t, result)
	assert.Empty(t, result.History)
	assert.Equal(t, "# Doc", result.FinalContent)
}

func TestRunKeepsBestContentOnRegression(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50, 40}}
	improver := &scriptedImprover{suffix: " worse"}
	runner := NewRunner(evaluator, improver, Options{MaxIterations: 1})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	assert.Equal(t, 50, result.FinalScore)
	assert.Equal(t, "# Doc", result.FinalContent)
	require.Len(t, result.History, 1)
	assert.Equal(t, -10, result.History[0].Delta)
}

func TestRunHonorsCancellation(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.Run(ctx, "# Doc", "readme")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	require.NotNil(t, result)
	assert.Equal(t, 50, result.InitialScore)
	assert.Empty(t, result.History)
}

func TestRunSavesResults(t *testing.T) {
	dir := t.TempDir()
	evaluator := &scriptedEvaluator{scores: []int{50, 92}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{
		TargetScore: Target(90),
		SaveResults: true,
		ResultsDir:  dir,
	})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	cycleDir := filepath.Join(dir, "readme", result.CycleID)
	for _, name := range []string{"report.md", "data.json", "original.md", "final.md"} {
		_, err := os.Stat(filepath.Join(cycleDir, name))
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"before.md", "after.md", "eval_before.json", "eval_after.json"} {
		_, err := os.Stat(filepath.Join(cycleDir, "iteration_1", name))
		assert.NoError(t, err, name)
	}

	original, err := os.ReadFile(filepath.Join(cycleDir, "original.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Doc", string(original))

	final, err := os.ReadFile(filepath.Join(cycleDir, "final.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Doc more", string(final))
}

func TestFormatReport(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50, 70, 92}}
	improver := &scriptedImprover{suffix: " more"}
	runner := NewRunner(evaluator, improver, Options{TargetScore: Target(90), MaxIterations: 5})

	result, err := runner.Run(context.Background(), "# Doc", "readme")
	require.NoError(t, err)

	report := result.FormatReport()
	assert.Contains(t, report, "# Improvement Cycle: "+result.CycleID)
	assert.Contains(t, report, "Initial Score: 50")
	assert.Contains(t, report, "Final Score: 92")
	assert.Contains(t, report, "- Iteration 1: 50 → 70 (+20)")
	assert.Contains(t, report, "Target score reached.")
}

func TestFormatReportAborted(t *testing.T) {
	evaluator := &scriptedEvaluator{scores: []int{50}}
	improver := &scriptedImprover{errAt: 1}
	runner := NewRunner(evaluator, improver, Options{})

	result, _ := runner.Run(context.Background(), "# Doc", "readme")

	report := result.FormatReport()
	assert.Contains(t, report, "error at iteration 1")
}
