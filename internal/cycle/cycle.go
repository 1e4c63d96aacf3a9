// Package cycle orchestrates repeated evaluate-improve rounds for a single
// document until a target score, iteration cap, or improvement plateau.
package cycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/doc-autopilot/internal/evaluate"
)

// Defaults applied when Options fields are zero
const (
	DefaultMaxIterations  = 3
	DefaultMinImprovement = 1.0
)

// StopReason records why a cycle terminated.
type StopReason string

const (
	StopTargetReached StopReason = "target_reached"
	StopMaxIterations StopReason = "max_iterations"
	StopPlateau       StopReason = "plateau"
	StopAborted       StopReason = "aborted"
)

// Evaluator scores a document. Satisfied by *evaluate.Evaluator.
type Evaluator interface {
	Evaluate(ctx context.Context, content, docType, extraCriteria string) (*evaluate.Result, error)
}

// Improver rewrites a document from evaluation feedback. Satisfied by
// *improve.Improver.
type Improver interface {
	Improve(ctx context.Context, content string, evaluation *evaluate.Result, docType string) (string, error)
}

// Options configures a cycle run.
type Options struct {
	// MaxIterations caps improvement rounds; 0 means DefaultMaxIterations
	MaxIterations int
	// MinImprovement is the score delta below which the cycle plateaus;
	// 0 means DefaultMinImprovement, negative disables the plateau check
	MinImprovement float64
	// TargetScore stops the cycle once reached; nil means no target. An
	// explicit zero is a real target, met by any score before the first
	// improvement round.
	TargetScore *int
	// ExtraCriteria is passed through to every evaluation
	ExtraCriteria string
	// SaveResults writes the cycle artifacts under ResultsDir after the run
	SaveResults bool
	ResultsDir  string
}

// Target wraps a score for Options.TargetScore.
func Target(score int) *int {
	return &score
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MinImprovement == 0 {
		o.MinImprovement = DefaultMinImprovement
	}
	if o.ResultsDir == "" {
		o.ResultsDir = "results"
	}
	return o
}

// ImprovementRecord captures one completed improve-and-re-evaluate round.
type ImprovementRecord struct {
	Iteration     int              `json:"iteration"`
	PreScore      int              `json:"pre_score"`
	PostScore     int              `json:"post_score"`
	Delta         int              `json:"delta"`
	ContentBefore string           `json:"-"`
	ContentAfter  string           `json:"-"`
	EvalBefore    *evaluate.Result `json:"eval_before,omitempty"`
	EvalAfter     *evaluate.Result `json:"eval_after,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Metrics summarizes a completed cycle.
type Metrics struct {
	Iterations              int     `json:"iterations"`
	TotalImprovement        int     `json:"total_improvement"`
	ImprovementPerIteration float64 `json:"improvement_per_iteration"`
	InitialWordCount        int     `json:"initial_word_count"`
	FinalWordCount          int     `json:"final_word_count"`
	WordCountChange         int     `json:"word_count_change"`
}

// Result is the outcome of a cycle run. It is always populated, including
// after a mid-cycle failure: History keeps every completed record and
// FinalContent holds the best-scoring revision seen so far.
type Result struct {
	CycleID        string              `json:"cycle_id"`
	DocType        string              `json:"doc_type"`
	StartedAt      time.Time           `json:"started_at"`
	InitialScore   int                 `json:"initial_score"`
	FinalScore     int                 `json:"final_score"`
	InitialContent string              `json:"-"`
	FinalContent   string              `json:"-"`
	History        []ImprovementRecord `json:"iterations"`
	TargetReached  bool                `json:"target_reached"`
	StopReason     StopReason          `json:"stop_reason"`
	// AbortedAt is the iteration where the cycle failed; 0 when it did not
	AbortedAt int     `json:"aborted_at,omitempty"`
	Err       string  `json:"error,omitempty"`
	Metrics   Metrics `json:"metrics"`
}

// AbortError reports a cycle that stopped on an evaluator or improver
// failure. The partial Result is returned alongside it.
type AbortError struct {
	Iteration int
	Cause     error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("cycle aborted at iteration %d: %v", e.Iteration, e.Cause)
}

func (e *AbortError) Unwrap() error {
	return e.Cause
}

// Runner drives the closed loop.
type Runner struct {
	evaluator Evaluator
	improver  Improver
	opts      Options
}

// NewRunner creates a runner. Zero-valued Options fields get defaults.
func NewRunner(evaluator Evaluator, improver Improver, opts Options) *Runner {
	return &Runner{
		evaluator: evaluator,
		improver:  improver,
		opts:      opts.withDefaults(),
	}
}

// Run executes the cycle for content. The returned Result is never nil.
// A non-nil error is always an *AbortError (or wraps a save failure) and
// the Result still carries all progress made before the failure.
//
// Decision order after each re-evaluation: target reached, then iteration
// cap, then plateau.
func (r *Runner) Run(ctx context.Context, content, docType string) (*Result, error) {
	result := &Result{
		CycleID:        fmt.Sprintf("%s_%s", docType, uuid.NewString()[:8]),
		DocType:        docType,
		StartedAt:      time.Now(),
		InitialContent: content,
	}

	baseline, err := r.evaluator.Evaluate(ctx, content, docType, r.opts.ExtraCriteria)
	if err != nil {
		return r.abort(result, content, content, 0, 0, err)
	}

	result.InitialScore = baseline.TotalScore

	bestContent := content
	bestScore := baseline.TotalScore
	current := content
	currentEval := baseline
	preScore := baseline.TotalScore

	for iteration := 1; ; iteration++ {
		if r.opts.TargetScore != nil && preScore >= *r.opts.TargetScore {
			result.TargetReached = true
			result.StopReason = StopTargetReached
			break
		}
		if iteration > r.opts.MaxIterations {
			result.StopReason = StopMaxIterations
			break
		}

		// Cancellation is only honored between iterations, never
		// mid-network-call.
		select {
		case <-ctx.Done():
			return r.abort(result, bestContent, content, iteration, bestScore, ctx.Err())
		default:
		}

		improved, err := r.improver.Improve(ctx, current, currentEval, docType)
		if err != nil {
			return r.abort(result, bestContent, content, iteration, bestScore, err)
		}

		postEval, err := r.evaluator.Evaluate(ctx, improved, docType, r.opts.ExtraCriteria)
		if err != nil {
			return r.abort(result, bestContent, content, iteration, bestScore, err)
		}

		postScore := postEval.TotalScore
		delta := postScore - preScore

		result.History = append(result.History, ImprovementRecord{
			Iteration:     iteration,
			PreScore:      preScore,
			PostScore:     postScore,
			Delta:         delta,
			ContentBefore: current,
			ContentAfter:  improved,
			EvalBefore:    currentEval,
			EvalAfter:     postEval,
			Timestamp:     time.Now(),
		})

		if postScore > bestScore {
			bestScore = postScore
			bestContent = improved
		}

		if r.opts.TargetScore != nil && postScore >= *r.opts.TargetScore {
			result.TargetReached = true
			result.StopReason = StopTargetReached
			break
		}
		if iteration >= r.opts.MaxIterations {
			result.StopReason = StopMaxIterations
			break
		}
		// An unchanged document that did not score better will not start
		// scoring better next round either.
		if improved == current && delta <= 0 {
			result.StopReason = StopPlateau
			break
		}
		if float64(delta) < r.opts.MinImprovement {
			result.StopReason = StopPlateau
			break
		}

		current = improved
		currentEval = postEval
		preScore = postScore
	}

	r.finalize(result, bestContent, content, bestScore)

	if r.opts.SaveResults {
		if err := result.Save(r.opts.ResultsDir); err != nil {
			return result, fmt.Errorf("failed to save cycle results: %w", err)
		}
	}

	return result, nil
}

func (r *Runner) abort(result *Result, bestContent, original string, iteration, bestScore int, cause error) (*Result, error) {
	result.StopReason = StopAborted
	result.AbortedAt = iteration
	result.Err = cause.Error()
	r.finalize(result, bestContent, original, bestScore)
	return result, &AbortError{Iteration: iteration, Cause: cause}
}

func (r *Runner) finalize(result *Result, bestContent, original string, bestScore int) {
	result.FinalContent = bestContent
	result.FinalScore = bestScore

	initialWords := len(strings.Fields(original))
	finalWords := len(strings.Fields(bestContent))

	result.Metrics = Metrics{
		Iterations:       len(result.History),
		TotalImprovement: result.FinalScore - result.InitialScore,
		InitialWordCount: initialWords,
		FinalWordCount:   finalWords,
		WordCountChange:  finalWords - initialWords,
	}
	if len(result.History) > 0 {
		result.Metrics.ImprovementPerIteration = float64(result.Metrics.TotalImprovement) / float64(len(result.History))
	}
}
