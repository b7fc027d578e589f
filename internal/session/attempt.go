package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/grader"
	"github.com/abhisek/stepcheck/internal/llm"
	"github.com/abhisek/stepcheck/internal/store"
)

// ErrComplete is returned when submitting to a finished attempt.
var ErrComplete = errors.New("attempt is complete")

// Event sources recorded with grade events.
const (
	SourceGrader = "grader"
	SourceLLM    = "llm"
)

// Attempt drives a Problem through the reducer as the learner submits
// steps, grading each against the one before. It is safe for concurrent
// use; late LLM classifications arrive from another goroutine.
type Attempt struct {
	mu      sync.Mutex
	problem *Problem
	version int64

	grader    *grader.Service
	events    store.EventRepo
	snapshots store.SnapshotRepo
	logger    *zap.Logger
	explain   bool
	onChange  func(*Problem)
}

// AttemptOption configures an Attempt.
type AttemptOption func(*Attempt)

// WithEvents records a grade event for every graded step.
func WithEvents(repo store.EventRepo) AttemptOption {
	return func(a *Attempt) { a.events = repo }
}

// WithSnapshots saves the problem after every change.
func WithSnapshots(repo store.SnapshotRepo) AttemptOption {
	return func(a *Attempt) { a.snapshots = repo }
}

// WithAttemptLogger sets the logger.
func WithAttemptLogger(l *zap.Logger) AttemptOption {
	return func(a *Attempt) { a.logger = l }
}

// WithExplain queues an LLM classification for every step graded invalid
// without an explanation. Results are applied with Reclassify.
func WithExplain() AttemptOption {
	return func(a *Attempt) { a.explain = true }
}

// WithOnChange registers a function called with the new problem after
// every change, including late reclassifications.
func WithOnChange(fn func(*Problem)) AttemptOption {
	return func(a *Attempt) { a.onChange = fn }
}

// NewAttempt starts an attempt at start under a fresh problem id.
func NewAttempt(start expr.Node, g *grader.Service, opts ...AttemptOption) *Attempt {
	return ResumeAttempt(NewProblem(uuid.NewString(), start), g, opts...)
}

// ResumeAttempt continues an attempt from a saved problem.
func ResumeAttempt(p *Problem, g *grader.Service, opts ...AttemptOption) *Attempt {
	a := &Attempt{problem: p, grader: g, logger: zap.NewNop()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// LoadAttempt resumes the attempt saved under id. It returns nil if no
// snapshot exists.
func LoadAttempt(ctx context.Context, repo store.SnapshotRepo, id string, b *expr.Builder, g *grader.Service, opts ...AttemptOption) (*Attempt, error) {
	snap, err := repo.LoadProblem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load problem %s: %w", id, err)
	}
	if snap == nil {
		return nil, nil
	}
	p, err := UnmarshalProblem(snap.Data, b)
	if err != nil {
		return nil, err
	}
	a := ResumeAttempt(p, g, append([]AttemptOption{WithSnapshots(repo)}, opts...)...)
	a.version = snap.Sequence
	return a, nil
}

// Problem returns the current state.
func (a *Attempt) Problem() *Problem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.problem
}

// Submit adds value as the next step and grades it against the last one.
// A value with the same shape as the last step is recorded as a duplicate
// without grading. If grading fails the step stays pending.
func (a *Attempt) Submit(ctx context.Context, value expr.Node) (Step, error) {
	a.mu.Lock()
	p := a.problem
	if p.Status == ProblemComplete {
		a.mu.Unlock()
		return Step{}, ErrComplete
	}
	prior := p.Last()

	if canon.Same(prior.Value, value) {
		p = Reduce(p, Duplicate{})
		a.commit(ctx, p)
		a.mu.Unlock()
		return p.Last(), nil
	}

	p = Reduce(p, NewStep{Value: value})
	a.commit(ctx, p)
	index := len(p.Steps) - 1
	a.mu.Unlock()

	v, err := a.grader.Grade(ctx, prior.Value, value)
	if err != nil {
		return a.Problem().Steps[index], fmt.Errorf("grade step %d: %w", index, err)
	}

	a.mu.Lock()
	p = a.problem
	if len(p.Steps)-1 != index {
		a.mu.Unlock()
		// Another submission landed first; leave its step alone.
		return Step{}, fmt.Errorf("step %d is no longer the last step", index)
	}
	if v.Valid {
		p = Reduce(p, Right{Hint: v.Hint})
	} else {
		p = Reduce(p, Wrong{Mistakes: v.Mistakes})
	}
	a.record(ctx, index, prior.Value, value, v, SourceGrader)
	a.commit(ctx, p)
	step := p.Last()
	a.mu.Unlock()

	if a.explain && v.Unexplained() {
		tctx := llm.WithTrace(ctx, llm.Trace{ProblemID: p.ID, Step: index})
		a.grader.Explain(tctx, prior.Value, value, func(c *diagnosis.Classification) {
			if c.ID == "" {
				return
			}
			if err := a.Reclassify(context.Background(), index, c); err != nil {
				a.logger.Warn("reclassify failed", zap.Int("step", index), zap.Error(err))
			}
		})
	}
	return step, nil
}

// Finish completes the attempt. Finishing twice is a no-op.
func (a *Attempt) Finish(ctx context.Context) *Problem {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commit(ctx, Reduce(a.problem, Complete{}))
	return a.problem
}

// Reclassify attaches an LLM classification to step index. Only an
// incorrect step with no mistakes is changed.
func (a *Attempt) Reclassify(ctx context.Context, index int, c *diagnosis.Classification) error {
	if diagnosis.GetKind(c.ID) == nil {
		return fmt.Errorf("unknown mistake id %q", c.ID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.problem
	if index <= 0 || index >= len(p.Steps) {
		return fmt.Errorf("step %d out of range", index)
	}
	s := p.Steps[index]
	if s.Status != StatusIncorrect || len(s.Mistakes) > 0 {
		return nil
	}

	m := diagnosis.Mistake{ID: c.ID}
	steps := append([]Step(nil), p.Steps...)
	steps[index] = IncorrectStep(s.Value, []diagnosis.Mistake{m})
	a.record(ctx, index, p.Steps[index-1].Value, s.Value, grader.Verdict{Mistakes: steps[index].Mistakes}, SourceLLM)
	a.commit(ctx, Reduce(p, Set{Steps: steps}))
	a.logger.Info("step reclassified",
		zap.String("problem", p.ID),
		zap.Int("step", index),
		zap.String("mistake", string(c.ID)),
		zap.Float64("confidence", c.Confidence),
	)
	return nil
}

// commit installs p and persists it. Callers hold a.mu.
func (a *Attempt) commit(ctx context.Context, p *Problem) {
	if p == a.problem {
		return
	}
	a.problem = p
	a.version++
	if a.snapshots != nil {
		if err := a.save(ctx, p); err != nil {
			a.logger.Warn("failed to save problem", zap.String("problem", p.ID), zap.Error(err))
		}
	}
	if a.onChange != nil {
		a.onChange(p)
	}
}

func (a *Attempt) save(ctx context.Context, p *Problem) error {
	data, err := MarshalProblem(p)
	if err != nil {
		return err
	}
	return a.snapshots.SaveProblem(ctx, &store.ProblemSnapshot{
		ProblemID: p.ID,
		Sequence:  a.version,
		UpdatedAt: time.Now(),
		Status:    string(p.Status),
		Data:      data,
	})
}

func (a *Attempt) record(ctx context.Context, index int, prior, next expr.Node, v grader.Verdict, source string) {
	if a.events == nil {
		return
	}
	ids := make([]string, len(v.Mistakes))
	for i, m := range v.Mistakes {
		ids[i] = string(m.ID)
	}
	err := a.events.AppendGradeEvent(ctx, store.GradeEventData{
		ProblemID:  a.problem.ID,
		Step:       index,
		Key:        canon.StructuralKey(prior, next),
		Prior:      canon.Structural(prior),
		Next:       canon.Structural(next),
		Valid:      v.Valid,
		Hint:       v.Hint,
		MistakeIDs: ids,
		Source:     source,
	})
	if err != nil {
		a.logger.Warn("failed to record grade event", zap.Int("step", index), zap.Error(err))
	}
}
