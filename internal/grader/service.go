package grader

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
)

// Service grades steps with memoized verdicts, a per-call time budget and
// matchers run concurrently. Verdicts are pure, so the cache needs no
// invalidation beyond expiry.
type Service struct {
	cfg       Config
	matchers  []diagnosis.Matcher
	cache     *cache.Cache
	diagnosis *diagnosis.Service
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDiagnosis enables LLM classification of unexplained verdicts.
func WithDiagnosis(d *diagnosis.Service) Option {
	return func(s *Service) { s.diagnosis = d }
}

// WithMatchers replaces the default matchers.
func WithMatchers(ms ...diagnosis.Matcher) Option {
	return func(s *Service) { s.matchers = ms }
}

// NewService creates a grading service.
func NewService(cfg Config, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		matchers: diagnosis.DefaultMatchers(),
		cache:    cache.New(cfg.CacheTTL, cfg.CleanupInterval),
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Grade grades a step. Cached verdicts are relinked to the nodes of the
// trees passed in, so their references carry current locations.
func (s *Service) Grade(ctx context.Context, prior, next expr.Node) (Verdict, error) {
	return s.GradeExplained(ctx, prior, next, nil)
}

// GradeExplained is Grade, and additionally queues an LLM classification
// when the verdict is invalid but unexplained. cb receives the result
// asynchronously; with a nil cb or no diagnoser nothing is queued.
func (s *Service) GradeExplained(ctx context.Context, prior, next expr.Node, cb func(*diagnosis.Classification)) (Verdict, error) {
	key := canon.Key(prior, next)

	if x, found := s.cache.Get(key); found {
		v := relink(x.(Verdict), prior, next)
		s.logger.Debug("grade cache hit", zap.String("key", key), zap.Bool("valid", v.Valid))
		s.explain(ctx, v, prior, next, cb)
		return v, nil
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	done := make(chan Verdict, 1)
	go func() {
		done <- decide(s.match(ctx, prior, next), prior, next)
	}()

	var v Verdict
	select {
	case v = <-done:
	case <-ctx.Done():
		s.logger.Warn("grade timed out", zap.String("key", key), zap.Error(ctx.Err()))
		return Verdict{}, fmt.Errorf("grade: %w", ctx.Err())
	}

	s.cache.Set(key, v, cache.DefaultExpiration)
	s.logger.Debug("graded",
		zap.String("key", key),
		zap.Bool("valid", v.Valid),
		zap.Int("mistakes", len(v.Mistakes)),
	)
	s.explain(ctx, v, prior, next, cb)
	return v, nil
}

// Explain queues an LLM classification of a step regardless of its
// verdict. It reports whether the job was queued.
func (s *Service) Explain(ctx context.Context, prior, next expr.Node, cb func(*diagnosis.Classification)) bool {
	if s.diagnosis == nil {
		return false
	}
	return s.diagnosis.Explain(context.WithoutCancel(ctx), prior, next, cb)
}

func (s *Service) explain(ctx context.Context, v Verdict, prior, next expr.Node, cb func(*diagnosis.Classification)) {
	if cb == nil || !v.Unexplained() {
		return
	}
	if !s.Explain(ctx, prior, next, cb) && s.diagnosis != nil && s.diagnosis.Enabled() {
		s.logger.Warn("diagnosis queue full, dropping step", zap.String("key", canon.Key(prior, next)))
	}
}

// match runs every matcher and concatenates candidates in matcher order.
// Matchers run concurrently when configured; the order of the result does
// not depend on scheduling.
func (s *Service) match(ctx context.Context, prior, next expr.Node) []diagnosis.Mistake {
	if s.cfg.Parallel <= 1 {
		return diagnosis.RunMatchers(s.matchers, prior, next)
	}

	results := make([][]diagnosis.Mistake, len(s.matchers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallel)
	for i, m := range s.matchers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.Match(prior, next)
			return nil
		})
	}
	// A cancelled context is reported by the caller's select.
	_ = g.Wait()

	var out []diagnosis.Mistake
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// Len returns the number of memoized verdicts.
func (s *Service) Len() int {
	return s.cache.ItemCount()
}

// relink returns a copy of v whose node references point at the nodes
// with the same ids in prior and next.
func relink(v Verdict, prior, next expr.Node) Verdict {
	if len(v.Mistakes) == 0 {
		return v
	}
	out := Verdict{Valid: v.Valid, Hint: v.Hint, Mistakes: make([]diagnosis.Mistake, len(v.Mistakes))}
	for i, m := range v.Mistakes {
		out.Mistakes[i] = diagnosis.Mistake{
			ID:        m.ID,
			PrevNodes: relinkRefs(m.PrevNodes, prior),
			NextNodes: relinkRefs(m.NextNodes, next),
		}
	}
	return out
}

func relinkRefs(refs []expr.NodeRef, root expr.Node) []expr.NodeRef {
	if refs == nil {
		return nil
	}
	out := make([]expr.NodeRef, len(refs))
	for i, r := range refs {
		out[i] = r
		if n := expr.Find(root, r.ID); n != nil {
			out[i] = expr.Ref(n)
		}
	}
	return out
}
