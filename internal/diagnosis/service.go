package diagnosis

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/llm"
)

const defaultQueueSize = 32

// Service classifies unexplained steps on its own goroutine so grading
// never waits for the LLM. A Service without a provider does nothing.
type Service struct {
	diagnoser *Diagnoser
	logger    *zap.Logger
	queueSize int

	jobs chan job
	done chan struct{}
}

type job struct {
	ctx context.Context
	req *ClassifyRequest
	cb  func(*Classification)
}

type ServiceOption func(*Service)

func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueueSize bounds the number of jobs waiting for the LLM. Explain
// drops jobs beyond it.
func WithQueueSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

func NewService(provider llm.Provider, opts ...ServiceOption) *Service {
	s := &Service{
		logger:    zap.NewNop(),
		queueSize: defaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.jobs = make(chan job, s.queueSize)

	if provider == nil {
		close(s.done)
		return s
	}
	s.diagnoser = NewDiagnoser(provider, DefaultDiagnoserConfig())
	go s.run()
	return s
}

func (s *Service) Enabled() bool {
	return s.diagnoser != nil
}

// Explain queues a classification of the step from prior to next and
// reports whether it was queued. cb runs on the service goroutine, and only
// when the LLM answered.
func (s *Service) Explain(ctx context.Context, prior, next expr.Node, cb func(*Classification)) bool {
	if s.diagnoser == nil {
		return false
	}
	select {
	case s.jobs <- job{ctx: ctx, req: NewClassifyRequest(prior, next), cb: cb}:
		return true
	default:
		s.logger.Warn("classification queue full, dropping step", traceFields(ctx)...)
		return false
	}
}

func (s *Service) run() {
	defer close(s.done)
	for j := range s.jobs {
		c, err := s.diagnoser.Classify(j.ctx, j.req)
		if err != nil {
			s.logger.Warn("step classification failed", append(traceFields(j.ctx), zap.Error(err))...)
			continue
		}
		if c == nil || j.cb == nil {
			continue
		}
		j.cb(c)
	}
}

// Close stops accepting jobs and blocks until the queue is drained.
func (s *Service) Close() {
	close(s.jobs)
	<-s.done
}

func traceFields(ctx context.Context) []zap.Field {
	t, ok := llm.TraceFrom(ctx)
	if !ok {
		return nil
	}
	return []zap.Field{zap.String("problem", t.ProblemID), zap.Int("step", t.Step)}
}
