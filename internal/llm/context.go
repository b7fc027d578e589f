package llm

import "context"

type ctxKey int

const (
	purposeKey ctxKey = iota
	traceKey
)

// PurposeStepClassification labels requests that classify an unexplained
// algebra step.
const PurposeStepClassification = "step-classification"

// Trace ties a request to the problem step that caused it.
type Trace struct {
	ProblemID string
	Step      int
}

// WithPurpose labels requests made with ctx. The label is stored on every
// request event.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey, t)
}

func TraceFrom(ctx context.Context) (Trace, bool) {
	t, ok := ctx.Value(traceKey).(Trace)
	return t, ok
}
