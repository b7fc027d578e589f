package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	Purpose string // LLM events only; empty matches all
}

// GradeEventData captures one graded step.
type GradeEventData struct {
	ProblemID  string
	Step       int // index of the graded step in the problem
	Key        string
	Prior      string // structural rendering of the prior tree
	Next       string // structural rendering of the next tree
	Valid      bool
	Hint       string
	MistakeIDs []string
	Source     string // "grader", or "llm" for a late classification
}

// GradeEventRecord is a stored grade event.
type GradeEventRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	GradeEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendGradeEvent records a graded step.
	AppendGradeEvent(ctx context.Context, data GradeEventData) error

	// QueryGradeEvents returns a problem's grade events in sequence order.
	QueryGradeEvents(ctx context.Context, problemID string, opts QueryOpts) ([]GradeEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, most recent first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates LLM events per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates LLM events per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// LLMUsage is the token usage of one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage is the token usage of one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// ProblemSnapshot is the latest saved state of one problem attempt. Data
// is an opaque JSON document owned by the caller.
type ProblemSnapshot struct {
	ProblemID string
	Sequence  int64
	UpdatedAt time.Time
	Status    string
	Data      json.RawMessage
}

// SnapshotRepo manages problem snapshots.
type SnapshotRepo interface {
	// SaveProblem stores snap, replacing any earlier snapshot of the same
	// problem.
	SaveProblem(ctx context.Context, snap *ProblemSnapshot) error

	// LoadProblem returns the snapshot of a problem, or nil if none exists.
	LoadProblem(ctx context.Context, problemID string) (*ProblemSnapshot, error)
}
