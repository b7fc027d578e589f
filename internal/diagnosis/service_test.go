package diagnosis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/llm"
)

func testStep() (expr.Node, expr.Node) {
	b := expr.NewBuilder()
	return b.Eq(b.Ident("x"), b.Number("5")), b.Eq(b.Ident("x"), b.Number("6"))
}

func TestService_WithoutLLM(t *testing.T) {
	svc := NewService(nil)
	defer svc.Close()

	prior, next := testStep()
	if svc.Enabled() {
		t.Error("service without provider reports enabled")
	}
	if svc.Explain(context.Background(), prior, next, nil) {
		t.Error("Explain queued a job without a provider")
	}
}

func TestService_ExplainAsync(t *testing.T) {
	resp := json.RawMessage(`{"mistake_id":"EQN_ADD_DIFF","confidence":0.6,"reasoning":"Changed only the right side"}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: resp})
	svc := NewService(mock)
	defer svc.Close()

	var mu sync.Mutex
	var got *Classification
	done := make(chan struct{})
	cb := func(c *Classification) {
		mu.Lock()
		got = c
		mu.Unlock()
		close(done)
	}

	prior, next := testStep()
	if !svc.Explain(context.Background(), prior, next, cb) {
		t.Fatal("Explain did not queue the job")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for async classification")
	}

	mu.Lock()
	defer mu.Unlock()
	if got == nil {
		t.Fatal("classification is nil")
	}
	if got.ID != EqnAddDiff {
		t.Errorf("id = %q, want %q", got.ID, EqnAddDiff)
	}
}

func TestService_ErrorSkipsCallback(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Content: json.RawMessage(`{"mistake_id":null,"confidence":0.1,"reasoning":"unsure"}`)},
	)
	svc := NewService(mock)
	defer svc.Close()

	calls := make(chan *Classification, 2)
	cb := func(c *Classification) { calls <- c }

	prior, next := testStep()
	svc.Explain(context.Background(), prior, next, cb)
	svc.Explain(context.Background(), prior, next, cb)

	select {
	case c := <-calls:
		if c.ID != "" || c.Reasoning != "unsure" {
			t.Errorf("got %+v, want the second response", c)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for async classification")
	}
	if mock.CallCount() != 2 {
		t.Errorf("LLM calls = %d, want 2", mock.CallCount())
	}
}

func TestService_CloseWaitsForQueuedJobs(t *testing.T) {
	resp := json.RawMessage(`{"mistake_id":null,"confidence":0.2,"reasoning":"Looks fine"}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: resp}, llm.MockResponse{Content: resp})
	svc := NewService(mock)

	var mu sync.Mutex
	calls := 0
	cb := func(*Classification) {
		mu.Lock()
		calls++
		mu.Unlock()
	}

	prior, next := testStep()
	svc.Explain(context.Background(), prior, next, cb)
	svc.Explain(context.Background(), prior, next, cb)
	svc.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("callbacks after Close = %d, want 2", calls)
	}
}

func TestService_LogsFailuresWithTrace(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	svc := NewService(mock, WithServiceLogger(zap.New(core)))

	ctx := llm.WithTrace(context.Background(), llm.Trace{ProblemID: "p-7", Step: 2})
	prior, next := testStep()
	svc.Explain(ctx, prior, next, func(*Classification) { t.Error("callback ran after a failure") })
	svc.Close()

	entries := logs.FilterMessage("step classification failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d failure logs, want 1", len(entries))
	}
	if f := entries[0].ContextMap(); f["problem"] != "p-7" || f["step"] != int64(2) {
		t.Errorf("fields = %v", f)
	}
}

func TestService_QueueSize(t *testing.T) {
	svc := NewService(nil, WithQueueSize(4), WithQueueSize(0))
	defer svc.Close()
	if cap(svc.jobs) != 4 {
		t.Errorf("queue capacity = %d, want 4", cap(svc.jobs))
	}
}
