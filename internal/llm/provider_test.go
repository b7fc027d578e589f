package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_Queue(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"a":1}`),
		Usage:   Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	})
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{}})
	ctx := context.Background()

	resp, err := mock.Generate(ctx, Request{System: "sys"})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 {
		t.Errorf("first response = %+v", resp)
	}
	if resp.StopReason != StopEnd || resp.Model != "mock" {
		t.Errorf("stop reason %q, model %q", resp.StopReason, resp.Model)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &rl) {
		t.Errorf("second call: want ErrRateLimit, got %v", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &unavail) {
		t.Errorf("drained queue: want ErrProviderUnavailable, got %v", err)
	}

	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Errorf("calls = %+v", mock.Calls)
	}
}

func TestMockProvider_AppliesSchemaChecks(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"mistake_id":"EVAL_ADD"}`)},
		MockResponse{Content: json.RawMessage(`{"mistake_id":"EV`), StopReason: StopMaxTokens},
	)
	ctx := WithPurpose(context.Background(), PurposeStepClassification)

	var inv *ErrInvalidResponse
	if _, err := mock.Generate(ctx, Request{Schema: classificationSchema()}); !errors.As(err, &inv) {
		t.Fatalf("missing required fields: want ErrInvalidResponse, got %v", err)
	}

	var maxTok *ErrMaxTokensExceeded
	if _, err := mock.Generate(ctx, Request{Schema: classificationSchema()}); !errors.As(err, &maxTok) {
		t.Fatalf("truncated output: want ErrMaxTokensExceeded, got %v", err)
	}

	if len(mock.Purposes) != 2 || mock.Purposes[0] != PurposeStepClassification {
		t.Fatalf("purposes = %v", mock.Purposes)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q", p)
	}
	if _, ok := TraceFrom(ctx); ok {
		t.Error("TraceFrom(empty) reported a trace")
	}

	ctx = WithTrace(WithPurpose(ctx, "grading"), Trace{ProblemID: "p", Step: 4})
	if p := PurposeFrom(ctx); p != "grading" {
		t.Errorf("PurposeFrom = %q, want grading", p)
	}
	if tr, ok := TraceFrom(ctx); !ok || tr != (Trace{ProblemID: "p", Step: 4}) {
		t.Errorf("TraceFrom = %+v, %v", tr, ok)
	}
}

type modelOnly struct{ Provider }

func (modelOnly) ModelID() string { return "bare-model" }

func TestProviderName(t *testing.T) {
	if got := ProviderName(NewMockProvider()); got != "mock" {
		t.Errorf("named provider: %q", got)
	}
	if got := ProviderName(modelOnly{}); got != "bare-model" {
		t.Errorf("unnamed provider: %q", got)
	}
}
