package diagnosis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/llm"
)

func testRequest() *ClassifyRequest {
	b := expr.NewBuilder()
	prior := b.Eq(b.ImplicitMul(b.Number("2"), b.Ident("x")), b.Number("10"))
	next := b.Eq(b.Ident("x"), b.Number("8"))
	return NewClassifyRequest(prior, next)
}

func TestDiagnoser_MatchesKind(t *testing.T) {
	resp := json.RawMessage(`{"mistake_id":"EQN_MUL_DIFF","confidence":0.8,"reasoning":"Divided only the left side"}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: resp})
	d := NewDiagnoser(mock, DefaultDiagnoserConfig())

	result, err := d.Classify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if result.ID != EqnMulDiff {
		t.Errorf("id = %q, want %q", result.ID, EqnMulDiff)
	}
	if result.Confidence != 0.8 {
		t.Errorf("confidence = %f, want 0.8", result.Confidence)
	}
	if result.ClassifierName != "llm" {
		t.Errorf("classifier = %q, want llm", result.ClassifierName)
	}
}

func TestDiagnoser_NullMistake(t *testing.T) {
	resp := json.RawMessage(`{"mistake_id":null,"confidence":0.2,"reasoning":"No clear pattern"}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: resp})
	d := NewDiagnoser(mock, DefaultDiagnoserConfig())

	result, err := d.Classify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if result.ID != "" {
		t.Errorf("id = %q, want empty", result.ID)
	}
	if result.Reasoning != "No clear pattern" {
		t.Errorf("reasoning = %q", result.Reasoning)
	}
}

func TestDiagnoser_UnknownIDRejected(t *testing.T) {
	resp := json.RawMessage(`{"mistake_id":"SIGN_ERROR","confidence":0.9,"reasoning":"test"}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: resp})
	d := NewDiagnoser(mock, DefaultDiagnoserConfig())

	result, err := d.Classify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if result.ID != "" {
		t.Errorf("id = %q, want empty (unknown ids are rejected)", result.ID)
	}
}

func TestDiagnoser_LLMError(t *testing.T) {
	mock := llm.NewMockProvider()
	d := NewDiagnoser(mock, DefaultDiagnoserConfig())

	if _, err := d.Classify(context.Background(), testRequest()); err == nil {
		t.Error("expected error from empty mock provider")
	}
}

func TestDiagnoser_SendsSchemaAndPrompt(t *testing.T) {
	resp := json.RawMessage(`{"mistake_id":null,"confidence":0,"reasoning":""}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: resp})
	d := NewDiagnoser(mock, DefaultDiagnoserConfig())

	if _, err := d.Classify(context.Background(), testRequest()); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != ClassificationSchema {
		t.Error("request should carry the classification schema")
	}
	if req.MaxTokens != 256 {
		t.Errorf("max tokens = %d, want 256", req.MaxTokens)
	}
}

func TestBuildClassifyMessage(t *testing.T) {
	msg, err := buildClassifyMessage(testRequest())
	if err != nil {
		t.Fatalf("buildClassifyMessage failed: %v", err)
	}
	for _, want := range []string{
		"Previous: (eq (mul.imp 2 x) 10)",
		"Next: (eq x 8)",
		"EQN_ADD_DIFF",
		"DECOMP_MUL",
		"(e.g. 2 + 3 → 6)",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
