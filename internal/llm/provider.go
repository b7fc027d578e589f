// Package llm talks to hosted language models through one narrow interface.
// Requests carry an optional JSON schema; providers use their native
// structured-output feature and every response is checked against the
// schema before it is returned.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one response per request. When req.Schema is set the
// returned Content is a JSON object that satisfies it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Named is implemented by providers that know which backend serves them.
type Named interface {
	Name() string
}

// ProviderName returns p.Name() when available and p.ModelID() otherwise.
func ProviderName(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return p.ModelID()
}

type Request struct {
	System   string
	Messages []Message

	// Schema, when nil, makes Content the raw text encoded as a JSON string.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 when unset
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema names a JSON Schema document. Name doubles as the Anthropic tool
// name and the OpenAI schema name, so keep it kebab-case.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the request, which can differ
	// from the configured alias.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
