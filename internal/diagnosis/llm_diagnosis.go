package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/llm"
)

// DiagnoserConfig holds configuration for the LLM diagnoser.
type DiagnoserConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultDiagnoserConfig returns sensible defaults.
func DefaultDiagnoserConfig() DiagnoserConfig {
	return DiagnoserConfig{
		MaxTokens:   256,
		Temperature: 0.3,
	}
}

// Diagnoser asks an LLM which mistake kind best explains an invalid step
// that no matcher recognized.
type Diagnoser struct {
	provider llm.Provider
	cfg      DiagnoserConfig
}

// NewDiagnoser creates an LLM-based diagnoser.
func NewDiagnoser(provider llm.Provider, cfg DiagnoserConfig) *Diagnoser {
	return &Diagnoser{provider: provider, cfg: cfg}
}

// ClassifyRequest is the input for LLM classification.
type ClassifyRequest struct {
	Prior      string
	Next       string
	Candidates []*Kind
}

// NewClassifyRequest renders a step for the LLM with every taxonomy kind as
// a candidate.
func NewClassifyRequest(prior, next expr.Node) *ClassifyRequest {
	return &ClassifyRequest{
		Prior:      canon.Structural(prior),
		Next:       canon.Structural(next),
		Candidates: AllKinds(),
	}
}

type classifyOutput struct {
	MistakeID  *string `json:"mistake_id"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Classify sends the step to the LLM. An id outside the candidate list is
// treated as no match.
func (d *Diagnoser) Classify(ctx context.Context, req *ClassifyRequest) (*Classification, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeStepClassification)

	userMsg, err := buildClassifyMessage(req)
	if err != nil {
		return nil, fmt.Errorf("build classification prompt: %w", err)
	}

	resp, err := d.provider.Generate(ctx, llm.Request{
		System: classifySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      ClassificationSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM classification failed: %w", err)
	}

	var raw classifyOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}

	out := &Classification{
		Confidence:     raw.Confidence,
		ClassifierName: "llm",
		Reasoning:      raw.Reasoning,
	}
	if raw.MistakeID == nil {
		return out, nil
	}
	for _, c := range req.Candidates {
		if string(c.ID) == *raw.MistakeID {
			out.ID = c.ID
			break
		}
	}
	return out, nil
}

const classifySystemPrompt = `You are an algebra tutor reviewing one step of a learner's work. The step is invalid: the new expression is not equivalent to the previous one, and no rule-based check could say why.

Expressions are written as s-expressions. "mul.imp" is an implicit product such as 2x, "neg.sub" is a subtracted term.

Instructions:
- If the step clearly matches one of the listed mistake kinds, return its ID.
- If no listed kind fits, return null for mistake_id.
- Do NOT invent new IDs. Only use IDs from the list provided.
- Provide a confidence score (0.0–1.0).
- Keep reasoning to one sentence.`

var classifyUserTemplate = template.Must(template.New("classify").Parse(`Previous: {{.Prior}}
Next: {{.Next}}

Mistake kinds:
{{range .Candidates}}- {{.ID}}: {{.Description}}{{range .Examples}} (e.g. {{.}}){{end}}
{{end}}`))

func buildClassifyMessage(req *ClassifyRequest) (string, error) {
	var buf bytes.Buffer
	if err := classifyUserTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
