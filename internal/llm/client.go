package llm

import "context"

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// backend is one vendor API. call sends req to model and returns the raw
// reply with usage and a normalized stop reason; vendor errors are mapped
// with statusError.
type backend interface {
	call(ctx context.Context, model string, req Request) (*Response, error)
}

// Client is a Provider served by one vendor backend. It owns the checks
// every vendor shares: truncated structured output is an error, and
// structured output must match the request schema.
type Client struct {
	name    string
	model   string
	backend backend
}

func newClient(name, model string, b backend) *Client {
	return &Client{name: name, model: model, backend: b}
}

func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.backend.call(ctx, c.model, req)
	if err != nil {
		return nil, err
	}
	if resp.Model == "" {
		resp.Model = c.model
	}
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ModelID() string { return c.model }

// Name returns the vendor name, e.g. "anthropic".
func (c *Client) Name() string { return c.name }

// modelAliases maps short names accepted in configuration to vendor model
// ids. Anything else is passed through unchanged.
var modelAliases = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.0-pro",
}

func resolveModel(name string) string {
	if id, ok := modelAliases[name]; ok {
		return id
	}
	return name
}
