package ai

import "context"

// TokenUsage is the token accounting reported by the model.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Reply is the raw text a model returned for a Request.
type Reply struct {
	Text  string
	Usage *TokenUsage
}

// Gateway sends one request to a model. Implementations make exactly one
// attempt and fail with a gateway error on transport failure or blank
// output.
type Gateway interface {
	Generate(ctx context.Context, req Request) (*Reply, error)
}

// ModelInfo describes the configured model for health reporting.
type ModelInfo struct {
	Name             string `json:"name"`
	DisplayName      string `json:"displayName,omitempty"`
	Version          string `json:"version,omitempty"`
	InputTokenLimit  int32  `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit int32  `json:"outputTokenLimit,omitempty"`
}
