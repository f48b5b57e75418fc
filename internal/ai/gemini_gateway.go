package ai

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"infiniteats/internal/config"
	"infiniteats/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const defaultModelCheckTimeout = 10 * time.Second

// GeminiGateway calls the Gemini API for one operation.
type GeminiGateway struct {
	client    *genai.Client
	operation string
	model     string
	timeout   time.Duration
	breaker   *Breaker
	logger    *errors.Logger
}

var _ Gateway = (*GeminiGateway)(nil)

// NewGeminiGateway creates a gateway for operation using its resolved
// configuration.
func NewGeminiGateway(ctx context.Context, operation string, cfg config.OperationAIConfig, logger *errors.Logger) (*GeminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Gemini API key is not configured (set GEMINI_API_KEY or ai.apiKey)", nil).
			WithContext("operation", operation)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewGatewayError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	var timeout time.Duration
	if cfg.Timeout != nil {
		timeout = *cfg.Timeout
	}

	return &GeminiGateway{
		client:    client,
		operation: operation,
		model:     cfg.Model,
		timeout:   timeout,
		breaker:   NewBreaker(operation, cfg.CircuitBreaker, logger),
		logger:    logger,
	}, nil
}

// Generate makes exactly one GenerateContent call.
func (g *GeminiGateway) Generate(ctx context.Context, req Request) (*Reply, error) {
	tracer := otel.Tracer("infiniteats.ai.gemini")
	ctx, span := tracer.Start(ctx, "ai.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.model),
		attribute.String("ai.operation", req.Operation),
		attribute.Float64("ai.temperature", float64(req.Temperature)),
	)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
		Temperature:      genai.Ptr(req.Temperature),
	}
	contents := []*genai.Content{genai.NewContentFromParts(req.Parts, genai.RoleUser)}

	reply, err := g.breaker.Execute(req.Operation, func() (*Reply, error) {
		result, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
		if err != nil {
			return nil, g.wrapCallError(req.Operation, err)
		}
		text := result.Text()
		if strings.TrimSpace(text) == "" {
			return nil, errors.NewGatewayError(errors.ErrCodeAIEmptyResponse, "Empty response from AI", nil).
				WithContext("operation", req.Operation)
		}
		return &Reply{Text: text, Usage: extractTokenUsage(result)}, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	if reply.Usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", reply.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", reply.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", reply.Usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return reply, nil
}

func (g *GeminiGateway) wrapCallError(operation string, err error) error {
	appErr := errors.NewGatewayError(errors.ErrCodeAIServiceFailed,
		"Failed to generate content for "+operation, err).
		WithContext("operation", operation).
		WithContext("model", g.model)

	var apiErr genai.APIError
	var gErr *googleapi.Error
	switch {
	case stderrors.As(err, &apiErr):
		appErr = appErr.WithContext("status_code", apiErr.Code)
	case stderrors.As(err, &gErr):
		appErr = appErr.WithContext("status_code", gErr.Code)
	}
	return appErr
}

func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
		OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
	}
}

// ModelInfo looks up the configured model's metadata.
func (g *GeminiGateway) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	checkCtx, cancel := context.WithTimeout(ctx, defaultModelCheckTimeout)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.model, &genai.GetModelConfig{})
	if err != nil {
		g.logger.Warn("Model availability check failed", "model", g.model, "error", err.Error())
		return nil, g.wrapCallError("model_info", err)
	}
	return &ModelInfo{
		Name:             g.model,
		DisplayName:      model.DisplayName,
		Version:          model.Version,
		InputTokenLimit:  model.InputTokenLimit,
		OutputTokenLimit: model.OutputTokenLimit,
	}, nil
}

// BreakerStats reports the circuit breaker state.
func (g *GeminiGateway) BreakerStats() map[string]any {
	stats := g.breaker.Stats()
	stats["healthy"] = g.breaker.IsHealthy()
	return stats
}

// Model returns the configured model name.
func (g *GeminiGateway) Model() string { return g.model }
