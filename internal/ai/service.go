package ai

import (
	"context"
	"strings"

	"infiniteats/internal/config"
	"infiniteats/internal/errors"
	"infiniteats/internal/observability"
	"infiniteats/internal/types"
)

// Service runs the analysis and rewrite calls: it builds the request,
// sends it through the operation's gateway and decodes the reply.
type Service struct {
	analyze Gateway
	rewrite Gateway
	builder *PromptBuilder
	obs     *observability.ObservabilityManager
	logger  *errors.Logger
}

// NewService creates a Service backed by Gemini. obs may be nil.
func NewService(ctx context.Context, cfg *config.Config, obs *observability.ObservabilityManager, logger *errors.Logger) (*Service, error) {
	analyzeGW, err := NewGeminiGateway(ctx, config.OperationAnalyze, cfg.GetAnalyzeConfig(), logger)
	if err != nil {
		return nil, err
	}
	rewriteGW, err := NewGeminiGateway(ctx, config.OperationRewrite, cfg.GetRewriteConfig(), logger)
	if err != nil {
		return nil, err
	}

	logger.Info("AI service initialized",
		"analyze_model", analyzeGW.Model(),
		"rewrite_model", rewriteGW.Model())

	return NewServiceWithGateways(cfg, analyzeGW, rewriteGW, obs, logger), nil
}

// NewServiceWithGateways wires a Service to the given gateways.
func NewServiceWithGateways(cfg *config.Config, analyze, rewrite Gateway, obs *observability.ObservabilityManager, logger *errors.Logger) *Service {
	return &Service{
		analyze: analyze,
		rewrite: rewrite,
		builder: NewPromptBuilder(cfg),
		obs:     obs,
		logger:  logger.With("component", "ai"),
	}
}

// Analyze scores resume against job.
func (s *Service) Analyze(ctx context.Context, resume types.ResumeInput, job types.JobContext) (*types.AnalysisResult, error) {
	if err := ValidateInputs(resume, job); err != nil {
		return nil, err
	}

	req := s.builder.BuildAnalysisRequest(resume, job)
	result, err := call[types.AnalysisResult](ctx, s, s.analyze, req)
	s.obs.RecordBusinessMetric(ctx, observability.MetricResumeAnalyzed, err == nil)
	if err != nil {
		s.logger.LogError(err, "Resume analysis failed", "has_file", resume.HasFile())
		return nil, err
	}

	s.logger.Info("Resume analyzed", "score", result.Score, "missing_keywords", len(result.MissingKeywords))
	return &result, nil
}

// Rewrite produces an improved resume that works missingKeywords in.
func (s *Service) Rewrite(ctx context.Context, resume types.ResumeInput, job types.JobContext, missingKeywords []string) (*types.ResumeDocument, error) {
	if err := ValidateInputs(resume, job); err != nil {
		return nil, err
	}

	req := s.builder.BuildRewriteRequest(resume, job, missingKeywords)
	doc, err := call[types.ResumeDocument](ctx, s, s.rewrite, req)
	s.obs.RecordBusinessMetric(ctx, observability.MetricResumeGenerated, err == nil)
	if err != nil {
		s.logger.LogError(err, "Resume rewrite failed", "missing_keywords", len(missingKeywords))
		return nil, err
	}

	doc.Normalize()
	s.logger.Info("Improved resume generated", "experience_entries", len(doc.Experience))
	return &doc, nil
}

// call sends req through gw and decodes the reply, tracking the call.
func call[T any](ctx context.Context, s *Service, gw Gateway, req Request) (T, error) {
	var out T
	err := s.obs.TrackAIOperation(ctx, req.Operation, func(ctx context.Context) *observability.AIOperationResult {
		reply, err := gw.Generate(ctx, req)
		if err != nil {
			return &observability.AIOperationResult{Error: err}
		}
		if reply == nil || strings.TrimSpace(reply.Text) == "" {
			err := errors.NewGatewayError(errors.ErrCodeAIEmptyResponse, "Empty response from AI", nil).
				WithContext("operation", req.Operation)
			return &observability.AIOperationResult{Error: err}
		}
		decoded, err := Decode[T](reply.Text)
		if err != nil {
			return &observability.AIOperationResult{Error: err, TokenUsage: toObsUsage(reply.Usage)}
		}
		out = decoded
		return &observability.AIOperationResult{TokenUsage: toObsUsage(reply.Usage)}
	})
	return out, err
}

func toObsUsage(u *TokenUsage) *observability.TokenUsage {
	if u == nil {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	}
}

// Health reports model availability and breaker state per operation.
// Gateways that cannot describe themselves are reported as available.
func (s *Service) Health(ctx context.Context) map[string]any {
	out := make(map[string]any)
	for op, gw := range map[string]Gateway{
		config.OperationAnalyze: s.analyze,
		config.OperationRewrite: s.rewrite,
	} {
		entry := map[string]any{"available": true}
		if g, ok := gw.(*GeminiGateway); ok {
			info, err := g.ModelInfo(ctx)
			if err != nil {
				entry["available"] = false
				entry["error"] = err.Error()
			} else {
				entry["model"] = info
			}
			entry["circuit_breaker"] = g.BreakerStats()
		}
		out[op] = entry
	}
	return out
}
