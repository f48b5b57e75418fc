package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Business and infrastructure metric types accepted by RecordBusinessMetric.
const (
	MetricResumeAnalyzed  = "resume_analyzed"
	MetricResumeGenerated = "resume_generated"
	MetricResumeEdited    = "resume_edited"
	MetricExport          = "export"
	MetricValidationError = "validation_error"
	MetricRateLimitHit    = "rate_limit_hit"
)

// Metrics holds all custom metrics
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	ResumesAnalyzed  metric.Int64Counter
	ResumesGenerated metric.Int64Counter
	ResumeEdits      metric.Int64Counter
	Exports          metric.Int64Counter
	ValidationErrors metric.Int64Counter

	// Infrastructure metrics
	RateLimitHits metric.Int64Counter

	meter metric.Meter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"infiniteats_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"infiniteats_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&m.AIRequestCount, "infiniteats_ai_requests_total", "Total number of AI requests"},
		{&m.AIErrorCount, "infiniteats_ai_errors_total", "Total number of AI request errors"},
		{&m.ResumesAnalyzed, "infiniteats_resumes_analyzed_total", "Total number of resume analyses"},
		{&m.ResumesGenerated, "infiniteats_resumes_generated_total", "Total number of improved resumes generated"},
		{&m.ResumeEdits, "infiniteats_resume_edits_total", "Total number of edits to generated resumes"},
		{&m.Exports, "infiniteats_exports_total", "Total number of resume exports"},
		{&m.ValidationErrors, "infiniteats_validation_errors_total", "Total number of rejected inputs"},
		{&m.RateLimitHits, "infiniteats_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}

	return m, nil
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// TrackAIOperation runs fn inside a span and records duration, request,
// error and token metrics for it.
func (om *ObservabilityManager) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	if om == nil || om.metrics.AIProcessingTime == nil {
		if result := fn(ctx); result != nil {
			return result.Error
		}
		return nil
	}

	ctx, span := otel.Tracer("infiniteats.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	if om.aiMetricsEnabled() {
		om.recordAIMetrics(ctx, operation, err, duration, result, span)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	return err
}

func (om *ObservabilityManager) aiMetricsEnabled() bool {
	return om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.AIOperations.Enabled
}

func (om *ObservabilityManager) recordAIMetrics(ctx context.Context, operation string, err error, duration float64, result *AIOperationResult, span oteltrace.Span) {
	m := om.metrics
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if result != nil && result.TokenUsage != nil {
		usage := result.TokenUsage
		if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.AIOperations.TrackTokenUsage {
			for _, tt := range []struct {
				tokenType string
				value     int64
			}{
				{"input", usage.InputTokens},
				{"output", usage.OutputTokens},
				{"total", usage.TotalTokens},
			} {
				tokenAttrs := append([]attribute.KeyValue{attribute.String("token_type", tt.tokenType)}, attrs...)
				m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
			}
		}
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}

	span.SetAttributes(attrs...)
}

// RecordBusinessMetric records one event of metricType.
func (om *ObservabilityManager) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	if om == nil || om.metrics.ResumesAnalyzed == nil {
		return
	}

	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)
	opt := metric.WithAttributes(attrs...)
	m := om.metrics

	if metricType == MetricRateLimitHit {
		if om.infraEnabled(func(c infraFlags) bool { return c.TrackRateLimits }) {
			m.RateLimitHits.Add(ctx, 1, opt)
		}
		return
	}

	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.BusinessMetrics.Enabled {
		return
	}
	business := om.businessFlags()

	switch metricType {
	case MetricResumeAnalyzed:
		m.ResumesAnalyzed.Add(ctx, 1, opt)
	case MetricResumeGenerated:
		m.ResumesGenerated.Add(ctx, 1, opt)
	case MetricResumeEdited:
		if business.TrackEdits {
			m.ResumeEdits.Add(ctx, 1, opt)
		}
	case MetricExport:
		if business.TrackExport {
			m.Exports.Add(ctx, 1, opt)
		}
	case MetricValidationError:
		m.ValidationErrors.Add(ctx, 1, opt)
	}
}

type infraFlags struct {
	TrackRateLimits bool
	TrackSessions   bool
}

type businessFlags struct {
	TrackEdits  bool
	TrackExport bool
}

func (om *ObservabilityManager) businessFlags() businessFlags {
	if om.fullConfig == nil {
		return businessFlags{TrackEdits: true, TrackExport: true}
	}
	b := om.fullConfig.Observability.CustomMetrics.BusinessMetrics
	return businessFlags{TrackEdits: b.TrackEdits, TrackExport: b.TrackExport}
}

func (om *ObservabilityManager) infraEnabled(flag func(infraFlags) bool) bool {
	if om.fullConfig == nil {
		return true
	}
	infra := om.fullConfig.Observability.CustomMetrics.Infrastructure
	return infra.Enabled && flag(infraFlags{TrackRateLimits: infra.TrackRateLimits, TrackSessions: infra.TrackSessions})
}

// RegisterSessionGauge exposes count as infiniteats_sessions_active.
func (om *ObservabilityManager) RegisterSessionGauge(count func() int64) error {
	if om == nil || om.metrics.meter == nil {
		return nil
	}
	if !om.infraEnabled(func(c infraFlags) bool { return c.TrackSessions }) {
		return nil
	}
	_, err := om.metrics.meter.Int64ObservableGauge(
		"infiniteats_sessions_active",
		metric.WithDescription("Number of live browser sessions"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(count())
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions gauge: %w", err)
	}
	return nil
}
