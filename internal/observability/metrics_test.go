package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"infiniteats/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *ObservabilityManager {
	t.Helper()
	cfg := config.Default()
	obsCfg := GetObservabilityConfig(cfg, "test")
	obsCfg.Tracing = false
	obsCfg.ConsoleOutput = false

	om, err := NewObservabilityManager(obsCfg, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })
	return om
}

func scrape(t *testing.T, om *ObservabilityManager) string {
	t.Helper()
	endpoint, handler := om.MetricsHandler()
	require.NotNil(t, handler)
	assert.Equal(t, "/metrics", endpoint)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", endpoint, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNilManagerIsSafe(t *testing.T) {
	var om *ObservabilityManager

	called := false
	err := om.TrackAIOperation(context.Background(), "analyze", func(ctx context.Context) *AIOperationResult {
		called = true
		return &AIOperationResult{Error: errors.New("boom")}
	})
	assert.True(t, called)
	assert.EqualError(t, err, "boom")

	om.RecordBusinessMetric(context.Background(), MetricExport, true)
	assert.NoError(t, om.RegisterSessionGauge(func() int64 { return 1 }))
	assert.NoError(t, om.Shutdown(context.Background()))

	_, handler := om.MetricsHandler()
	assert.Nil(t, handler)
}

func TestBusinessMetricsAreExported(t *testing.T) {
	om := newTestManager(t)
	ctx := context.Background()

	om.RecordBusinessMetric(ctx, MetricResumeAnalyzed, true)
	om.RecordBusinessMetric(ctx, MetricExport, true)
	om.RecordBusinessMetric(ctx, MetricRateLimitHit, false)
	require.NoError(t, om.RegisterSessionGauge(func() int64 { return 3 }))

	body := scrape(t, om)
	assert.Contains(t, body, "infiniteats_resumes_analyzed_total")
	assert.Contains(t, body, "infiniteats_exports_total")
	assert.Contains(t, body, "infiniteats_rate_limit_hits_total")
	assert.Contains(t, body, "infiniteats_sessions_active")
}

func TestTrackAIOperationRecordsTokens(t *testing.T) {
	om := newTestManager(t)

	err := om.TrackAIOperation(context.Background(), "rewrite", func(ctx context.Context) *AIOperationResult {
		return &AIOperationResult{TokenUsage: &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}
	})
	require.NoError(t, err)

	body := scrape(t, om)
	assert.Contains(t, body, "infiniteats_ai_requests_total")
	assert.Contains(t, body, `token_type="total"`)
}

func TestDisabledManagerHasNoHandler(t *testing.T) {
	cfg := config.Default()
	obsCfg := GetObservabilityConfig(cfg, "test")
	obsCfg.Enabled = false

	om, err := NewObservabilityManager(obsCfg, cfg)
	require.NoError(t, err)

	_, handler := om.MetricsHandler()
	assert.Nil(t, handler)
	om.RecordBusinessMetric(context.Background(), MetricResumeEdited, true)
}
