package ai

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"infiniteats/internal/config"
	"infiniteats/internal/errors"
	"infiniteats/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{"score":72,"summary":"Good match","matchingKeywords":["API","SQL"],"missingKeywords":["Kubernetes"],"formattingIssues":[],"contentRecommendations":["Add metrics"]}`

const documentJSON = `{"fullName":"Jane Doe","contactInfo":{"email":"jane@example.com","phone":"555-0100"},"summary":"Backend engineer","skills":["Go","Kubernetes"],"experience":[{"role":"Engineer","company":"Acme","duration":"2020-2024","details":["Built APIs"]}],"education":[{"degree":"BSc","school":"State","year":"2019"}]}`

// fakeGateway returns a canned reply and records requests.
type fakeGateway struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []Request
}

func (f *fakeGateway) Generate(ctx context.Context, req Request) (*Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &Reply{Text: f.text, Usage: &TokenUsage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}}, nil
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestService(analyze, rewrite Gateway) *Service {
	return NewServiceWithGateways(config.Default(), analyze, rewrite, nil, errors.Discard())
}

func TestServiceAnalyze(t *testing.T) {
	gw := &fakeGateway{text: analysisJSON}
	svc := newTestService(gw, &fakeGateway{})

	result, err := svc.Analyze(context.Background(),
		types.ResumeInput{Text: "Experienced backend engineer..."},
		types.JobContext{Role: "Backend Developer"})
	require.NoError(t, err)
	assert.Equal(t, 72.0, result.Score)
	assert.Equal(t, []string{"API", "SQL"}, result.MatchingKeywords)

	require.Equal(t, 1, gw.calls())
	assert.Equal(t, config.OperationAnalyze, gw.requests[0].Operation)
}

func TestServiceRewrite(t *testing.T) {
	gw := &fakeGateway{text: documentJSON}
	svc := newTestService(&fakeGateway{}, gw)

	doc, err := svc.Rewrite(context.Background(),
		types.ResumeInput{Text: "resume"},
		types.JobContext{Role: "Backend Developer"},
		[]string{"Kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.FullName)
	assert.Equal(t, "555-0100", doc.ContactInfo.Phone)
	assert.Equal(t, []string{"Built APIs"}, doc.Experience[0].Details)

	assert.Contains(t, gw.requests[0].Parts[1].Text, "Kubernetes")
}

func TestServiceValidationNeverCallsGateway(t *testing.T) {
	gw := &fakeGateway{text: analysisJSON}
	svc := newTestService(gw, gw)

	_, err := svc.Analyze(context.Background(), types.ResumeInput{}, types.JobContext{Role: "QA Engineer"})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.Rewrite(context.Background(), types.ResumeInput{Text: "r"}, types.JobContext{}, nil)
	assert.True(t, errors.IsValidation(err))

	assert.Zero(t, gw.calls())
}

func TestServiceRewriteNormalizesEmptyProjects(t *testing.T) {
	gw := &fakeGateway{text: `{"fullName":"Jane Doe","contactInfo":{"email":"","phone":""},"summary":"","skills":[],"experience":[],"education":[],"projects":[]}`}
	svc := newTestService(&fakeGateway{}, gw)

	doc, err := svc.Rewrite(context.Background(), types.ResumeInput{Text: "resume"}, types.JobContext{Role: "Backend Developer"}, nil)
	require.NoError(t, err)
	assert.Nil(t, doc.Projects)
}

func TestServiceErrorKinds(t *testing.T) {
	resume := types.ResumeInput{Text: "r"}
	job := types.JobContext{Role: "QA Engineer"}

	t.Run("gateway failure", func(t *testing.T) {
		gwErr := errors.NewGatewayError(errors.ErrCodeAIServiceFailed, "boom", stderrors.New("dial tcp"))
		svc := newTestService(&fakeGateway{err: gwErr}, nil)
		_, err := svc.Analyze(context.Background(), resume, job)
		assert.True(t, errors.IsGatewayFailure(err))
	})

	t.Run("decode failure", func(t *testing.T) {
		svc := newTestService(&fakeGateway{text: "{not json"}, nil)
		_, err := svc.Analyze(context.Background(), resume, job)
		assert.True(t, errors.IsDecodeFailure(err))
	})

	for name, text := range map[string]string{"empty reply": "", "blank reply": "   \n"} {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(&fakeGateway{text: text}, nil)
			_, err := svc.Analyze(context.Background(), resume, job)
			require.Error(t, err)
			assert.True(t, errors.IsGatewayFailure(err))
			assert.False(t, errors.IsDecodeFailure(err))

			var appErr *errors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, errors.ErrCodeAIEmptyResponse, appErr.Code)
		})
	}
}

func TestBreakerOpensAndFailsFast(t *testing.T) {
	breaker := NewBreaker("analyze", config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}, errors.Discard())
	require.NotNil(t, breaker)

	fail := func() (*Reply, error) { return nil, stderrors.New("upstream down") }
	for range 2 {
		_, err := breaker.Execute("analyze", fail)
		require.Error(t, err)
	}
	assert.False(t, breaker.IsHealthy())

	called := false
	_, err := breaker.Execute("analyze", func() (*Reply, error) {
		called = true
		return &Reply{Text: "{}"}, nil
	})
	assert.False(t, called)
	assert.True(t, errors.IsGatewayFailure(err))

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeAICircuitOpen, appErr.Code)
	assert.Equal(t, "open", breaker.Stats()["state"])
}

func TestDisabledBreakerPassesThrough(t *testing.T) {
	breaker := NewBreaker("rewrite", config.CircuitBreakerConfig{}, errors.Discard())
	assert.Nil(t, breaker)
	assert.True(t, breaker.IsHealthy())
	assert.Equal(t, false, breaker.Stats()["enabled"])

	reply, err := breaker.Execute("rewrite", func() (*Reply, error) { return &Reply{Text: "ok"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text)
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.AI.APIKey = ""
	_, err := NewService(context.Background(), cfg, nil, errors.Discard())
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeMissingAPIKey, appErr.Code)
}
