package session

import (
	"context"
	stderrors "errors"
	"testing"

	"infiniteats/internal/ai"
	"infiniteats/internal/errors"
	"infiniteats/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyzerFunc func(ctx context.Context, resume types.ResumeInput, job types.JobContext) (*types.AnalysisResult, error)

func (f analyzerFunc) Analyze(ctx context.Context, resume types.ResumeInput, job types.JobContext) (*types.AnalysisResult, error) {
	return f(ctx, resume, job)
}

type rewriterFunc func(ctx context.Context, resume types.ResumeInput, job types.JobContext, missing []string) (*types.ResumeDocument, error)

func (f rewriterFunc) Rewrite(ctx context.Context, resume types.ResumeInput, job types.JobContext, missing []string) (*types.ResumeDocument, error) {
	return f(ctx, resume, job, missing)
}

func fixedAnalysis(score float64, missing ...string) Analyzer {
	return analyzerFunc(func(context.Context, types.ResumeInput, types.JobContext) (*types.AnalysisResult, error) {
		return &types.AnalysisResult{Score: score, Summary: "Good match", MissingKeywords: missing}, nil
	})
}

func sampleDocument() *types.ResumeDocument {
	return &types.ResumeDocument{
		FullName:    "Jane Q Doe",
		ContactInfo: types.ContactInfo{Email: "jane@example.com", Phone: "555-0100"},
		Summary:     "Backend engineer",
		Skills:      []string{"Go"},
		Experience: []types.Experience{
			{Role: "Engineer", Company: "Acme", Duration: "2020-2024", Details: []string{"Built APIs", "Ran on-call"}},
		},
		Education: []types.Education{{Degree: "BSc", School: "State", Year: "2019"}},
	}
}

func fixedDocument(doc *types.ResumeDocument) Rewriter {
	return rewriterFunc(func(context.Context, types.ResumeInput, types.JobContext, []string) (*types.ResumeDocument, error) {
		return doc, nil
	})
}

// readySession is on the upload stage with both inputs set.
func readySession(t *testing.T) *Session {
	t.Helper()
	s := New("test")
	require.NoError(t, s.Navigate(StageUpload))
	require.NoError(t, s.SetResumeText("Experienced backend engineer..."))
	require.NoError(t, s.SetRole("Backend Developer"))
	return s
}

// editingSession has a generated document and is on editPreview.
func editingSession(t *testing.T) *Session {
	t.Helper()
	s := readySession(t)
	require.NoError(t, s.StartAnalysis(context.Background(), fixedAnalysis(72, "Kubernetes")))
	require.NoError(t, s.GenerateImproved(context.Background(), fixedDocument(sampleDocument())))
	return s
}

func TestNewSessionStartsOnLanding(t *testing.T) {
	s := New("abc")
	assert.Equal(t, StageLanding, s.Stage())
	assert.Equal(t, "abc", s.ID())
}

func TestAnalysisScenario(t *testing.T) {
	s := readySession(t)

	var seenJob types.JobContext
	analyzer := analyzerFunc(func(_ context.Context, _ types.ResumeInput, job types.JobContext) (*types.AnalysisResult, error) {
		seenJob = job
		return &types.AnalysisResult{
			Score:                  72,
			Summary:                "Good match",
			MatchingKeywords:       []string{"API", "SQL"},
			MissingKeywords:        []string{"Kubernetes"},
			FormattingIssues:       []string{},
			ContentRecommendations: []string{"Add metrics"},
		}, nil
	})

	require.NoError(t, s.StartAnalysis(context.Background(), analyzer))

	snap := s.Snapshot()
	assert.Equal(t, StageResults, snap.Stage)
	require.NotNil(t, snap.Analysis)
	assert.Equal(t, 72.0, snap.Analysis.Score)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "Backend Developer", seenJob.Role)
}

func TestGenerateScenario(t *testing.T) {
	s := readySession(t)
	require.NoError(t, s.StartAnalysis(context.Background(), fixedAnalysis(72, "Kubernetes")))

	var seenMissing []string
	rewriter := rewriterFunc(func(_ context.Context, _ types.ResumeInput, _ types.JobContext, missing []string) (*types.ResumeDocument, error) {
		seenMissing = missing
		return sampleDocument(), nil
	})
	require.NoError(t, s.GenerateImproved(context.Background(), rewriter))

	snap := s.Snapshot()
	assert.Equal(t, StageEditPreview, snap.Stage)
	assert.Equal(t, "Jane Q Doe", snap.Document.FullName)
	assert.True(t, snap.Editing)
	assert.Equal(t, []string{"Kubernetes"}, seenMissing)
}

func TestStartAnalysisValidation(t *testing.T) {
	called := false
	analyzer := analyzerFunc(func(context.Context, types.ResumeInput, types.JobContext) (*types.AnalysisResult, error) {
		called = true
		return &types.AnalysisResult{}, nil
	})

	t.Run("resume checked first", func(t *testing.T) {
		s := New("v")
		require.NoError(t, s.Navigate(StageUpload))

		err := s.StartAnalysis(context.Background(), analyzer)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))

		snap := s.Snapshot()
		assert.Equal(t, StageUpload, snap.Stage)
		assert.Equal(t, ai.MsgResumeMissing, snap.Error)
	})

	t.Run("job target missing", func(t *testing.T) {
		s := New("v")
		require.NoError(t, s.Navigate(StageUpload))
		require.NoError(t, s.SetResumeText("resume"))

		err := s.StartAnalysis(context.Background(), analyzer)
		require.Error(t, err)
		assert.Equal(t, ai.MsgJobTargetMissing, s.Snapshot().Error)
	})

	assert.False(t, called)
}

func TestStartAnalysisOnlyFromUpload(t *testing.T) {
	s := New("x")
	err := s.StartAnalysis(context.Background(), fixedAnalysis(50))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, StageLanding, s.Stage())
}

func TestAnalysisFailureReturnsToUpload(t *testing.T) {
	s := readySession(t)
	failing := analyzerFunc(func(context.Context, types.ResumeInput, types.JobContext) (*types.AnalysisResult, error) {
		return nil, errors.NewDecodeError(errors.ErrCodeAIParseFailed, "bad json", nil)
	})

	err := s.StartAnalysis(context.Background(), failing)
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StageUpload, snap.Stage)
	assert.Equal(t, MsgAnalyzeFailed, snap.Error)
	assert.Equal(t, "Experienced backend engineer...", snap.Resume.Text)
	assert.Equal(t, "Backend Developer", snap.Job.Role)
	assert.Nil(t, snap.Analysis)
}

func TestGenerateFailureReturnsToResults(t *testing.T) {
	s := readySession(t)
	require.NoError(t, s.StartAnalysis(context.Background(), fixedAnalysis(40)))

	failing := rewriterFunc(func(context.Context, types.ResumeInput, types.JobContext, []string) (*types.ResumeDocument, error) {
		return nil, errors.NewGatewayError(errors.ErrCodeAIEmptyResponse, "Empty response from AI", nil)
	})
	require.Error(t, s.GenerateImproved(context.Background(), failing))

	snap := s.Snapshot()
	assert.Equal(t, StageResults, snap.Stage)
	assert.Equal(t, MsgGenerateFailed, snap.Error)
	assert.Nil(t, snap.Document)
}

func TestGenerateRequiresAnalysis(t *testing.T) {
	s := readySession(t)
	err := s.GenerateImproved(context.Background(), fixedDocument(sampleDocument()))
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, StageUpload, s.Stage())
}

// blockingAnalyzer holds the call open until release is closed.
func blockingAnalyzer(started chan<- struct{}, release <-chan struct{}) Analyzer {
	return analyzerFunc(func(context.Context, types.ResumeInput, types.JobContext) (*types.AnalysisResult, error) {
		close(started)
		<-release
		return &types.AnalysisResult{Score: 90}, nil
	})
}

func TestSecondAnalysisWhileBusy(t *testing.T) {
	s := readySession(t)
	started, release := make(chan struct{}), make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- s.StartAnalysis(context.Background(), blockingAnalyzer(started, release)) }()
	<-started

	assert.Equal(t, StageAnalyzing, s.Stage())
	assert.ErrorIs(t, s.StartAnalysis(context.Background(), fixedAnalysis(10)), ErrBusy)
	assert.ErrorIs(t, s.SetResumeText("new"), ErrBusy)
	assert.ErrorIs(t, s.Navigate(StageUpload), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 90.0, s.Snapshot().Analysis.Score)
}

func TestResetDuringCallDiscardsResult(t *testing.T) {
	s := readySession(t)
	started, release := make(chan struct{}), make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- s.StartAnalysis(context.Background(), blockingAnalyzer(started, release)) }()
	<-started

	s.Reset()
	close(release)

	assert.ErrorIs(t, <-done, ErrAbandoned)
	snap := s.Snapshot()
	assert.Equal(t, StageLanding, snap.Stage)
	assert.Nil(t, snap.Analysis)
	assert.True(t, snap.Resume.IsEmpty())
}

func TestNavigateToLandingAbandonsCall(t *testing.T) {
	s := readySession(t)
	started, release := make(chan struct{}), make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- s.StartAnalysis(context.Background(), blockingAnalyzer(started, release)) }()
	<-started

	require.NoError(t, s.Navigate(StageLanding))
	close(release)

	assert.ErrorIs(t, <-done, ErrAbandoned)
	assert.Equal(t, StageLanding, s.Stage())
	assert.Nil(t, s.Snapshot().Analysis)
	assert.Equal(t, "Backend Developer", s.Snapshot().Job.Role)
}

func TestNavigateGuards(t *testing.T) {
	s := New("n")
	for _, stage := range []Stage{StageDashboard, StageHistory, StageUpload, StageLanding} {
		assert.NoError(t, s.Navigate(stage), stage)
	}
	assert.Error(t, s.Navigate(StageResults))
	assert.Error(t, s.Navigate(StageEditPreview))
	assert.Error(t, s.Navigate(StageAnalyzing))

	s = editingSession(t)
	require.NoError(t, s.Navigate(StageDashboard))
	assert.NoError(t, s.Navigate(StageResults))
	assert.NoError(t, s.Navigate(StageEditPreview))
}

func TestInputSettersClearEachOther(t *testing.T) {
	s := New("i")

	require.NoError(t, s.SetResumeFile(&types.ResumeFile{Data: []byte("%PDF-1.7"), MimeType: "application/pdf", Name: "cv.pdf"}))
	require.NoError(t, s.SetResumeText("pasted"))
	snap := s.Snapshot()
	assert.Nil(t, snap.Resume.File)
	assert.Equal(t, "pasted", snap.Resume.Text)

	require.NoError(t, s.SetResumeFile(&types.ResumeFile{Data: []byte("%PDF-1.7"), MimeType: "application/pdf"}))
	assert.Empty(t, s.Snapshot().Resume.Text)

	require.NoError(t, s.SetRole("QA Engineer"))
	require.NoError(t, s.SetJobDescription("Build test automation for payments"))
	snap = s.Snapshot()
	assert.Empty(t, snap.Job.Role)
	assert.Equal(t, "Build test automation for payments", snap.Job.Description)

	require.NoError(t, s.SetRole("QA Engineer"))
	snap = s.Snapshot()
	assert.Empty(t, snap.Job.Description)
	assert.Equal(t, "QA Engineer", snap.Job.Role)
}

func TestSetRoleRejectsUnknown(t *testing.T) {
	s := New("r")
	err := s.SetRole("Astronaut")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeUnknownRole, appErr.Code)
}

func TestSetResumeFileRejectsNonPDF(t *testing.T) {
	s := New("f")
	err := s.SetResumeFile(&types.ResumeFile{Data: []byte("hello"), MimeType: "text/plain"})
	require.Error(t, err)
	assert.Equal(t, "Please upload a PDF file.", errors.UserMessage(err, ""))
	assert.Nil(t, s.Snapshot().Resume.File)
}

func TestDocumentStaleAfterReanalysis(t *testing.T) {
	s := editingSession(t)
	assert.False(t, s.DocumentStale())

	require.NoError(t, s.Navigate(StageUpload))
	require.NoError(t, s.StartAnalysis(context.Background(), fixedAnalysis(80, "Terraform")))

	snap := s.Snapshot()
	assert.NotNil(t, snap.Document)
	assert.True(t, snap.DocumentStale)

	require.NoError(t, s.GenerateImproved(context.Background(), fixedDocument(sampleDocument())))
	assert.False(t, s.DocumentStale())
}

func TestSetView(t *testing.T) {
	s := New("view")
	assert.Error(t, s.SetView(false))

	s = editingSession(t)
	require.NoError(t, s.SetView(false))
	assert.False(t, s.Snapshot().Editing)
	require.NoError(t, s.SetView(true))
	assert.True(t, s.Snapshot().Editing)
}
