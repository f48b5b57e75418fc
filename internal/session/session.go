package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"infiniteats/internal/ai"
	"infiniteats/internal/errors"
	"infiniteats/internal/types"
)

// User-facing failure messages. The cause is logged, never shown.
const (
	MsgAnalyzeFailed  = "Failed to analyze resume. Please try again."
	MsgGenerateFailed = "Failed to generate improved resume."
)

var (
	// ErrBusy is returned when a model call is already in flight.
	ErrBusy = stderrors.New("a request is already in progress")
	// ErrAbandoned is returned when the session was reset or left while
	// its call was in flight; the result was discarded.
	ErrAbandoned = stderrors.New("request abandoned")
)

// Analyzer scores a resume against a job target.
type Analyzer interface {
	Analyze(ctx context.Context, resume types.ResumeInput, job types.JobContext) (*types.AnalysisResult, error)
}

// Rewriter produces an improved resume.
type Rewriter interface {
	Rewrite(ctx context.Context, resume types.ResumeInput, job types.JobContext, missingKeywords []string) (*types.ResumeDocument, error)
}

// Session is one user's pass through the optimizer. The mutex guards state
// transitions only and is never held across a model call.
type Session struct {
	mu sync.Mutex

	id       string
	stage    Stage
	resume   types.ResumeInput
	job      types.JobContext
	analysis *types.AnalysisResult
	document *types.ResumeDocument
	editing  bool
	errMsg   string

	// analysisGen counts successful analyses; documentGen is the analysis
	// a document was generated from.
	analysisGen uint64
	documentGen uint64

	// epoch is bumped by Reset and by leaving a busy stage; completions
	// from an older epoch are discarded.
	epoch uint64

	createdAt time.Time
	lastSeen  time.Time
}

// New returns a session on the landing stage.
func New(id string) *Session {
	now := time.Now()
	return &Session{id: id, stage: StageLanding, createdAt: now, lastSeen: now}
}

func (s *Session) ID() string { return s.id }

// Snapshot is a read-only view of a session. Document snapshots are never
// mutated afterwards; edits replace the session's document instead.
type Snapshot struct {
	ID            string                `json:"id"`
	Stage         Stage                 `json:"stage"`
	Resume        types.ResumeInput     `json:"resume"`
	Job           types.JobContext      `json:"job"`
	Analysis      *types.AnalysisResult `json:"analysis,omitempty"`
	Document      *types.ResumeDocument `json:"document,omitempty"`
	Editing       bool                  `json:"editing"`
	Error         string                `json:"error,omitempty"`
	DocumentStale bool                  `json:"documentStale"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:            s.id,
		Stage:         s.stage,
		Resume:        s.resume,
		Job:           s.job,
		Analysis:      s.analysis,
		Document:      s.document,
		Editing:       s.editing,
		Error:         s.errMsg,
		DocumentStale: s.documentStaleLocked(),
	}
}

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Document returns the current document snapshot, or nil.
func (s *Session) Document() *types.ResumeDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// DocumentStale reports whether the document predates the latest analysis.
func (s *Session) DocumentStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentStaleLocked()
}

func (s *Session) documentStaleLocked() bool {
	return s.document != nil && s.documentGen < s.analysisGen
}

func (s *Session) touch() { s.lastSeen = time.Now() }

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func invalidTransition(from, to Stage) error {
	return errors.NewValidationError(errors.ErrCodeInvalidStage,
		fmt.Sprintf("cannot move from %s to %s", from, to), nil)
}

// Navigate moves between screens. While a call is in flight only landing
// is reachable, and going there abandons the call.
func (s *Session) Navigate(to Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.stage.Busy() {
		if to != StageLanding {
			return ErrBusy
		}
		s.epoch++
		s.stage = StageLanding
		return nil
	}

	switch to {
	case StageLanding, StageDashboard, StageHistory, StageUpload:
	case StageResults:
		if s.analysis == nil {
			return invalidTransition(s.stage, to)
		}
	case StageEditPreview:
		if s.document == nil {
			return invalidTransition(s.stage, to)
		}
	default:
		return invalidTransition(s.stage, to)
	}

	s.stage = to
	s.errMsg = ""
	return nil
}

// StartAnalysis validates the inputs and runs the analysis call. It blocks
// until the call finishes.
func (s *Session) StartAnalysis(ctx context.Context, analyzer Analyzer) error {
	s.mu.Lock()
	s.touch()
	if s.stage.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.stage != StageUpload {
		from := s.stage
		s.mu.Unlock()
		return invalidTransition(from, StageAnalyzing)
	}
	if err := ai.ValidateInputs(s.resume, s.job); err != nil {
		s.errMsg = errors.UserMessage(err, "")
		s.mu.Unlock()
		return err
	}

	s.stage = StageAnalyzing
	s.errMsg = ""
	epoch, resume, job := s.epoch, s.resume, s.job
	s.mu.Unlock()

	result, err := analyzer.Analyze(ctx, resume, job)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrAbandoned
	}
	if err != nil {
		s.stage = StageUpload
		s.errMsg = errors.UserMessage(err, MsgAnalyzeFailed)
		return err
	}

	s.analysis = result
	s.analysisGen++
	s.stage = StageResults
	return nil
}

// GenerateImproved rewrites the resume using the current analysis's
// missing keywords. It blocks until the call finishes.
func (s *Session) GenerateImproved(ctx context.Context, rewriter Rewriter) error {
	s.mu.Lock()
	s.touch()
	if s.stage.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.stage != StageResults || s.analysis == nil {
		from := s.stage
		s.mu.Unlock()
		return invalidTransition(from, StageGenerating)
	}

	s.stage = StageGenerating
	s.errMsg = ""
	epoch, resume, job := s.epoch, s.resume, s.job
	missing := append([]string(nil), s.analysis.MissingKeywords...)
	gen := s.analysisGen
	s.mu.Unlock()

	doc, err := rewriter.Rewrite(ctx, resume, job, missing)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrAbandoned
	}
	if err != nil {
		s.stage = StageResults
		s.errMsg = errors.UserMessage(err, MsgGenerateFailed)
		return err
	}

	doc.Normalize()
	s.document = doc
	s.documentGen = gen
	s.editing = true
	s.stage = StageEditPreview
	return nil
}

// Reset returns to landing and clears everything. A call in flight is
// abandoned.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.stage = StageLanding
	s.resume = types.ResumeInput{}
	s.job = types.JobContext{}
	s.analysis = nil
	s.document = nil
	s.editing = false
	s.errMsg = ""
	s.analysisGen = 0
	s.documentGen = 0
	s.touch()
}

// SetView switches between the edit form and the print preview.
func (s *Session) SetView(editing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.document == nil {
		return errors.NewValidationError(errors.ErrCodeInvalidEdit, "no resume to view", nil)
	}
	s.editing = editing
	return nil
}

// SetResumeText sets pasted resume text and drops any uploaded file.
func (s *Session) SetResumeText(text string) error {
	return s.setInput(func() error {
		s.resume = types.ResumeInput{Text: text}
		return nil
	})
}

// SetResumeFile sets an uploaded PDF and drops any pasted text.
func (s *Session) SetResumeFile(file *types.ResumeFile) error {
	return s.setInput(func() error {
		if file == nil || file.MimeType != "application/pdf" || len(file.Data) == 0 {
			return errors.NewValidationError(errors.ErrCodeUnsupportedMedia, "Please upload a PDF file.", nil)
		}
		s.resume = types.ResumeInput{File: file}
		return nil
	})
}

// SetJobDescription sets the pasted job description and clears the role.
func (s *Session) SetJobDescription(description string) error {
	return s.setInput(func() error {
		s.job = types.JobContext{Description: description}
		return nil
	})
}

// SetRole selects a catalog role and clears the description.
func (s *Session) SetRole(role string) error {
	return s.setInput(func() error {
		role = strings.TrimSpace(role)
		if role != "" && !types.IsKnownRole(role) {
			return errors.NewValidationError(errors.ErrCodeUnknownRole,
				fmt.Sprintf("Unknown role: %s", role), nil)
		}
		s.job = types.JobContext{Role: role}
		return nil
	})
}

func (s *Session) setInput(apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.stage.Busy() {
		return ErrBusy
	}
	if err := apply(); err != nil {
		return err
	}
	s.errMsg = ""
	return nil
}
