package cli

import (
	"context"

	"github.com/google/uuid"

	"infiniteats/internal/common"
	"infiniteats/internal/session"
	"infiniteats/internal/types"
)

// resumeService is what the terminal commands need from the AI service.
type resumeService interface {
	session.Analyzer
	session.Rewriter
}

// newTerminalSession loads the inputs into a fresh session on the upload
// stage, the same path a browser takes before pressing analyze.
func newTerminalSession(resume types.ResumeInput, job types.JobContext) (*session.Session, error) {
	sess := session.New(uuid.NewString())
	if err := sess.Navigate(session.StageUpload); err != nil {
		return nil, err
	}

	var err error
	if resume.HasFile() {
		err = sess.SetResumeFile(resume.File)
	} else {
		err = sess.SetResumeText(resume.Text)
	}
	if err != nil {
		return nil, err
	}

	if job.Description != "" {
		err = sess.SetJobDescription(job.Description)
	} else {
		err = sess.SetRole(job.Role)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// analyzer runs one analysis through a terminal session.
func analyzer(service session.Analyzer) common.OperationFunc[*types.AnalysisResult] {
	return func(ctx context.Context, resume types.ResumeInput, job types.JobContext) (*types.AnalysisResult, error) {
		sess, err := newTerminalSession(resume, job)
		if err != nil {
			return nil, err
		}
		if err := sess.StartAnalysis(ctx, service); err != nil {
			return nil, err
		}
		return sess.Snapshot().Analysis, nil
	}
}

// optimizer drives a terminal session from upload through generation and
// returns the analysis with the rewritten document.
func optimizer(service resumeService) common.OperationFunc[types.OptimizeResult] {
	return func(ctx context.Context, resume types.ResumeInput, job types.JobContext) (types.OptimizeResult, error) {
		sess, err := newTerminalSession(resume, job)
		if err != nil {
			return types.OptimizeResult{}, err
		}
		if err := sess.StartAnalysis(ctx, service); err != nil {
			return types.OptimizeResult{}, err
		}
		if err := sess.GenerateImproved(ctx, service); err != nil {
			return types.OptimizeResult{Analysis: sess.Snapshot().Analysis}, err
		}
		snap := sess.Snapshot()
		return types.OptimizeResult{Analysis: snap.Analysis, Document: snap.Document}, nil
	}
}
