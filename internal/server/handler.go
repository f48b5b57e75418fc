package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"infiniteats/internal/common"
	"infiniteats/internal/errors"
	"infiniteats/internal/observability"
	"infiniteats/internal/session"
	"infiniteats/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// inputs converts an API request into validated resume and job values.
func (s *Server) inputs(req AnalyzeRequest) (types.ResumeInput, types.JobContext, error) {
	var resume types.ResumeInput
	if req.ResumeFile != nil && len(req.ResumeFile.Data) > 0 {
		file, err := common.CheckUpload(req.ResumeFile.Name, req.ResumeFile.Data, s.MaxFileSize)
		if err != nil {
			return resume, types.JobContext{}, err
		}
		resume.File = file
	} else {
		resume.Text = req.ResumeText
	}

	job := types.JobContext{Description: req.JobDescription}
	if role := strings.TrimSpace(req.Role); role != "" && strings.TrimSpace(req.JobDescription) == "" {
		if !types.IsKnownRole(role) {
			return resume, job, errors.NewValidationError(errors.ErrCodeUnknownRole,
				fmt.Sprintf("Unknown role: %s", role), nil)
		}
		job = types.JobContext{Role: role}
	}
	return resume, job, nil
}

func (s *Server) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.Obs.Tracer("infiniteats.api").Start(ctx, name)
}

// failRequest records err on the span, counts validation errors and writes
// the response.
func (s *Server) failRequest(ctx context.Context, w http.ResponseWriter, span trace.Span, err error, fallback string) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", string(errors.TypeOf(err))))
	if errors.IsValidation(err) {
		s.Obs.RecordBusinessMetric(ctx, observability.MetricValidationError, true,
			attribute.String("code", codeOf(err)))
	}
	s.writeAppError(w, err, fallback)
}

func codeOf(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// handleAPIAnalyze scores a resume in one request without a session.
func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.analyze")
	defer span.End()

	var req AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	resume, job, err := s.inputs(req)
	if err != nil {
		s.failRequest(ctx, w, span, err, session.MsgAnalyzeFailed)
		return
	}

	span.SetAttributes(
		attribute.Bool("request.resume_file", resume.HasFile()),
		attribute.Int("request.job_length", len(job.Description)),
		attribute.String("request.role", job.Role),
	)

	result, err := s.AI.Analyze(ctx, resume, job)
	if err != nil {
		s.failRequest(ctx, w, span, err, session.MsgAnalyzeFailed)
		return
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Float64("ats.score", result.Score))
	writeJSON(w, http.StatusOK, result, s.Logger)
}

// handleAPIOptimize analyzes a resume and rewrites it with the missing
// keywords in one request.
func (s *Server) handleAPIOptimize(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.optimize")
	defer span.End()

	var req AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	resume, job, err := s.inputs(req)
	if err != nil {
		s.failRequest(ctx, w, span, err, session.MsgAnalyzeFailed)
		return
	}

	analysis, err := s.AI.Analyze(ctx, resume, job)
	if err != nil {
		s.failRequest(ctx, w, span, err, session.MsgAnalyzeFailed)
		return
	}

	doc, err := s.AI.Rewrite(ctx, resume, job, analysis.MissingKeywords)
	if err != nil {
		s.failRequest(ctx, w, span, err, session.MsgGenerateFailed)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("ats.score", analysis.Score),
		attribute.Int("missing_keywords", len(analysis.MissingKeywords)),
	)
	writeJSON(w, http.StatusOK, types.OptimizeResult{Analysis: analysis, Document: doc}, s.Logger)
}

func (s *Server) handleAPIRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"roles": roleCatalog()}, s.Logger)
}

// handleAPICreateSession starts a session that browser routes can pick up
// through the session cookie.
func (s *Server) handleAPICreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Create()
	s.setSessionCookie(w, sess.ID())
	writeJSON(w, http.StatusCreated, sess.Snapshot(), s.Logger)
}

func (s *Server) handleAPIGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Sessions.Get(r.PathValue("id"))
	if !ok {
		writeErrorResponse(w, "Not found", "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot(), s.Logger)
}

func (s *Server) handleAPIDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.Sessions.Get(id); !ok {
		writeErrorResponse(w, "Not found", "session not found", http.StatusNotFound)
		return
	}
	s.Sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
