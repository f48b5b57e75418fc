package server

import (
	"context"
	"embed"
	stderrors "errors"
	"html/template"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"infiniteats/internal/common"
	"infiniteats/internal/errors"
	"infiniteats/internal/formatters"
	"infiniteats/internal/observability"
	"infiniteats/internal/session"
	"infiniteats/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

//go:embed templates/page.html.tmpl
var pageFS embed.FS

var pageTemplate = template.Must(template.New("page.html.tmpl").
	Funcs(template.FuncMap{
		"join": strings.Join,
		"band": func(a *types.AnalysisResult) string { return formatters.BandLabel(a.Band()) },
		"dict": pairs,
	}).
	ParseFS(pageFS, "templates/page.html.tmpl"))

// pairs builds a map from alternating keys and values.
func pairs(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

type pageData struct {
	session.Snapshot
	Roles   []string
	Flash   string
	Version string
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.AppConfig.Session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.AppConfig.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentSession returns the caller's session, creating one and setting
// the cookie when it is missing or expired.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(s.AppConfig.Session.CookieName); err == nil {
		if sess, ok := s.Sessions.Get(c.Value); ok {
			return sess
		}
	}
	sess := s.Sessions.Create()
	s.setSessionCookie(w, sess.ID())
	return sess
}

func (s *Server) render(w http.ResponseWriter, sess *session.Session, status int, flash string) {
	data := pageData{
		Snapshot: sess.Snapshot(),
		Roles:    roleCatalog(),
		Flash:    flash,
		Version:  s.Version,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.Logger.LogError(err, "Failed to render page", "stage", data.Stage)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// sessionAction wraps a form handler: on success the browser is sent back
// to the current stage, on failure the page is rendered with the message.
func (s *Server) sessionAction(action func(r *http.Request, sess *session.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(w, r)
		if err := action(r, sess); err != nil {
			if errors.IsValidation(err) {
				s.Obs.RecordBusinessMetric(r.Context(), observability.MetricValidationError, true,
					attribute.String("code", codeOf(err)),
					attribute.String("endpoint", r.URL.Path))
			}
			s.render(w, sess, statusFor(err), userMessage(err, "Something went wrong."))
			return
		}
		redirectHome(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, s.currentSession(w, r), http.StatusOK, "")
}

func (s *Server) navigate(r *http.Request, sess *session.Session) error {
	stage, ok := session.ParseStage(r.FormValue("stage"))
	if !ok {
		return errors.NewValidationError(errors.ErrCodeInvalidStage, "Unknown screen.", nil)
	}
	return sess.Navigate(stage)
}

func (s *Server) reset(_ *http.Request, sess *session.Session) error {
	sess.Reset()
	return nil
}

func (s *Server) setResumeText(r *http.Request, sess *session.Session) error {
	return sess.SetResumeText(r.FormValue("text"))
}

// setResumeFile reads the multipart field "resume". Content is sniffed;
// the declared type is only logged.
func (s *Server) setResumeFile(r *http.Request, sess *session.Session) error {
	file, header, err := r.FormFile("resume")
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeUnsupportedMedia, common.MsgUploadPDFOnly, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, s.MaxFileSize+1))
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "Could not read the upload.", err)
	}
	upload, err := common.CheckUpload(header.Filename, data, s.MaxFileSize)
	if err != nil {
		s.Logger.Debug("Rejected resume upload",
			"name", header.Filename,
			"declared_type", header.Header.Get("Content-Type"),
			"size", len(data))
		return err
	}
	return sess.SetResumeFile(upload)
}

func (s *Server) setJobDescription(r *http.Request, sess *session.Session) error {
	return sess.SetJobDescription(r.FormValue("description"))
}

func (s *Server) setRole(r *http.Request, sess *session.Session) error {
	return sess.SetRole(r.FormValue("role"))
}

// modelCallContext keeps the call alive when the browser gives up waiting;
// leaving the stage is what abandons a call.
func modelCallContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// handleAnalyze runs the analysis. Model failures are shown on the page
// through the session's error message, so only guard errors are rendered
// here.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	err := sess.StartAnalysis(modelCallContext(r), s.AI)
	s.afterModelCall(w, r, sess, err)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	err := sess.GenerateImproved(modelCallContext(r), s.AI)
	s.afterModelCall(w, r, sess, err)
}

func (s *Server) afterModelCall(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	switch {
	case err == nil, stderrors.Is(err, session.ErrAbandoned):
		redirectHome(w, r)
	case stderrors.Is(err, session.ErrBusy), codeOf(err) == errors.ErrCodeInvalidStage:
		s.render(w, sess, statusFor(err), userMessage(err, ""))
	default:
		if errors.IsValidation(err) {
			s.Obs.RecordBusinessMetric(r.Context(), observability.MetricValidationError, true,
				attribute.String("code", codeOf(err)))
		} else {
			s.Logger.LogError(err, "Model call failed", "session_id", sess.ID(), "stage", sess.Stage())
		}
		redirectHome(w, r)
	}
}

func formIndex(r *http.Request, name string) (int, error) {
	i, err := strconv.Atoi(r.FormValue(name))
	if err != nil {
		return 0, errors.NewValidationError(errors.ErrCodeInvalidEdit, "Invalid "+name+".", err)
	}
	return i, nil
}

// edited wraps an edit so successful edits are counted.
func (s *Server) edited(kind string, edit func(r *http.Request, sess *session.Session) error) http.HandlerFunc {
	return s.sessionAction(func(r *http.Request, sess *session.Session) error {
		if err := edit(r, sess); err != nil {
			return err
		}
		s.Obs.RecordBusinessMetric(r.Context(), observability.MetricResumeEdited, true,
			attribute.String("field", kind))
		return nil
	})
}

func editSummary(r *http.Request, sess *session.Session) error {
	return sess.UpdateSummary(r.FormValue("text"))
}

func editExperienceDetail(r *http.Request, sess *session.Session) error {
	i, err := formIndex(r, "index")
	if err != nil {
		return err
	}
	j, err := formIndex(r, "detail")
	if err != nil {
		return err
	}
	return sess.UpdateExperienceDetail(i, j, r.FormValue("text"))
}

func editExperienceField(r *http.Request, sess *session.Session) error {
	i, err := formIndex(r, "index")
	if err != nil {
		return err
	}
	return sess.UpdateExperienceField(i, r.FormValue("field"), r.FormValue("value"))
}

// editSkills takes one skill per line so a skill may contain commas.
func editSkills(r *http.Request, sess *session.Session) error {
	return sess.UpdateSkills(strings.Split(r.FormValue("skills"), "\n"))
}

func setView(r *http.Request, sess *session.Session) error {
	switch r.FormValue("mode") {
	case "edit":
		return sess.SetView(true)
	case "preview":
		return sess.SetView(false)
	default:
		return errors.NewValidationError(errors.ErrCodeInvalidEdit, "View must be edit or preview.", nil)
	}
}

// handleExportJSON downloads the current document as <Name>_Resume.json.
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	doc := s.currentSession(w, r).Document()
	if doc == nil {
		writeErrorResponse(w, "Not found", "no resume to export", http.StatusNotFound)
		return
	}
	body, err := session.ExportJSON(doc)
	if err != nil {
		s.Logger.LogError(err, "Failed to encode resume export")
		s.Obs.RecordBusinessMetric(r.Context(), observability.MetricExport, false, attribute.String("format", "json"))
		writeErrorResponse(w, "Export failed", "could not encode resume", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment(session.ExportFilename(doc.FullName)))
	if _, err := w.Write(body); err != nil {
		s.Logger.LogError(err, "Failed to write resume export")
		return
	}
	s.Obs.RecordBusinessMetric(r.Context(), observability.MetricExport, true, attribute.String("format", "json"))
}

// handleExportPrint serves a print-only page that opens the print dialog.
func (s *Server) handleExportPrint(w http.ResponseWriter, r *http.Request) {
	doc := s.currentSession(w, r).Document()
	if doc == nil {
		writeErrorResponse(w, "Not found", "no resume to print", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formatters.RenderPrint(w, doc); err != nil {
		s.Logger.LogError(err, "Failed to render print view")
		s.Obs.RecordBusinessMetric(r.Context(), observability.MetricExport, false, attribute.String("format", "print"))
		return
	}
	s.Obs.RecordBusinessMetric(r.Context(), observability.MetricExport, true, attribute.String("format", "print"))
}

// attachment builds a Content-Disposition value. Names that cannot be
// encoded fall back to a bare attachment.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
