package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimited := s.rateLimitMiddleware(s.Obs)
	limitBody := s.requestSizeLimitMiddleware()
	api := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimited(s.authMiddleware(limitBody(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	if endpoint, handler := s.Obs.MetricsHandler(); handler != nil {
		mux.Handle("GET "+endpoint, handler)
	}

	// Browser flow
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("POST /navigate", s.sessionAction(s.navigate))
	mux.HandleFunc("POST /reset", s.sessionAction(s.reset))
	mux.HandleFunc("POST /resume/text", limitBody(s.sessionAction(s.setResumeText)))
	mux.HandleFunc("POST /resume/file", limitBody(s.sessionAction(s.setResumeFile)))
	mux.HandleFunc("POST /job/description", limitBody(s.sessionAction(s.setJobDescription)))
	mux.HandleFunc("POST /job/role", s.sessionAction(s.setRole))
	mux.HandleFunc("POST /analyze", rateLimited(s.handleAnalyze))
	mux.HandleFunc("POST /generate", rateLimited(s.handleGenerate))
	mux.HandleFunc("POST /edit/summary", s.edited("summary", editSummary))
	mux.HandleFunc("POST /edit/experience", s.edited("experience_detail", editExperienceDetail))
	mux.HandleFunc("POST /edit/field", s.edited("experience_field", editExperienceField))
	mux.HandleFunc("POST /edit/skills", s.edited("skills", editSkills))
	mux.HandleFunc("POST /view", s.sessionAction(setView))
	mux.HandleFunc("GET /export/json", s.handleExportJSON)
	mux.HandleFunc("GET /export/print", s.handleExportPrint)

	// JSON API
	mux.HandleFunc("GET /api/roles", s.authMiddleware(s.handleAPIRoles))
	mux.HandleFunc("POST /api/sessions", api(s.handleAPICreateSession))
	mux.HandleFunc("GET /api/sessions/{id}", s.authMiddleware(s.handleAPIGetSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.authMiddleware(s.handleAPIDeleteSession))
	mux.HandleFunc("POST /api/analyze", api(s.handleAPIAnalyze))
	mux.HandleFunc("POST /api/optimize", api(s.handleAPIOptimize))

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.Obs.HTTPMiddleware()(s.setupRoutes())
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
