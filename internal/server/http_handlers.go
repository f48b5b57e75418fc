package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"infiniteats/internal/errors"
	"infiniteats/internal/session"
)

// healthHandler reports model availability, breaker state and the live
// session count. Any unavailable model degrades the status to 503.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if timeout := s.AppConfig.Observability.HealthCheck.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "infiniteats",
		"version": s.Version,
	}

	aiStatus := s.AI.Health(ctx)
	response["ai_models"] = aiStatus
	if s.Sessions != nil {
		response["sessions"] = s.Sessions.Len()
	}

	status := http.StatusOK
	for _, entry := range aiStatus {
		if model, ok := entry.(map[string]any); ok {
			if available, ok := model["available"].(bool); ok && !available {
				response["status"] = "degraded"
				status = http.StatusServiceUnavailable
				break
			}
		}
	}

	writeJSON(w, status, response, s.Logger)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "infiniteats",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_file_size_bytes":    s.MaxFileSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.Sessions != nil {
		response["sessions"] = s.Sessions.Stats()
	}

	writeJSON(w, http.StatusOK, response, s.Logger)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *errors.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.LogError(err, "Failed to encode response")
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message}, nil)
}

// writeAppError maps err to a status code and writes a safe message. The
// cause of gateway and decode failures stays in the log.
func (s *Server) writeAppError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed")
	}
	resp := ErrorResponse{Error: http.StatusText(status), Message: userMessage(err, fallback)}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		resp.Code = appErr.Code
	}
	writeJSON(w, status, resp, s.Logger)
}

func userMessage(err error, fallback string) string {
	if stderrors.Is(err, session.ErrBusy) || stderrors.Is(err, session.ErrAbandoned) {
		return err.Error()
	}
	return errors.UserMessage(err, fallback)
}

func statusFor(err error) int {
	if stderrors.Is(err, session.ErrBusy) || stderrors.Is(err, session.ErrAbandoned) {
		return http.StatusConflict
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case errors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeInvalidStage:
		return http.StatusConflict
	case errors.ErrCodeAICircuitOpen:
		return http.StatusServiceUnavailable
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeGateway, errors.ErrorTypeDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
