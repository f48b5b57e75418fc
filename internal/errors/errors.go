package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeGateway    ErrorType = "gateway"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError reports bad user input. Validation errors are raised
// before any call to the model.
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

// NewGatewayError reports a failed model call, including an empty reply.
func NewGatewayError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeGateway, code, message, cause)
}

// NewDecodeError reports a model reply that is not valid JSON.
func NewDecodeError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeDecode, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func IsValidation(err error) bool     { return TypeOf(err) == ErrorTypeValidation }
func IsGatewayFailure(err error) bool { return TypeOf(err) == ErrorTypeGateway }
func IsDecodeFailure(err error) bool  { return TypeOf(err) == ErrorTypeDecode }

// UserMessage returns the message shown to a user for err. Validation
// errors carry their own message; anything else gets fallback.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Type == ErrorTypeValidation {
		return appErr.Message
	}
	return fallback
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(level slog.Level) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a structured logger writing JSON lines to w.
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	return &Logger{logger: slog.New(slog.NewJSONHandler(w, opts))}
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	return &Logger{logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}

		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}

		logArgs = append(logArgs, args...)

		l.logger.Error(message, logArgs...)
	} else {
		logArgs := append([]any{"error", err.Error()}, args...)
		l.logger.Error(message, logArgs...)
	}
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return NewLogger(slogLevel), nil
}

// Common error codes
const (
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable  = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeMissingAPIKey    = "MISSING_API_KEY"
	ErrCodeInvalidConfig    = "INVALID_CONFIG"
	ErrCodeResumeMissing    = "RESUME_MISSING"
	ErrCodeJobTargetMissing = "JOB_TARGET_MISSING"
	ErrCodeUnsupportedMedia = "UNSUPPORTED_MEDIA"
	ErrCodeFileTooLarge     = "FILE_TOO_LARGE"
	ErrCodeUnknownRole      = "UNKNOWN_ROLE"
	ErrCodeInvalidEdit      = "INVALID_EDIT"
	ErrCodeInvalidStage     = "INVALID_TRANSITION"
	ErrCodeAIServiceFailed  = "AI_SERVICE_FAILED"
	ErrCodeAIEmptyResponse  = "AI_EMPTY_RESPONSE"
	ErrCodeAICircuitOpen    = "AI_CIRCUIT_OPEN"
	ErrCodeAIParseFailed    = "AI_RESPONSE_PARSE_FAILED"
)
