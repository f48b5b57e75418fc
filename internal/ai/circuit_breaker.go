package ai

import (
	stderrors "errors"
	"fmt"

	"infiniteats/internal/config"
	"infiniteats/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// Breaker guards one operation's model calls. A nil *Breaker is valid and
// passes every call through.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[*Reply]
}

// NewBreaker returns nil when the operation's breaker is disabled.
func NewBreaker(operation string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *Breaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", operation),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation", operation,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker[*Reply](settings)}
}

// Execute runs fn under the breaker. Rejections by an open or half-open
// breaker become AI_CIRCUIT_OPEN gateway errors.
func (b *Breaker) Execute(operation string, fn func() (*Reply, error)) (*Reply, error) {
	if b == nil {
		return fn()
	}
	reply, err := b.cb.Execute(fn)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewGatewayError(errors.ErrCodeAICircuitOpen,
			"AI service temporarily unavailable", err).WithContext("operation", operation)
	}
	return reply, err
}

// Stats reports the breaker state for /health.
func (b *Breaker) Stats() map[string]any {
	if b == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled": true,
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
	}
}

// IsHealthy reports whether calls are currently let through.
func (b *Breaker) IsHealthy() bool {
	return b == nil || b.cb.State() == gobreaker.StateClosed
}
