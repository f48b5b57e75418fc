package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"infiniteats/internal/errors"
	"infiniteats/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// LimiterManager keeps one token bucket per client key (IP or API key).
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	done     chan struct{}
	once     sync.Once
	logger   *errors.Logger
	now      func() time.Time
}

type RateLimiter = LimiterManager

// NewRateLimiter creates a manager allowing requestsPerMin with the given
// burst. Limiters unused for idleTTL are dropped.
func NewRateLimiter(requestsPerMin, burstCapacity int, idleTTL time.Duration, logger *errors.Logger) *LimiterManager {
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}
	m := newLimiterManager(requestsPerMin, burstCapacity, idleTTL, logger)
	go m.cleanupRoutine(idleTTL / 2)
	return m
}

func newLimiterManager(requestsPerMin, burstCapacity int, idleTTL time.Duration, logger *errors.Logger) *LimiterManager {
	return &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		idleTTL:  idleTTL,
		done:     make(chan struct{}),
		logger:   logger,
		now:      time.Now,
	}
}

// GetLimiter retrieves or creates a limiter for a given key.
func (m *LimiterManager) GetLimiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = limiter
	}
	m.lastSeen[key] = m.now()

	return limiter
}

// Allow reports whether a request for key may proceed. It never blocks.
func (m *LimiterManager) Allow(key string) bool {
	return m.GetLimiter(key).Allow()
}

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"active_limiters": len(m.limiters),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
		"idle_ttl":        m.idleTTL.String(),
	}
}

func (m *LimiterManager) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup removes limiters idle for longer than idleTTL.
func (m *LimiterManager) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, lastSeen := range m.lastSeen {
		if now.Sub(lastSeen) > m.idleTTL {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
			removed++
		}
	}

	if m.logger != nil {
		m.logger.Debug("Rate limiter cleanup completed",
			"removed", removed,
			"remaining_limiters", len(m.limiters))
	}
	return removed
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (m *LimiterManager) Close() {
	m.once.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over the client's budget with 429
// and records a rate_limit_hit metric.
func (s *Server) rateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rateLimitKey := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if rateLimitKey == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(rateLimitKey) {
				s.Logger.Info("Rate limit exceeded",
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				om.RecordBusinessMetric(r.Context(), observability.MetricRateLimitHit, true,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
				w.Header().Set("Retry-After", "60")
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// requestAPIKey reads X-API-Key, falling back to a Bearer token.
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
