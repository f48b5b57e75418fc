package server

import (
	"fmt"
	"io"
	"os"
)

// displayServerInfo prints the endpoints and the security posture.
func (s *Server) displayServerInfo() {
	s.writeServerInfo(os.Stdout)
}

func (s *Server) writeServerInfo(out io.Writer) {
	scheme := "http"
	if s.TLSConfig.Mode == "server" {
		scheme = "https"
	}
	fmt.Fprintf(out, "InfiniteATS listening on %s://%s:%s\n", scheme, s.Host, s.Port)

	fmt.Fprintln(out, "Available endpoints:")
	fmt.Fprintln(out, "  GET  /                  - Optimizer UI")
	fmt.Fprintln(out, "  GET  /health            - Health check")
	fmt.Fprintln(out, "  GET  /stats             - Server statistics")
	if endpoint, handler := s.Obs.MetricsHandler(); handler != nil {
		fmt.Fprintf(out, "  GET  %-18s - Prometheus metrics\n", endpoint)
	}
	fmt.Fprintln(out, "  GET  /api/roles         - Role catalog")
	fmt.Fprintln(out, "  POST /api/analyze       - Score a resume (API key)")
	fmt.Fprintln(out, "  POST /api/optimize      - Score and rewrite a resume (API key)")

	if len(s.APIKeys) > 0 {
		fmt.Fprintf(out, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	} else {
		fmt.Fprintln(out, "API authentication: DISABLED (no API keys configured)")
		fmt.Fprintln(out, "WARNING: API endpoints are publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		fmt.Fprintf(out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(out, "Request size limit: DISABLED")
	}

	if s.RateLimiter != nil {
		fmt.Fprintf(out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Fprintln(out, "  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Fprintln(out, "  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Fprintln(out, "Rate limiting: DISABLED")
	}
}
