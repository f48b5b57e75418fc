package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"infiniteats/internal/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string // empty: served by the main server
}

// SetupPrometheusExporter creates a Prometheus reader backed by its own
// registry, and the handler that serves it.
func SetupPrometheusExporter(config PrometheusConfig) (metric.Reader, http.Handler, error) {
	if !config.Enabled {
		return nil, nil, nil
	}

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return exporter, handler, nil
}

// StartPrometheusServer serves handler on a dedicated port and returns its
// shutdown function.
func StartPrometheusServer(handler http.Handler, endpoint, port string) func(context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(endpoint, handler)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Prometheus server error: %v\n", err)
		}
	}()

	return server.Shutdown
}

// GetPrometheusConfig creates Prometheus configuration from provided config
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg != nil {
		return PrometheusConfig{
			Enabled:  cfg.Observability.Prometheus.Enabled,
			Endpoint: cfg.Observability.Prometheus.Endpoint,
			Port:     cfg.Observability.Prometheus.Port,
		}
	}
	return PrometheusConfig{Enabled: true, Endpoint: "/metrics"}
}
