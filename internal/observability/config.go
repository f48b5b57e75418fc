package observability

import (
	"infiniteats/internal/config"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "infiniteats",
			ServiceVersion: version,
			Enabled:        true,
			SampleRate:     1.0,
			Prometheus:     GetPrometheusConfig(nil),
		}
	}

	obsConfig := cfg.Observability

	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obsConfig.SampleRate
	if obsConfig.Tracing.SampleRate > 0 {
		sampleRate = obsConfig.Tracing.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:    obsConfig.ServiceName,
		ServiceVersion: serviceVersion,
		Enabled:        obsConfig.Enabled,
		ConsoleOutput:  obsConfig.ConsoleOutput || obsConfig.Console.Enabled,
		PrettyPrint:    obsConfig.Console.PrettyPrint,
		SampleRate:     sampleRate,
		Tracing:        obsConfig.Tracing.Enabled,
		Prometheus:     GetPrometheusConfig(cfg),
	}
}
