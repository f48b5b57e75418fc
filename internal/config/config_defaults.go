package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.timeout", time.Duration(0))
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.temperature", 0.2)

	// Scoring should be near-deterministic; rewriting may vary.
	v.SetDefault("ai.analyze.temperature", 0.2)
	v.SetDefault("ai.rewrite.temperature", 0.4)

	for _, op := range []string{OperationAnalyze, OperationRewrite} {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", false)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 5)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	v.SetDefault("prompts.analyzeFile", "")
	v.SetDefault("prompts.rewriteFile", "")
	v.SetDefault("prompts.watch", false)
	v.SetDefault("prompts.debounceDelay", 500*time.Millisecond)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	// Long enough for one model call
	v.SetDefault("server.writeTimeout", 150*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 12*1024*1024)
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 20)
	v.SetDefault("server.rateLimit.burstCapacity", 5)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.idleTTL", time.Hour)

	v.SetDefault("session.idleTimeout", 30*time.Minute)
	v.SetDefault("session.maxSessions", 1000)
	v.SetDefault("session.cookieName", "infiniteats_session")
	v.SetDefault("session.cookieSecure", false)

	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "infiniteats")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackEdits", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackExport", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackSessions", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}

// Default returns a configuration built from defaults only, without reading
// files or the environment. Used by tests and by commands that run before
// a config file exists.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err) // defaults are static
	}
	cfg.applyFallbacks()
	cfg.prompts = NewPromptSet()
	return &cfg
}
