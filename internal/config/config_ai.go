package config

// Operation names, shared by prompt loading, metrics and logging.
const (
	OperationAnalyze = "analyze"
	OperationRewrite = "rewrite"
)

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
}

// GetAnalyzeConfig returns the AI configuration for the analysis call with
// fallback to the global config.
func (c *Config) GetAnalyzeConfig() OperationAIConfig {
	config := c.AI.Analyze
	c.applyOperationDefaults(&config)
	return config
}

// GetRewriteConfig returns the AI configuration for the rewrite call with
// fallback to the global config.
func (c *Config) GetRewriteConfig() OperationAIConfig {
	config := c.AI.Rewrite
	c.applyOperationDefaults(&config)
	return config
}

// GetOperationConfig returns the configuration for the named operation.
func (c *Config) GetOperationConfig(operation string) OperationAIConfig {
	if operation == OperationRewrite {
		return c.GetRewriteConfig()
	}
	return c.GetAnalyzeConfig()
}

// PromptSet returns the prompt overrides loaded from files. Never nil.
func (c *Config) PromptSet() *PromptSet {
	if c.prompts == nil {
		c.prompts = NewPromptSet()
	}
	return c.prompts
}
