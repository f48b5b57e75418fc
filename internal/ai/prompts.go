package ai

import (
	"infiniteats/internal/config"
)

// DefaultPrompts are the built-in instruction templates. The analyze
// template takes the job context; the rewrite template takes the missing
// keywords and then the job context. Literal percent signs are written %%.
var DefaultPrompts = map[string]string{
	config.OperationAnalyze: `You are an expert Applicant Tracking System (ATS) analyzer.
Analyze the following Resume against the target Job Context.

%s

Provide a strict assessment of how well the resume matches the requirements.
Identify keywords, score the match, and provide specific recommendations.`,

	config.OperationRewrite: `You are a professional Resume Writer.
Rewrite the following resume to perfectly target the Job Context provided.

Goals:
1. Incorporate these missing keywords naturally: %s.
2. Use strong action verbs.
3. Quantify achievements where possible (infer reasonable metrics if context allows, or use placeholders like [X]%%).
4. Keep the format professional and clean.
5. Ensure the Summary is punchy and relevant.

%s

Return the data in a structured JSON format that fits the schema provided.`,
}

// resolvePrompt picks the template for operation: a file override when one
// is loaded, otherwise the built-in default.
func resolvePrompt(prompts *config.PromptSet, operation string) string {
	if prompts != nil {
		if tpl, ok := prompts.Get(operation); ok {
			return tpl
		}
	}
	return DefaultPrompts[operation]
}
