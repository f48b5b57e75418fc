package ai

import (
	"fmt"
	"strings"

	"infiniteats/internal/config"
	"infiniteats/internal/errors"
	"infiniteats/internal/types"

	"google.golang.org/genai"
)

const (
	// maxInputChars caps resume text and job descriptions sent to the model.
	maxInputChars = 15000
	// minDescriptionChars is the length a trimmed description must exceed
	// before it is preferred over the role.
	minDescriptionChars = 20

	fallbackRole = "General Professional"

	MsgResumeMissing    = "Please provide your resume (Upload PDF or Paste Text)."
	MsgJobTargetMissing = "Please provide a Job Description or select a Target Role."
)

// Request is one schema-constrained model call.
type Request struct {
	Operation   string
	Parts       []*genai.Part
	Schema      *genai.Schema
	Temperature float32
}

// ValidateInputs checks that both inputs are present. The resume is checked
// first and only the first failure is reported.
func ValidateInputs(resume types.ResumeInput, job types.JobContext) error {
	if resume.IsEmpty() {
		return errors.NewValidationError(errors.ErrCodeResumeMissing, MsgResumeMissing, nil)
	}
	if job.IsEmpty() {
		return errors.NewValidationError(errors.ErrCodeJobTargetMissing, MsgJobTargetMissing, nil)
	}
	return nil
}

// JobContextString renders the job target for the instruction text. A
// description longer than 20 characters wins over the role.
func JobContextString(job types.JobContext) string {
	if desc := strings.TrimSpace(job.Description); len([]rune(desc)) > minDescriptionChars {
		return "JOB DESCRIPTION:\n" + truncateRunes(job.Description, maxInputChars)
	}
	role := job.Role
	if role == "" {
		role = fallbackRole
	}
	return "TARGET ROLE: " + role +
		"\n(No specific Job Description provided. Evaluate based on industry standards for this role.)"
}

// ResumeParts returns the resume content part: the file bytes tagged with
// their media type, or the pasted text.
func ResumeParts(resume types.ResumeInput) []*genai.Part {
	if resume.HasFile() {
		return []*genai.Part{genai.NewPartFromBytes(resume.File.Data, resume.File.MimeType)}
	}
	return []*genai.Part{genai.NewPartFromText("RESUME TEXT:\n" + truncateRunes(resume.Text, maxInputChars))}
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// PromptBuilder assembles requests from templates and per-operation
// temperatures.
type PromptBuilder struct {
	prompts            *config.PromptSet
	analyzeTemperature float32
	rewriteTemperature float32
}

func NewPromptBuilder(cfg *config.Config) *PromptBuilder {
	analyze := cfg.GetAnalyzeConfig()
	rewrite := cfg.GetRewriteConfig()
	return &PromptBuilder{
		prompts:            cfg.PromptSet(),
		analyzeTemperature: *analyze.Temperature,
		rewriteTemperature: *rewrite.Temperature,
	}
}

// BuildAnalysisRequest builds the analysis call: resume part, then the
// instruction embedding the job context.
func (b *PromptBuilder) BuildAnalysisRequest(resume types.ResumeInput, job types.JobContext) Request {
	instruction := fmt.Sprintf(resolvePrompt(b.prompts, config.OperationAnalyze), JobContextString(job))
	return Request{
		Operation:   config.OperationAnalyze,
		Parts:       append(ResumeParts(resume), genai.NewPartFromText(instruction)),
		Schema:      AnalysisSchema(),
		Temperature: b.analyzeTemperature,
	}
}

// BuildRewriteRequest builds the rewrite call. The missing keywords are
// joined with ", " into the instruction.
func (b *PromptBuilder) BuildRewriteRequest(resume types.ResumeInput, job types.JobContext, missingKeywords []string) Request {
	instruction := fmt.Sprintf(resolvePrompt(b.prompts, config.OperationRewrite),
		strings.Join(missingKeywords, ", "), JobContextString(job))
	return Request{
		Operation:   config.OperationRewrite,
		Parts:       append(ResumeParts(resume), genai.NewPartFromText(instruction)),
		Schema:      ResumeDocumentSchema(),
		Temperature: b.rewriteTemperature,
	}
}
