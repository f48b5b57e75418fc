package common

import (
	"context"

	"infiniteats/internal/errors"
	"infiniteats/internal/types"
)

// OperationFunc runs a model-backed operation on loaded inputs.
type OperationFunc[Output any] func(ctx context.Context, resume types.ResumeInput, job types.JobContext) (Output, error)

// CommandInput is what a resume command reads from the command line.
type CommandInput struct {
	ResumePath  string
	Job         JobSource
	MaxFileSize int64
}

// RunResumeCommand loads the resume and job target, runs op and writes the
// formatted result. The raw result is returned for follow-up steps.
func RunResumeCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	input CommandInput,
	op OperationFunc[Output],
) (Output, error) {
	var zero Output
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	resume, err := fileProcessor.ReadResume(input.ResumePath, input.MaxFileSize)
	if err != nil {
		return zero, err
	}
	job, err := fileProcessor.ResolveJob(input.Job)
	if err != nil {
		return zero, err
	}

	logger.Info("Running resume command",
		"resume", input.ResumePath,
		"resume_is_pdf", resume.HasFile(),
		"job_from_description", job.Description != "",
		"role", job.Role,
		"format", cmdConfig.OutputFormat)

	result, err := op(ctx, resume, job)
	if err != nil {
		return zero, err
	}

	return result, outputHandler.HandleOutput(result, cmdConfig)
}
