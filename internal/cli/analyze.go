package cli

import (
	"fmt"

	"infiniteats/internal/ai"
	"infiniteats/internal/common"
	"infiniteats/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume>",
	Short: "Score a resume against a job description or role",
	Long: `Score a resume (PDF or text file) against a job target the way an
applicant tracking system would.

The job target is one of:
  --job <file>       a job description file
  --job-text <text>  a job description given inline
  --role <role>      a role from the catalog

The report includes the 0-100 score, a summary, matching and missing
keywords, formatting issues and content recommendations.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: analyzeFlags.preRun,
	RunE:    runAnalyze,
}

var analyzeFlags = &resumeFlags{}

func init() {
	analyzeFlags.register(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	service, err := ai.NewService(ctx, cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	result, err := common.RunResumeCommand[*types.AnalysisResult](ctx, logger, analyzeFlags.output,
		analyzeFlags.input(cmd, args), analyzer(service))
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	logger.Info("Resume analysis completed successfully", "score", result.Score)
	return nil
}
