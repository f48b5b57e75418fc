package cli

import (
	"fmt"
	"path/filepath"

	"infiniteats/internal/ai"
	"infiniteats/internal/common"
	"infiniteats/internal/session"
	"infiniteats/internal/types"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <resume>",
	Short: "Score a resume, then rewrite it with the missing keywords",
	Long: `Run the analysis, then rewrite the resume into a structured document
that works the missing keywords in. Both results are printed.

With --export-dir the rewritten resume is also saved there as
<Full_Name>_Resume.json.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: optimizeFlags.preRun,
	RunE:    runOptimize,
}

var (
	optimizeFlags = &resumeFlags{}
	exportDir     string
)

func init() {
	optimizeFlags.register(optimizeCmd)
	optimizeCmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory to save the rewritten resume as JSON")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	service, err := ai.NewService(ctx, cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	result, err := common.RunResumeCommand(ctx, logger, optimizeFlags.output,
		optimizeFlags.input(cmd, args), optimizer(service))
	if err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}

	if exportDir != "" {
		path, err := exportDocument(exportDir, result.Document, common.NewFileProcessor(logger))
		if err != nil {
			return err
		}
		logger.Info("Rewritten resume exported", "file", path)
	}

	logger.Info("Resume optimization completed successfully",
		"score", result.Analysis.Score,
		"missing_keywords", len(result.Analysis.MissingKeywords))
	return nil
}

// exportDocument writes doc to dir under its export filename and returns
// the path.
func exportDocument(dir string, doc *types.ResumeDocument, fp *common.FileProcessor) (string, error) {
	body, err := session.ExportJSON(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode resume: %w", err)
	}
	path := filepath.Join(dir, session.ExportFilename(doc.FullName))
	if err := fp.WriteFile(path, body); err != nil {
		return "", err
	}
	return path, nil
}
