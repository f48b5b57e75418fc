package cli

import (
	"context"

	"infiniteats/internal/config"
	"infiniteats/internal/errors"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "infiniteats",
	Short: "Score a resume against a job and rewrite it for ATS filters",
	Long: `InfiniteATS scores a resume against a job description or a target role
the way an applicant tracking system would, lists the keywords it is missing,
and rewrites it into a structured resume that covers them.

Run 'infiniteats serve' for the browser workflow with editing and export.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger available to every
// subcommand through the context.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
