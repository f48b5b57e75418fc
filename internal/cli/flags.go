package cli

import (
	"infiniteats/internal/common"
	"infiniteats/internal/formatters"

	"github.com/spf13/cobra"
)

// resumeFlags are shared by analyze and optimize.
type resumeFlags struct {
	output common.CommandConfig
	job    common.JobSource
}

func (f *resumeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&f.output.OutputFormat, "format", "", "Output format: json, text, or markdown")
	cmd.Flags().StringVar(&f.job.File, "job", "", "Job description file")
	cmd.Flags().StringVar(&f.job.Text, "job-text", "", "Job description text")
	cmd.Flags().StringVar(&f.job.Role, "role", "", "Target role from the catalog (see 'infiniteats roles')")
	cmd.MarkFlagsMutuallyExclusive("job", "job-text", "role")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("role", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return rolesList(), cobra.ShellCompDirectiveNoFileComp
	})
}

// preRun applies the default format and checks the flags before any file
// is read.
func (f *resumeFlags) preRun(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if f.output.OutputFormat == "" {
		f.output.OutputFormat = cfg.App.DefaultFormat
	}
	if err := common.ValidateOutputFormat(f.output.OutputFormat, cfg.App.SupportedFormats); err != nil {
		return err
	}
	return common.ValidateJobSource(f.job)
}

func (f *resumeFlags) input(cmd *cobra.Command, args []string) common.CommandInput {
	return common.CommandInput{
		ResumePath:  args[0],
		Job:         f.job,
		MaxFileSize: getConfigFromContext(cmd.Context()).App.MaxFileSize,
	}
}
