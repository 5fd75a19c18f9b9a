package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strandbio/hapgen/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	DBPath string
	Limit  int
}

// RunSummary is one run row in list output.
type RunSummary struct {
	ID       string `json:"id"`
	Scenario string `json:"scenario"`
	Region   string `json:"region"`
	Mode     string `json:"mode"`
	Fallback string `json:"fallback,omitempty"`
	Created  string `json:"created"`
}

// NewRunsCommand creates the runs command, listing the run log.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:           "runs",
		Short:         "List logged reconstruction runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "run-log SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "max runs to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(cmd *cobra.Command, rootOpts *RootOptions, opts *RunsOptions) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	runLog, err := store.Open(opts.DBPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open run log", err)
	}
	defer runLog.Close()

	runs, err := runLog.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, RunSummary{
			ID:       r.ID,
			Scenario: r.Scenario,
			Region:   fmt.Sprintf("%s:%d-%d", r.Contig, r.SpanStart, r.SpanEnd),
			Mode:     r.Mode,
			Fallback: r.Fallback,
			Created:  r.CreatedAt,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs logged")
		return nil
	}
	for _, s := range summaries {
		status := s.Mode
		if s.Fallback != "" {
			status = "fallback:" + s.Fallback
		}
		fmt.Fprintf(formatter.Writer, "%s  %-24s %-18s %s\n", s.ID, s.Scenario, s.Region, status)
	}
	return nil
}
