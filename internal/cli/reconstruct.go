package cli

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/strandbio/hapgen/internal/harness"
	"github.com/strandbio/hapgen/internal/store"
)

// ReconstructOptions holds flags for the reconstruct command.
type ReconstructOptions struct {
	DBPath   string // run-log database; empty disables logging
	Parallel int    // concurrent scenario limit
}

// NewReconstructCommand creates the reconstruct command.
func NewReconstructCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconstructOptions{}

	cmd := &cobra.Command{
		Use:   "reconstruct <scenario.yaml|dir>...",
		Short: "Reconstruct haplotypes for one or more scenarios",
		Long: `Reconstruct candidate haplotypes for each scenario file.

Scenarios are independent regions and run concurrently; output order
follows the argument order regardless of completion order. A region that
hits a complexity cap reports a fallback rather than failing the command.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconstruct(cmd.Context(), rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "log runs to this SQLite database")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 4, "max concurrently reconstructed scenarios")

	return cmd
}

func runReconstruct(ctx context.Context, rootOpts *RootOptions, opts *ReconstructOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	paths, err := CollectScenarioPaths(args)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Reconstructing %d scenario(s)", len(paths))

	var runLog *store.Store
	if opts.DBPath != "" {
		runLog, err = store.Open(opts.DBPath)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "open run log", err)
		}
		defer runLog.Close()
	}

	// Scenarios are independent regions; reconstruct them concurrently
	// but keep results in argument order.
	scenarios := make([]*harness.Scenario, len(paths))
	results := make([]*harness.Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scenario, err := LoadScenarioFile(path)
			if err != nil {
				return err
			}
			result, err := harness.Run(scenario)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			scenarios[i], results[i] = scenario, result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if le, ok := err.(*LoadError); ok {
			return reportLoadError(formatter, le)
		}
		_ = formatter.Error(ErrCodeReconstruct, err.Error(), nil)
		return WrapExitError(ExitFailure, "reconstruction failed", err)
	}

	// Run-log writes happen sequentially after the parallel phase so IDs
	// are assigned in output order.
	if runLog != nil {
		for i, result := range results {
			if err := logRun(ctx, runLog, scenarios[i], result); err != nil {
				_ = formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitCommandError, "log run", err)
			}
		}
	}

	return outputResults(formatter, results)
}

func logRun(ctx context.Context, runLog *store.Store, scenario *harness.Scenario, result *harness.Result) error {
	span := harness.SpanSpec{
		Start: scenario.Reference.Start,
		End:   scenario.Reference.Start + len(scenario.Reference.Bases) - 1,
	}
	if scenario.CallingSpan != nil {
		span = *scenario.CallingSpan
	}

	rec := store.RunRecord{
		ID:        store.NewRunID(),
		Scenario:  result.Scenario,
		Contig:    scenario.Reference.Contig,
		SpanStart: span.Start,
		SpanEnd:   span.End,
		Mode:      result.Mode,
		Fallback:  result.Fallback,
	}
	for _, h := range result.Haplotypes {
		rec.Haplotypes = append(rec.Haplotypes, store.HaplotypeRecord{
			Bases:      h.Bases,
			Cigar:      h.Cigar,
			Ref:        h.Ref,
			UseRef:     h.UseRef,
			Determined: h.Determined,
			Ambiguity:  decodeAmbiguity(h.Ambiguity),
		})
	}
	return runLog.WriteRun(ctx, rec)
}

// decodeAmbiguity turns the trace's hex ambiguity string back into raw
// code bytes for storage. Traces are produced by this program, so a decode
// failure cannot happen; an empty slice keeps the row well formed if the
// string is empty.
func decodeAmbiguity(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

func outputResults(formatter *OutputFormatter, results []*harness.Result) error {
	if formatter.Format == "json" {
		return formatter.Success(results)
	}

	for _, r := range results {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", r.Scenario, r.Mode)
		if r.Fallback != "" {
			fmt.Fprintf(formatter.Writer, "  fallback: %s\n", r.Fallback)
			continue
		}
		for _, h := range r.Haplotypes {
			line := h.Bases
			if h.Display != "" {
				line = h.Display
			}
			fmt.Fprintf(formatter.Writer, "  %-20s %s", line, h.Cigar)
			switch {
			case h.Ref:
				fmt.Fprint(formatter.Writer, "  (ref)")
			case h.UseRef:
				fmt.Fprintf(formatter.Writer, "  ref at %s", h.Determined)
			case h.Determined != "":
				fmt.Fprintf(formatter.Writer, "  %s", h.Determined)
			}
			fmt.Fprintln(formatter.Writer)
		}
	}
	return nil
}

func reportLoadError(formatter *OutputFormatter, err error) error {
	if le, ok := err.(*LoadError); ok {
		_ = formatter.Error(le.Code, le.Message, le.Path)
		return WrapExitError(ExitCommandError, le.Path, err)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "load scenarios", err)
}
