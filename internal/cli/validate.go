package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds per-file validation outcomes.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// FileValidation is the outcome for one scenario file.
type FileValidation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml|dir>...",
		Short: "Validate scenario files without reconstructing",
		Long: `Validate scenario YAML files against the scenario schema.

Checks schema conformance and event plausibility (alleles matching the
reference window) without running any reconstruction. Faster feedback
than reconstruct when editing scenarios.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(rootOpts *RootOptions, args []string, cmd *cobra.Command) error {
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

	result := ValidationResult{Valid: true}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		fv := FileValidation{Path: path, Valid: true}
		if _, err := LoadScenarioFile(path); err != nil {
			fv.Valid = false
			result.Valid = false
			var le *LoadError
			if errors.As(err, &le) {
				fv.Code = le.Code
				fv.Error = le.Message
			} else {
				fv.Code = ErrCodeGeneric
				fv.Error = err.Error()
			}
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(formatter.Writer, "ok    %s\n", fv.Path)
			} else {
				fmt.Fprintf(formatter.Writer, "FAIL  %s\n      %s: %s\n", fv.Path, fv.Code, fv.Error)
			}
		}
	}

	if !result.Valid {
		failed := 0
		for _, fv := range result.Files {
			if !fv.Valid {
				failed++
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d of %d file(s)", failed, len(result.Files)))
	}
	return nil
}
