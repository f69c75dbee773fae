package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mweller/operant/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a current-format config file",
		Long: `Validate a current-format session config without running it.

Checks the document against the structural schema plus semantic rules
(duplicate input IDs, required binding sections). Legacy-format configs are
not validated; the normalizer migrates them at run time.

Exit codes:
  0 - Config is valid
  1 - Validation errors found
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}

	formatter.VerboseLog("Validating %s (%d bytes)", configPath, len(raw))

	errs := schema.Validate(raw)
	if len(errs) == 0 {
		if opts.Format == "json" {
			if err := formatter.Success(ValidationResult{Valid: true}); err != nil {
				return err
			}
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Config is valid.")
		return nil
	}

	if opts.Format == "json" {
		if err := formatter.Success(ValidationResult{Valid: false, Errors: errs}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Config has %d error(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e.Error())
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
}
