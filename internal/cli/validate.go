package cli

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/regulumdb/regulumdb/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Classes int                        `json:"classes"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <frames>",
		Short: "Validate a frame document",
		Long: `Compile a frame document (a CUE or JSON file, or a directory of CUE
files) and check it for dangling class references, bad cardinalities,
inheritance cycles and malformed enums. Every problem is reported, not just
the first.

Exit codes:
  0 - Frames are valid
  1 - Frames compiled but failed validation
  2 - Frames could not be loaded or compiled`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, framesPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	frames, err := LoadFrames(framesPath)
	if err != nil {
		code, msg := loadCode(err, ErrCodeLoadFailed)
		return formatter.Fail(ExitCommandError, code, msg)
	}
	formatter.VerboseLog("Compiled %d definition(s) from %s", len(frames.Names()), framesPath)

	errs := validationErrors(compiler.ValidateFrames(frames))
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Classes: len(frames.Names())})
	}
	fmt.Fprintln(formatter.Writer, "✓ Frames valid")
	return nil
}

// validationErrors flattens the aggregate ValidateFrames returns.
func validationErrors(err error) []compiler.ValidationError {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return []compiler.ValidationError{{Field: "frames", Message: err.Error(), Code: ErrCodeGeneric}}
	}
	out := make([]compiler.ValidationError, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		var ve compiler.ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
			continue
		}
		out = append(out, compiler.ValidationError{Field: "frames", Message: e.Error(), Code: ErrCodeGeneric})
	}
	return out
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		})
		if err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
	}
	return exitErr
}
