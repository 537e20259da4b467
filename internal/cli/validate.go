package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChristianJusjong/FishLog-sub000/internal/fixtures"
	"github.com/ChristianJusjong/FishLog-sub000/internal/harness"
)

// Document kinds recognised by validate.
const (
	KindFixtures = "fixtures"
	KindScenario = "scenario"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	File   string                     `json:"file"`
	Kind   string                     `json:"kind"`
	Valid  bool                       `json:"valid"`
	Errors []fixtures.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a fixtures or scenario file without touching the database",
		Long: `Validate a fixtures file or a harness scenario file.

A document with clock, steps or assertions keys is treated as a scenario;
anything else as fixtures. Every problem is reported, not only the first.

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - File could not be read`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return formatter.Fail(err, ErrCodeNotFound, ExitCommandError, nil)
	}

	result := ValidationResult{File: path, Kind: documentKind(data)}
	var verr error
	if result.Kind == KindScenario {
		_, verr = harness.ParseScenario(data)
	} else {
		var doc *fixtures.Document
		doc, verr = fixtures.Parse(data)
		if verr == nil {
			if errs := doc.Validate(); len(errs) > 0 {
				verr = errs
			}
		}
	}

	if verr != nil {
		var verrs fixtures.ValidationErrors
		if errors.As(verr, &verrs) {
			result.Errors = verrs
		} else {
			result.Errors = []fixtures.ValidationError{{Field: "document", Message: verr.Error(), Code: fixtures.ErrSchema}}
		}
	}
	result.Valid = len(result.Errors) == 0
	formatter.VerboseLog("validated %s as %s", path, result.Kind)

	if err := formatter.Render(result, func(w io.Writer) {
		if result.Valid {
			fmt.Fprintf(w, "✓ %s is a valid %s document\n", path, result.Kind)
			return
		}
		fmt.Fprintf(w, "✗ %s: %d problem(s)\n", path, len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}); err != nil {
		return err
	}

	if !result.Valid {
		return &ExitError{Code: ExitFailure, Message: "validation failed", reported: true}
	}
	return nil
}

// documentKind sniffs the top-level keys of a YAML document.
func documentKind(data []byte) string {
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return KindFixtures
	}
	for _, key := range []string{"clock", "steps", "assertions"} {
		if _, ok := top[key]; ok {
			return KindScenario
		}
	}
	return KindFixtures
}
