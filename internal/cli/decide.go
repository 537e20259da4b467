package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// DecideOptions holds flags for the decide command.
type DecideOptions struct {
	*RootOptions
	Validator string
	Status    string
	Reason    string
}

// NewDecideCommand creates the decide command.
func NewDecideCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecideOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decide <catch-id>",
		Short: "Approve or reject a catch",
		Long: `Append a validation decision for a catch.

Decisions are never edited: a later decision supersedes earlier ones.
A rejection requires a reason.

Exit codes:
  0 - Decision recorded
  3 - Catch not found
  4 - Invalid decision (bad status, missing validator or reason)
  5 - Database unavailable

Example:
  fishlog decide b2 --validator ref --status rejected --reason "scale not visible"
  fishlog decide b2 --validator ref --status approved`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Validator, "validator", "", "id of the user recording the decision")
	cmd.Flags().StringVar(&opts.Status, "status", "", "approved|rejected")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "reason (required when rejecting)")

	return cmd
}

func runDecide(opts *DecideOptions, catchID string, cmd *cobra.Command) error {
	formatter := formatterFor(opts.RootOptions, cmd)

	a, err := openApp(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err, ErrCodeConfig, ExitCommandError, nil)
	}
	defer a.close()

	rec, err := a.workflow.Decide(cmd.Context(), catchID, opts.Validator, contest.Status(opts.Status), opts.Reason)
	if err != nil {
		return formatter.Fail(err, ErrCodeGeneric, ExitFailure, nil)
	}

	return formatter.Render(rec, func(w io.Writer) {
		fmt.Fprintf(w, "Recorded %s for catch %s by %s (id %s, seq %d)\n",
			rec.Status, rec.CatchID, displayName(rec.Validator.ID, rec.Validator.Name), rec.ID, rec.Seq)
		if rec.Reason != "" {
			fmt.Fprintf(w, "Reason: %s\n", rec.Reason)
		}
	})
}
