package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <catch-id>",
		Short: "Show every validation decision recorded for a catch",
		Long: `Show the validation history of a catch, newest first.
The first line is the catch's current status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], cmd)
		},
	}
}

func runHistory(opts *RootOptions, catchID string, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd)

	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err, ErrCodeConfig, ExitCommandError, nil)
	}
	defer a.close()

	recs, err := a.workflow.History(cmd.Context(), catchID)
	if err != nil {
		return formatter.Fail(err, ErrCodeGeneric, ExitFailure, nil)
	}

	return formatter.Render(recs, func(w io.Writer) {
		if len(recs) == 0 {
			fmt.Fprintf(w, "No decisions recorded for %s.\n", catchID)
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tVALIDATED\tSTATUS\tVALIDATOR\tREASON")
		for _, r := range recs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				r.Seq,
				r.ValidatedAt.Format(time.RFC3339),
				r.Status,
				displayName(r.Validator.ID, r.Validator.Name),
				r.Reason)
		}
		tw.Flush()
	})
}
