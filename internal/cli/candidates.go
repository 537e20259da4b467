package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChristianJusjong/FishLog-sub000/internal/validation"
)

// NewCandidatesCommand creates the candidates command.
func NewCandidatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <contest-id>",
		Short: "List catches awaiting or past review for a contest",
		Long: `List every catch eligible for a contest, newest first, with its current
validation status, social counters and photo metadata reconciliation.

Example:
  fishlog candidates jan-pike
  fishlog candidates jan-pike --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCandidates(rootOpts, args[0], cmd)
		},
	}
}

func runCandidates(opts *RootOptions, contestID string, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd)

	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err, ErrCodeConfig, ExitCommandError, nil)
	}
	defer a.close()

	cands, err := a.workflow.ListCandidates(cmd.Context(), contestID)
	if err != nil {
		return formatter.Fail(err, ErrCodeGeneric, ExitFailure, nil)
	}

	return formatter.Render(cands, func(w io.Writer) {
		writeCandidates(w, cands)
	})
}

func writeCandidates(w io.Writer, cands []validation.Candidate) {
	if len(cands) == 0 {
		fmt.Fprintln(w, "No candidates.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATCH\tOWNER\tSPECIES\tWEIGHT\tCREATED\tSTATUS\tLIKES\tCOMMENTS\tSIGNALS")
	for _, c := range cands {
		signals := make([]string, len(c.Reconciliation.Signals))
		for i, s := range c.Reconciliation.Signals {
			signals[i] = string(s)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			c.Catch.ID,
			displayName(c.Catch.Owner.ID, c.Catch.Owner.Name),
			c.Catch.Species,
			formatWeight(c.Catch.WeightKg),
			c.Catch.CreatedAt.Format(time.RFC3339),
			c.Status(),
			c.Social.Likes,
			c.Social.Comments,
			strings.Join(signals, ","),
		)
	}
	tw.Flush()
}

func displayName(id, name string) string {
	if name == "" {
		return id
	}
	return name
}

func formatWeight(kg *float64) string {
	if kg == nil {
		return "-"
	}
	return fmt.Sprintf("%.3fkg", *kg)
}
