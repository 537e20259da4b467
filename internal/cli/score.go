package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChristianJusjong/FishLog-sub000/internal/scoring"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	Size int
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score <contest-id>",
		Short: "Compute a contest leaderboard",
		Long: `Rank contest participants by their approved catches using the
contest's rule (biggest_single, biggest_total or most_catches).

Example:
  fishlog score jan-total
  fishlog score jan-total --size 3 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Size, "size", 0, "number of entries (default leaderboard.size)")

	return cmd
}

func runScore(opts *ScoreOptions, contestID string, cmd *cobra.Command) error {
	formatter := formatterFor(opts.RootOptions, cmd)
	if opts.Size < 0 {
		return formatter.Fail(NewExitError(ExitCommandError, "--size must not be negative"), ErrCodeInvalidArg, ExitCommandError, nil)
	}

	a, err := openApp(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err, ErrCodeConfig, ExitCommandError, nil)
	}
	defer a.close()

	engine := a.scoring
	if opts.Size > 0 {
		engine = scoring.New(a.store, scoring.WithSize(opts.Size), scoring.WithLogger(a.logger))
	}

	lb, err := engine.Score(cmd.Context(), contestID)
	if err != nil {
		return formatter.Fail(err, ErrCodeGeneric, ExitFailure, nil)
	}

	return formatter.Render(lb, func(w io.Writer) {
		writeLeaderboard(w, lb)
	})
}

func writeLeaderboard(w io.Writer, lb scoring.Leaderboard) {
	header := fmt.Sprintf("%s (%s", lb.ContestID, lb.Rule)
	if lb.SpeciesFilter != "" {
		header += ", " + lb.SpeciesFilter
	}
	fmt.Fprintf(w, "%s) - %d participants, %d approved catches\n",
		header, lb.TotalParticipants, lb.TotalApprovedCatches)
	if len(lb.Entries) == 0 {
		fmt.Fprintln(w, "No approved catches yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tSCORE\tDETAILS\tCATCH")
	for _, e := range lb.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.Rank,
			displayName(e.User.ID, e.User.Name),
			strconv.FormatFloat(e.Score, 'f', -1, 64),
			e.Details,
			e.Catch.ID)
	}
	tw.Flush()
}
