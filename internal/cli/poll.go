package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChristianJusjong/FishLog-sub000/internal/feed"
)

// PollOptions holds flags for the poll command.
type PollOptions struct {
	*RootOptions
	Since string
}

// NewPollCommand creates the poll command.
func NewPollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PollOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "poll <contest-id>",
		Short: "Show recent approvals for a contest",
		Long: `Show approvals recorded strictly after --since whose catch counts for
the contest, newest first and capped at feed.limit.

Without --since the last feed.default_window (5 minutes) is shown.

Example:
  fishlog poll jan-pike
  fishlog poll jan-pike --since 2025-01-31T12:00:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Since, "since", "", "RFC 3339 lower bound (exclusive)")

	return cmd
}

func runPoll(opts *PollOptions, contestID string, cmd *cobra.Command) error {
	formatter := formatterFor(opts.RootOptions, cmd)

	since, err := parseSince(opts.Since)
	if err != nil {
		return formatter.Fail(err, ErrCodeInvalidArg, ExitCommandError, nil)
	}

	a, err := openApp(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err, ErrCodeConfig, ExitCommandError, nil)
	}
	defer a.close()

	updates, err := a.feed.PollUpdates(cmd.Context(), contestID, since)
	if err != nil {
		return formatter.Fail(err, ErrCodeGeneric, ExitFailure, nil)
	}

	return formatter.Render(updates, func(w io.Writer) {
		if len(updates) == 0 {
			fmt.Fprintln(w, "No new approvals.")
			return
		}
		for _, u := range updates {
			writeUpdate(w, u)
		}
	})
}

// parseSince parses an optional RFC 3339 timestamp; empty yields zero.
func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: must be RFC 3339", s)
	}
	return t.UTC(), nil
}

func writeUpdate(w io.Writer, u feed.Update) {
	fmt.Fprintf(w, "%s  %s approved %s's %s (%s) [%s]\n",
		u.ValidatedAt.Format(time.RFC3339),
		displayName(u.Validator.ID, u.Validator.Name),
		displayName(u.Catch.Owner.ID, u.Catch.Owner.Name),
		u.Catch.Species,
		formatWeight(u.Catch.WeightKg),
		u.Catch.ID)
}
