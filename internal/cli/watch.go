package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ChristianJusjong/FishLog-sub000/internal/feed"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Schedule string
	Since    string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <contest-id>",
		Short: "Follow a contest's approvals until interrupted",
		Long: `Poll a contest's feed on a schedule and print each new approval.

The schedule accepts cron expressions with a seconds field and descriptors
such as "@every 15s" (default watch.schedule). With --format json every
update is written as one JSON object per line.

Example:
  fishlog watch jan-pike
  fishlog watch jan-pike --schedule "*/5 * * * * *"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schedule, "schedule", "", "poll schedule (default watch.schedule)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "RFC 3339 start (default: last feed window)")

	return cmd
}

func runWatch(opts *WatchOptions, contestID string, cmd *cobra.Command) error {
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

	schedule := opts.Schedule
	if schedule == "" {
		schedule = a.cfg.Watch.Schedule
	}

	// Fail fast on an unknown contest instead of logging on every tick.
	if _, err := a.store.Scope(cmd.Context(), contestID); err != nil {
		return formatter.Fail(err, ErrCodeGeneric, ExitFailure, nil)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	enc := json.NewEncoder(w)
	follower := feed.NewFollower(a.feed, contestID, since)
	err = follower.Run(ctx, schedule, func(updates []feed.Update) {
		// Oldest first so the stream reads chronologically.
		for i := len(updates) - 1; i >= 0; i-- {
			if opts.Format == "json" {
				_ = enc.Encode(updates[i])
				continue
			}
			writeUpdate(w, updates[i])
		}
	})
	if err != nil {
		return formatter.Fail(err, ErrCodeInvalidArg, ExitCommandError, nil)
	}
	return nil
}
