package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ChristianJusjong/FishLog-sub000/internal/fixtures"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Load users, events, contests and catches from a fixtures file",
		Long: `Load facts from a fixtures file into the database.

The file is checked against the fixtures schema first; nothing is written
when it is invalid. Seeding the same file twice leaves the database
unchanged.

Example:
  fishlog seed --db ./fishlog.db testdata/contest.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd)

	facts, err := fixtures.Load(path)
	if err != nil {
		var verrs fixtures.ValidationErrors
		if errors.As(err, &verrs) {
			return formatter.Fail(err, ErrCodeInvalidDoc, ExitFailure, verrs)
		}
		return formatter.Fail(err, ErrCodeInvalidDoc, ExitCommandError, nil)
	}

	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err, ErrCodeConfig, ExitCommandError, nil)
	}
	defer a.close()

	sum, err := fixtures.Seed(cmd.Context(), a.store, facts)
	if err != nil {
		return formatter.Fail(err, ErrCodeGeneric, ExitStoreUnavailable, nil)
	}
	a.logger.Info("fixtures seeded", "path", path, "catches", sum.Catches)

	return formatter.Render(sum, func(w io.Writer) {
		fmt.Fprintf(w, "Seeded %d users, %d events, %d participants, %d contests, %d catches\n",
			sum.Users, sum.Events, sum.Participants, sum.Contests, sum.Catches)
	})
}
