package fixtures

import (
	"context"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// Writer receives facts. store.Store implements it.
type Writer interface {
	PutUser(ctx context.Context, u contest.User) error
	PutEvent(ctx context.Context, ev contest.Event) error
	AddParticipant(ctx context.Context, p contest.Participant) error
	PutContest(ctx context.Context, c contest.Contest) error
	PutCatch(ctx context.Context, c contest.Catch) error
	SetSocialCounts(ctx context.Context, catchID string, counts contest.SocialCounts) error
}

// Summary counts what Seed wrote.
type Summary struct {
	Users        int `json:"users"`
	Events       int `json:"events"`
	Participants int `json:"participants"`
	Contests     int `json:"contests"`
	Catches      int `json:"catches"`
}

// Seed writes facts in dependency order. Writing the same facts twice
// leaves the store unchanged.
func Seed(ctx context.Context, w Writer, f Facts) (Summary, error) {
	var sum Summary
	for _, u := range f.Users {
		if err := w.PutUser(ctx, u); err != nil {
			return sum, err
		}
		sum.Users++
	}
	for _, ev := range f.Events {
		if err := w.PutEvent(ctx, ev); err != nil {
			return sum, err
		}
		sum.Events++
	}
	for _, p := range f.Participants {
		if err := w.AddParticipant(ctx, p); err != nil {
			return sum, err
		}
		sum.Participants++
	}
	for _, c := range f.Contests {
		if err := w.PutContest(ctx, c); err != nil {
			return sum, err
		}
		sum.Contests++
	}
	for _, c := range f.Catches {
		if err := w.PutCatch(ctx, c); err != nil {
			return sum, err
		}
		if counts, ok := f.Social[c.ID]; ok {
			if err := w.SetSocialCounts(ctx, c.ID, counts); err != nil {
				return sum, err
			}
		}
		sum.Catches++
	}
	return sum, nil
}
