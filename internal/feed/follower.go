package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Follower polls a contest's feed repeatedly, remembering the newest
// validatedAt it has delivered.
//
// The watermark lives in memory only. An approval committed with a
// validatedAt older than the watermark is not delivered, and when more than
// the feed limit arrive between two polls only the newest are.
//
// Thread-safety: Poll is safe for concurrent use via internal mutex.
type Follower struct {
	feed      *Feed
	contestID string
	logger    *slog.Logger

	mu        sync.Mutex
	watermark time.Time
}

// NewFollower creates a follower starting at since. A zero since starts at
// the feed's default window.
func NewFollower(f *Feed, contestID string, since time.Time) *Follower {
	return &Follower{
		feed:      f,
		contestID: contestID,
		logger:    f.logger,
		watermark: since,
	}
}

// Watermark returns the newest validatedAt delivered so far.
func (fl *Follower) Watermark() time.Time {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.watermark
}

// Poll fetches updates newer than the watermark and advances it.
func (fl *Follower) Poll(ctx context.Context) ([]Update, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	updates, err := fl.feed.PollUpdates(ctx, fl.contestID, fl.watermark)
	if err != nil {
		return nil, err
	}
	for _, u := range updates {
		if u.ValidatedAt.After(fl.watermark) {
			fl.watermark = u.ValidatedAt
		}
	}
	return updates, nil
}

// Run polls on schedule until ctx is cancelled, passing each non-empty
// batch to handle. schedule accepts cron expressions with seconds and
// descriptors such as "@every 15s". Poll errors are logged and polling
// continues.
func (fl *Follower) Run(ctx context.Context, schedule string, handle func([]Update)) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err := c.AddFunc(schedule, func() {
		updates, err := fl.Poll(ctx)
		if err != nil {
			if ctx.Err() == nil {
				fl.logger.Warn("feed poll failed",
					"contest_id", fl.contestID,
					"error", err)
			}
			return
		}
		if len(updates) > 0 {
			handle(updates)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	fl.logger.Info("following contest feed",
		"contest_id", fl.contestID,
		"schedule", schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	fl.logger.Info("stopped following contest feed", "contest_id", fl.contestID)
	return nil
}
