package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// DefaultSize is the number of entries a leaderboard keeps.
const DefaultSize = 10

// CatchRef is the catch an entry displays.
type CatchRef struct {
	ID        string    `json:"id"`
	Species   string    `json:"species"`
	WeightKg  *float64  `json:"weight_kg,omitempty"`
	LengthCm  *float64  `json:"length_cm,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func refOf(c contest.Catch) CatchRef {
	return CatchRef{
		ID:        c.ID,
		Species:   c.Species,
		WeightKg:  c.WeightKg,
		LengthCm:  c.LengthCm,
		PhotoURL:  c.PhotoURL,
		CreatedAt: c.CreatedAt,
	}
}

// Entry is one ranked participant.
type Entry struct {
	Rank       int          `json:"rank"`
	User       contest.User `json:"user"`
	Score      float64      `json:"score"`
	Details    string       `json:"details"`
	CatchCount int          `json:"catch_count"`
	Catch      CatchRef     `json:"catch"`

	key decimal.Decimal
}

// Leaderboard is a ranked, truncated view of a contest.
// The totals describe the untruncated population and catch set.
type Leaderboard struct {
	ContestID            string       `json:"contest_id"`
	Rule                 contest.Rule `json:"rule"`
	SpeciesFilter        string       `json:"species_filter,omitempty"`
	Entries              []Entry      `json:"entries"`
	TotalParticipants    int          `json:"total_participants"`
	TotalApprovedCatches int          `json:"total_approved_catches"`
}

type group struct {
	user   contest.User
	count  int
	total  decimal.Decimal
	best   contest.Catch
	latest contest.Catch
}

var thousand = decimal.NewFromInt(1000)

func weightOf(c contest.Catch) decimal.Decimal {
	return decimal.NewFromFloat(c.Weight())
}

func grams(kg decimal.Decimal) int64 {
	return kg.Mul(thousand).Round(0).IntPart()
}

// Rank groups approved catches by owner and ranks owners under rule.
//
// catches must be ordered newest first; that order decides both the
// representative catch on equal weights and the order of owners with equal
// scores. The result holds at most size entries; size <= 0 means
// DefaultSize.
func Rank(rule contest.Rule, catches []contest.Catch, size int) []Entry {
	if size <= 0 {
		size = DefaultSize
	}

	var order []string
	groups := make(map[string]*group)
	for _, c := range catches {
		g, ok := groups[c.Owner.ID]
		if !ok {
			g = &group{user: c.Owner, best: c, latest: c}
			groups[c.Owner.ID] = g
			order = append(order, c.Owner.ID)
		} else if c.Weight() > g.best.Weight() {
			g.best = c
		}
		g.count++
		g.total = g.total.Add(weightOf(c))
	}

	entries := make([]Entry, 0, len(order))
	for _, id := range order {
		g := groups[id]
		e := Entry{User: g.user, CatchCount: g.count}
		switch rule {
		case contest.RuleBiggestSingle:
			e.key = weightOf(g.best)
			e.Details = fmt.Sprintf("%dg", grams(e.key))
			e.Catch = refOf(g.best)
		case contest.RuleBiggestTotal:
			e.key = g.total
			e.Details = fmt.Sprintf("%dg total", grams(e.key))
			e.Catch = refOf(g.latest)
		case contest.RuleMostCatches:
			e.key = decimal.NewFromInt(int64(g.count))
			e.Details = fmt.Sprintf("%d catches", g.count)
			e.Catch = refOf(g.latest)
		default:
			continue
		}
		e.Score = e.key.InexactFloat64()
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].key.GreaterThan(entries[j].key)
	})

	if len(entries) > size {
		entries = entries[:size]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
