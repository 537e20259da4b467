package contest

import (
	"strings"
	"time"
)

// Scope is a resolved contest: the contest, its event and the event's
// participant population.
type Scope struct {
	Contest      Contest
	Event        Event
	Participants []Participant

	members map[string]struct{}
}

// NewScope builds a Scope and indexes its participants by user id.
func NewScope(c Contest, ev Event, participants []Participant) Scope {
	members := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		members[p.UserID] = struct{}{}
	}
	return Scope{
		Contest:      c,
		Event:        ev,
		Participants: participants,
		members:      members,
	}
}

// IsParticipant reports whether userID belongs to the population.
func (s Scope) IsParticipant(userID string) bool {
	_, ok := s.members[userID]
	return ok
}

// InWindow reports whether t lies within the event window, both ends inclusive.
func (s Scope) InWindow(t time.Time) bool {
	return !t.Before(s.Event.StartAt) && !t.After(s.Event.EndAt)
}

// MatchesSpecies applies the contest's species filter.
// The comparison is an exact, case-sensitive string match.
func (s Scope) MatchesSpecies(species string) bool {
	return s.Contest.SpeciesFilter == "" || species == s.Contest.SpeciesFilter
}

// Admits reports whether c is a candidate catch for this contest.
func (s Scope) Admits(c Catch) bool {
	return !c.IsDraft &&
		s.IsParticipant(c.Owner.ID) &&
		s.InWindow(c.CreatedAt) &&
		s.MatchesSpecies(c.Species)
}

// ValidateDecision checks a decision before it is appended.
// A rejection requires a reason that is not blank.
func ValidateDecision(d Decision) error {
	if strings.TrimSpace(d.ValidatorID) == "" {
		return NewInvalidDecision("validator id is required")
	}
	if _, err := ParseStatus(string(d.Status)); err != nil {
		return err
	}
	if d.Status == StatusRejected && strings.TrimSpace(d.Reason) == "" {
		return NewInvalidDecision("reason is required when rejecting a catch")
	}
	return nil
}
