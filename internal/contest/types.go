package contest

import (
	"fmt"
	"time"
)

// Visibility controls who can see an event.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityPublic  Visibility = "public"
)

// Rule selects how a contest aggregates a participant's approved catches.
type Rule string

const (
	RuleBiggestSingle Rule = "biggest_single"
	RuleBiggestTotal  Rule = "biggest_total"
	RuleMostCatches   Rule = "most_catches"
)

// ValidRules lists the supported contest rules.
var ValidRules = []Rule{RuleBiggestSingle, RuleBiggestTotal, RuleMostCatches}

// ParseRule converts a stored rule name into a Rule.
func ParseRule(s string) (Rule, error) {
	for _, r := range ValidRules {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown contest rule %q", s)
}

// Status is the outcome of a single validation decision.
type Status string

const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"

	// StatusUnvalidated is never stored. It is reported for catches
	// without any validation record.
	StatusUnvalidated Status = "unvalidated"
)

// ParseStatus accepts only the two decision values a validator may record.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", NewInvalidDecision(fmt.Sprintf("invalid status %q: must be %q or %q", s, StatusApproved, StatusRejected))
}

// User holds the display fields the identity provider exposes.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Event is a time-boxed competition container.
type Event struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Title      string     `json:"title"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      time.Time  `json:"end_at"`
	Visibility Visibility `json:"visibility"`
}

// Contest belongs to exactly one event.
type Contest struct {
	ID            string `json:"id"`
	EventID       string `json:"event_id"`
	Rule          Rule   `json:"rule"`
	SpeciesFilter string `json:"species_filter,omitempty"`
}

// Participant joins a user to an event.
type Participant struct {
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// GPS is a coordinate pair with optional altitude.
type GPS struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// Device describes the capturing device.
type Device struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

// Camera holds exposure settings embedded in the photo.
type Camera struct {
	ISO          *int     `json:"iso,omitempty"`
	FocalLength  *float64 `json:"focal_length,omitempty"`
	ExposureTime *float64 `json:"exposure_time,omitempty"`
	FNumber      *float64 `json:"f_number,omitempty"`
}

// Dimensions is the pixel size of the photo.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PhotoMetadata is the EXIF-derived metadata supplied by the media pipeline.
// Every field is optional.
type PhotoMetadata struct {
	GPS        *GPS        `json:"gps,omitempty"`
	CapturedAt *time.Time  `json:"captured_at,omitempty"`
	Device     *Device     `json:"device,omitempty"`
	Camera     *Camera     `json:"camera,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// Catch is a user-submitted catch record. The engine never modifies it.
type Catch struct {
	ID            string         `json:"id"`
	Owner         User           `json:"owner"`
	Species       string         `json:"species"`
	WeightKg      *float64       `json:"weight_kg,omitempty"`
	LengthCm      *float64       `json:"length_cm,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Latitude      *float64       `json:"latitude,omitempty"`
	Longitude     *float64       `json:"longitude,omitempty"`
	PhotoURL      string         `json:"photo_url,omitempty"`
	PhotoHash     string         `json:"photo_hash,omitempty"`
	PhotoMetadata *PhotoMetadata `json:"photo_metadata,omitempty"`
	IsDraft       bool           `json:"is_draft"`
}

// Weight returns the catch weight, treating a missing weight as zero.
func (c Catch) Weight() float64 {
	if c.WeightKg == nil {
		return 0
	}
	return *c.WeightKg
}

// SocialCounts are presentation counters from the social graph.
type SocialCounts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// Decision is a validator's request to record a status for a catch.
type Decision struct {
	CatchID     string
	ValidatorID string
	Status      Status
	Reason      string
}

// CatchSnapshot is the catch as it looked when a validation was recorded.
type CatchSnapshot struct {
	ID        string   `json:"id"`
	Owner     User     `json:"owner"`
	Species   string   `json:"species"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
	LengthCm  *float64 `json:"length_cm,omitempty"`
	PhotoURL  string   `json:"photo_url,omitempty"`
	PhotoHash string   `json:"photo_hash,omitempty"`
}

// ValidationRecord is one immutable entry of the validation ledger.
type ValidationRecord struct {
	ID          string        `json:"id"`
	Seq         int64         `json:"seq"`
	CatchID     string        `json:"catch_id"`
	Validator   User          `json:"validator"`
	Status      Status        `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	ValidatedAt time.Time     `json:"validated_at"`
	Catch       CatchSnapshot `json:"catch"`
}

// Supersedes reports whether r wins over other under the latest-wins rule.
func (r ValidationRecord) Supersedes(other ValidationRecord) bool {
	if !r.ValidatedAt.Equal(other.ValidatedAt) {
		return r.ValidatedAt.After(other.ValidatedAt)
	}
	return r.Seq > other.Seq
}

// CurrentStatus is the derived status of a catch.
// Record is nil when the catch is unvalidated.
type CurrentStatus struct {
	Status Status            `json:"status"`
	Record *ValidationRecord `json:"record,omitempty"`
}

// Unvalidated is the status of a catch with no validation records.
var Unvalidated = CurrentStatus{Status: StatusUnvalidated}

// StatusOf derives a CurrentStatus from the latest record, if any.
func StatusOf(rec *ValidationRecord) CurrentStatus {
	if rec == nil {
		return Unvalidated
	}
	return CurrentStatus{Status: rec.Status, Record: rec}
}

// Approved reports whether the catch currently counts for scoring.
func (s CurrentStatus) Approved() bool {
	return s.Status == StatusApproved
}
