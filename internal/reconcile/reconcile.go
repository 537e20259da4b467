// Package reconcile compares the location and time a user claimed for a
// catch with the metadata embedded in the catch photo.
//
// The Reconciler never decides anything. It produces a Report of facts
// (distances, time deltas, descriptors, threshold signals) for a human
// validator to weigh. It has no clock, no randomness and no side effects:
// the same inputs always produce the same Report.
package reconcile

import (
	"math"
	"time"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// earthRadiusMeters is the mean earth radius used by the haversine formula.
const earthRadiusMeters = 6371e3

// Default thresholds above which a signal is raised.
const (
	DefaultDistanceThresholdMeters = 100.0
	DefaultTimeThreshold           = 5 * time.Minute
)

// Signal names a fact worth a reviewer's attention.
type Signal string

const (
	SignalNoEmbeddedGPS       Signal = "no_embedded_gps"
	SignalNoEmbeddedTimestamp Signal = "no_embedded_timestamp"
	SignalNoClaimedLocation   Signal = "no_claimed_location"
	SignalDistanceExceeded    Signal = "distance_exceeds_threshold"
	SignalTimeExceeded        Signal = "time_exceeds_threshold"
)

// Claim is what the user submitted with the catch.
// Latitude and Longitude are nil when the catch has no location.
type Claim struct {
	Latitude  *float64
	Longitude *float64
	Time      time.Time
}

// ClaimOf extracts the claim from a catch.
func ClaimOf(c contest.Catch) Claim {
	return Claim{Latitude: c.Latitude, Longitude: c.Longitude, Time: c.CreatedAt}
}

// Report is the outcome of a reconciliation.
type Report struct {
	// NoMetadata is set when the photo carried no embedded metadata at all.
	NoMetadata bool `json:"no_metadata"`

	// DistanceMeters is the great-circle distance between claimed and
	// embedded GPS, rounded to the meter.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`

	// TimeDeltaSeconds is |claimed time - embedded capture time|.
	TimeDeltaSeconds *float64 `json:"time_delta_seconds,omitempty"`

	ClaimedGPS  *contest.GPS        `json:"claimed_gps,omitempty"`
	EmbeddedGPS *contest.GPS        `json:"embedded_gps,omitempty"`
	CapturedAt  *time.Time          `json:"captured_at,omitempty"`
	Device      *contest.Device     `json:"device,omitempty"`
	Camera      *contest.Camera     `json:"camera,omitempty"`
	Dimensions  *contest.Dimensions `json:"dimensions,omitempty"`

	Signals []Signal `json:"signals,omitempty"`
}

// Thresholds configure when distance and time signals are raised.
type Thresholds struct {
	DistanceMeters float64
	Time           time.Duration
}

// DefaultThresholds mirrors the review guidance used by moderators:
// 100 meters and 5 minutes.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DistanceMeters: DefaultDistanceThresholdMeters,
		Time:           DefaultTimeThreshold,
	}
}

// Reconciler produces discrepancy reports.
//
// Thread-safety: Reconciler is immutable and safe for concurrent use.
type Reconciler struct {
	thresholds Thresholds
}

// New creates a Reconciler. Non-positive thresholds fall back to defaults.
func New(t Thresholds) *Reconciler {
	d := DefaultThresholds()
	if t.DistanceMeters <= 0 {
		t.DistanceMeters = d.DistanceMeters
	}
	if t.Time <= 0 {
		t.Time = d.Time
	}
	return &Reconciler{thresholds: t}
}

// Reconcile compares a claim with the embedded photo metadata.
// embedded may be nil; that is not an error.
func (r *Reconciler) Reconcile(claim Claim, embedded *contest.PhotoMetadata) Report {
	var rep Report

	if claim.Latitude != nil && claim.Longitude != nil {
		rep.ClaimedGPS = &contest.GPS{Latitude: *claim.Latitude, Longitude: *claim.Longitude}
	}

	if embedded == nil {
		rep.NoMetadata = true
		return rep
	}

	rep.Device = embedded.Device
	rep.Camera = embedded.Camera
	rep.Dimensions = embedded.Dimensions

	switch {
	case embedded.GPS == nil:
		rep.Signals = append(rep.Signals, SignalNoEmbeddedGPS)
	case rep.ClaimedGPS == nil:
		gps := *embedded.GPS
		rep.EmbeddedGPS = &gps
		rep.Signals = append(rep.Signals, SignalNoClaimedLocation)
	default:
		gps := *embedded.GPS
		rep.EmbeddedGPS = &gps
		d := math.Round(Haversine(rep.ClaimedGPS.Latitude, rep.ClaimedGPS.Longitude, gps.Latitude, gps.Longitude))
		rep.DistanceMeters = &d
		if d > r.thresholds.DistanceMeters {
			rep.Signals = append(rep.Signals, SignalDistanceExceeded)
		}
	}

	if embedded.CapturedAt == nil {
		rep.Signals = append(rep.Signals, SignalNoEmbeddedTimestamp)
	} else {
		captured := embedded.CapturedAt.UTC()
		rep.CapturedAt = &captured
		delta := claim.Time.Sub(captured)
		if delta < 0 {
			delta = -delta
		}
		secs := delta.Seconds()
		rep.TimeDeltaSeconds = &secs
		if delta > r.thresholds.Time {
			rep.Signals = append(rep.Signals, SignalTimeExceeded)
		}
	}

	return rep
}

// Haversine returns the great-circle distance in meters between two
// latitude/longitude points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
