// Package fixtures loads fact documents (users, events, contests,
// participants, catches and social counters) from YAML.
//
// Facts normally come from the rest of the fishing-log application. The
// fixtures format lets the CLI and the conformance harness stand up a
// complete contest without it. Documents are checked in three passes: a CUE
// schema for structure, a strict YAML decode, and semantic checks for
// references and time windows.
//
// Free-text fields (names, titles, species, species filters) are normalized
// to Unicode NFC at load time so that visually identical species names
// compare equal under the exact-match species filter.
package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// Document is the YAML shape of a fixtures file.
type Document struct {
	Users    []UserDoc    `yaml:"users"`
	Events   []EventDoc   `yaml:"events"`
	Contests []ContestDoc `yaml:"contests"`
	Catches  []CatchDoc   `yaml:"catches"`
}

type UserDoc struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Avatar string `yaml:"avatar"`
}

type ParticipantDoc struct {
	UserID   string `yaml:"user_id"`
	JoinedAt string `yaml:"joined_at"`
}

type EventDoc struct {
	ID           string           `yaml:"id"`
	OwnerID      string           `yaml:"owner_id"`
	Title        string           `yaml:"title"`
	StartAt      string           `yaml:"start_at"`
	EndAt        string           `yaml:"end_at"`
	Visibility   string           `yaml:"visibility"`
	Participants []ParticipantDoc `yaml:"participants"`
}

type ContestDoc struct {
	ID            string `yaml:"id"`
	EventID       string `yaml:"event_id"`
	Rule          string `yaml:"rule"`
	SpeciesFilter string `yaml:"species_filter"`
}

type GPSDoc struct {
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
	Altitude  *float64 `yaml:"altitude"`
}

type DeviceDoc struct {
	Make  string `yaml:"make"`
	Model string `yaml:"model"`
}

type CameraDoc struct {
	ISO          *int     `yaml:"iso"`
	FocalLength  *float64 `yaml:"focal_length"`
	ExposureTime *float64 `yaml:"exposure_time"`
	FNumber      *float64 `yaml:"f_number"`
}

type DimensionsDoc struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type PhotoMetadataDoc struct {
	GPS        *GPSDoc        `yaml:"gps"`
	CapturedAt string         `yaml:"captured_at"`
	Device     *DeviceDoc     `yaml:"device"`
	Camera     *CameraDoc     `yaml:"camera"`
	Dimensions *DimensionsDoc `yaml:"dimensions"`
}

type CatchDoc struct {
	ID            string            `yaml:"id"`
	OwnerID       string            `yaml:"owner_id"`
	Species       string            `yaml:"species"`
	WeightKg      *float64          `yaml:"weight_kg"`
	LengthCm      *float64          `yaml:"length_cm"`
	CreatedAt     string            `yaml:"created_at"`
	Latitude      *float64          `yaml:"latitude"`
	Longitude     *float64          `yaml:"longitude"`
	PhotoURL      string            `yaml:"photo_url"`
	PhotoHash     string            `yaml:"photo_hash"`
	PhotoMetadata *PhotoMetadataDoc `yaml:"photo_metadata"`
	IsDraft       bool              `yaml:"is_draft"`
	Likes         int               `yaml:"likes"`
	Comments      int               `yaml:"comments"`
}

// Facts is a validated document converted to domain types.
type Facts struct {
	Users        []contest.User
	Events       []contest.Event
	Participants []contest.Participant
	Contests     []contest.Contest
	Catches      []contest.Catch
	Social       map[string]contest.SocialCounts
}

// Load reads, validates and converts a fixtures file.
func Load(path string) (Facts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Facts{}, fmt.Errorf("read fixtures: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return Facts{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Facts()
}

// Parse checks data against the schema and decodes it strictly.
// Semantic checks run as part of Facts.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if errs := CheckSchema(raw); len(errs) > 0 {
		return nil, errs
	}

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &doc, nil
}

// Facts validates the document and converts it to domain types.
func (d *Document) Facts() (Facts, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return Facts{}, errs
	}

	facts := Facts{Social: make(map[string]contest.SocialCounts)}
	for _, u := range d.Users {
		facts.Users = append(facts.Users, contest.User{
			ID:     u.ID,
			Name:   nfc(u.Name),
			Email:  u.Email,
			Avatar: u.Avatar,
		})
	}

	for _, e := range d.Events {
		start := mustTime(e.StartAt)
		visibility := contest.Visibility(e.Visibility)
		if visibility == "" {
			visibility = contest.VisibilityPublic
		}
		facts.Events = append(facts.Events, contest.Event{
			ID:         e.ID,
			OwnerID:    e.OwnerID,
			Title:      nfc(e.Title),
			StartAt:    start,
			EndAt:      mustTime(e.EndAt),
			Visibility: visibility,
		})
		for _, p := range e.Participants {
			joined := start
			if p.JoinedAt != "" {
				joined = mustTime(p.JoinedAt)
			}
			facts.Participants = append(facts.Participants, contest.Participant{
				EventID:  e.ID,
				UserID:   p.UserID,
				JoinedAt: joined,
			})
		}
	}

	for _, c := range d.Contests {
		facts.Contests = append(facts.Contests, contest.Contest{
			ID:            c.ID,
			EventID:       c.EventID,
			Rule:          contest.Rule(c.Rule),
			SpeciesFilter: nfc(c.SpeciesFilter),
		})
	}

	for _, c := range d.Catches {
		facts.Catches = append(facts.Catches, contest.Catch{
			ID:            c.ID,
			Owner:         contest.User{ID: c.OwnerID},
			Species:       nfc(c.Species),
			WeightKg:      c.WeightKg,
			LengthCm:      c.LengthCm,
			CreatedAt:     mustTime(c.CreatedAt),
			Latitude:      c.Latitude,
			Longitude:     c.Longitude,
			PhotoURL:      c.PhotoURL,
			PhotoHash:     c.PhotoHash,
			PhotoMetadata: c.PhotoMetadata.toDomain(),
			IsDraft:       c.IsDraft,
		})
		if c.Likes != 0 || c.Comments != 0 {
			facts.Social[c.ID] = contest.SocialCounts{Likes: c.Likes, Comments: c.Comments}
		}
	}
	return facts, nil
}

func (m *PhotoMetadataDoc) toDomain() *contest.PhotoMetadata {
	if m == nil {
		return nil
	}
	out := &contest.PhotoMetadata{}
	if m.GPS != nil {
		out.GPS = &contest.GPS{Latitude: m.GPS.Latitude, Longitude: m.GPS.Longitude, Altitude: m.GPS.Altitude}
	}
	if m.CapturedAt != "" {
		t := mustTime(m.CapturedAt)
		out.CapturedAt = &t
	}
	if m.Device != nil {
		out.Device = &contest.Device{Make: m.Device.Make, Model: m.Device.Model}
	}
	if m.Camera != nil {
		out.Camera = &contest.Camera{
			ISO:          m.Camera.ISO,
			FocalLength:  m.Camera.FocalLength,
			ExposureTime: m.Camera.ExposureTime,
			FNumber:      m.Camera.FNumber,
		}
	}
	if m.Dimensions != nil {
		out.Dimensions = &contest.Dimensions{Width: m.Dimensions.Width, Height: m.Dimensions.Height}
	}
	return out
}

func nfc(s string) string {
	return norm.NFC.String(s)
}

// ParseTime parses an RFC 3339 timestamp and converts it to UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// mustTime is only called on timestamps Validate has accepted.
func mustTime(s string) time.Time {
	t, err := ParseTime(s)
	if err != nil {
		panic(fmt.Sprintf("fixtures: unvalidated timestamp %q: %v", s, err))
	}
	return t
}
