package fixtures

import (
	"fmt"
	"strings"
)

// Fixture validation error codes (F100-F199)
const (
	ErrSchema           = "F100" // document does not match the CUE schema
	ErrDuplicateID      = "F101" // id declared twice
	ErrUnknownEvent     = "F102" // contest references an event not in the document
	ErrInvalidWindow    = "F103" // event ends before it starts
	ErrInvalidTimestamp = "F104" // timestamp is not RFC 3339
	ErrDuplicateMember  = "F105" // user listed twice as participant of one event
	ErrPartialLocation  = "F106" // only one of latitude/longitude given
)

// ValidationError is a single problem found in a fixtures document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem in a document.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate runs the semantic checks the schema cannot express.
// Returns all errors found (does not fail-fast).
func (d *Document) Validate() ValidationErrors {
	var errs ValidationErrors

	checkTime := func(field, value string) {
		if _, err := ParseTime(value); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid timestamp %q: must be RFC 3339", value),
				Code:    ErrInvalidTimestamp,
			})
		}
	}
	dup := func(seen map[string]bool, field, kind, id string) {
		if seen[id] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate %s id %q", kind, id),
				Code:    ErrDuplicateID,
			})
		}
		seen[id] = true
	}

	users := make(map[string]bool)
	for i, u := range d.Users {
		dup(users, fmt.Sprintf("users[%d].id", i), "user", u.ID)
	}

	events := make(map[string]bool)
	for i, e := range d.Events {
		dup(events, fmt.Sprintf("events[%d].id", i), "event", e.ID)
		checkTime(fmt.Sprintf("events[%d].start_at", i), e.StartAt)
		checkTime(fmt.Sprintf("events[%d].end_at", i), e.EndAt)

		start, errStart := ParseTime(e.StartAt)
		end, errEnd := ParseTime(e.EndAt)
		if errStart == nil && errEnd == nil && end.Before(start) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("events[%d].end_at", i),
				Message: fmt.Sprintf("event %q ends before it starts", e.ID),
				Code:    ErrInvalidWindow,
			})
		}

		members := make(map[string]bool)
		for j, p := range e.Participants {
			field := fmt.Sprintf("events[%d].participants[%d]", i, j)
			if members[p.UserID] {
				errs = append(errs, ValidationError{
					Field:   field + ".user_id",
					Message: fmt.Sprintf("user %q already participates in event %q", p.UserID, e.ID),
					Code:    ErrDuplicateMember,
				})
			}
			members[p.UserID] = true
			if p.JoinedAt != "" {
				checkTime(field+".joined_at", p.JoinedAt)
			}
		}
	}

	contests := make(map[string]bool)
	for i, c := range d.Contests {
		dup(contests, fmt.Sprintf("contests[%d].id", i), "contest", c.ID)
		if !events[c.EventID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("contests[%d].event_id", i),
				Message: fmt.Sprintf("unknown event %q", c.EventID),
				Code:    ErrUnknownEvent,
			})
		}
	}

	catches := make(map[string]bool)
	for i, c := range d.Catches {
		dup(catches, fmt.Sprintf("catches[%d].id", i), "catch", c.ID)
		checkTime(fmt.Sprintf("catches[%d].created_at", i), c.CreatedAt)
		if (c.Latitude == nil) != (c.Longitude == nil) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("catches[%d]", i),
				Message: "latitude and longitude must be given together",
				Code:    ErrPartialLocation,
			})
		}
		if c.PhotoMetadata != nil && c.PhotoMetadata.CapturedAt != "" {
			checkTime(fmt.Sprintf("catches[%d].photo_metadata.captured_at", i), c.PhotoMetadata.CapturedAt)
		}
	}

	return errs
}
