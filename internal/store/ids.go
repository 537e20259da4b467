package store

import "github.com/google/uuid"

// UUIDv7Generator produces time-sortable UUIDv7 record ids.
// Used in production; tests use testutil.SequentialIDs.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
