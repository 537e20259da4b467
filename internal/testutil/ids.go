package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable validation record ids for tests.
//
// The same scenario with the same SequentialIDs produces byte-identical
// ledgers, which keeps golden snapshots stable.
//
// Thread-safety: SequentialIDs is safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator yielding "<prefix>-0001", "<prefix>-0002", ...
// If prefix is empty, "val" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "val"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
