// Package clock supplies wall-clock time to the engine.
//
// Validation timestamps are assigned by the store inside the append
// transaction, and the live feed derives its default watermark from the
// current time. Both read time through Clock so tests can pin it.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the process wall clock, normalized to UTC.
//
// Thread-safety: System is stateless and safe for concurrent use.
type System struct{}

// Now returns time.Now in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts an ordinary function to the Clock interface.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}
