package inventory

import "time"

// Clock abstracts "now" so that past-date validation and the auto-complete
// sweep stay deterministic under test.  Production code uses SystemClock;
// tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.  Intended for tests.
type FixedClock struct {
	T time.Time
}

// Now returns the configured instant.
func (f FixedClock) Now() time.Time { return f.T }
