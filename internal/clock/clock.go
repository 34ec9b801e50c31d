// Package clock provides an injectable wall-clock source.
package clock

import "time"

// Clock is a monotonic source of wall-clock timestamps.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current UTC time.
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	T time.Time
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time {
	return f.T
}

// Advance moves the pinned instant forward.
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}

// UTCDay returns the start and end (exclusive start of next day) of the
// UTC day containing t.
func UTCDay(t time.Time) (since, until time.Time) {
	y, m, d := t.UTC().Date()
	since = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	until = since.AddDate(0, 0, 1)
	return since, until
}
