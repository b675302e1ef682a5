// Package clock abstracts the wall-clock source so state-transition timestamps
// and ledger date bucketing stay deterministic in tests.
package clock

import "time"

// Clock yields the current time for all *_at timestamps.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a clock pinned to a settable instant.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
