// Package clock supplies the current time to every component that enforces
// a temporal rule (rate windows, cooldowns, edit windows, ban expiry).
// Injecting it keeps those rules testable without sleeping.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Useful in tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
