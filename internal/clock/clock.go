package clock

import "time"

// Clock abstracts time.Now so lifecycle timestamps and renewal schedules are
// testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Manual is a hand-advanced clock for tests.
type Manual struct {
	Current time.Time
}

func (m *Manual) Now() time.Time { return m.Current }

// Advance moves the manual clock forward.
func (m *Manual) Advance(d time.Duration) { m.Current = m.Current.Add(d) }
