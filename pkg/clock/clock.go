package clock

import "time"

// Clock abstracts wall-clock reads so session expiry, escalation tiering and
// response timestamps can be tested against a fixed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the real UTC clock.
func System() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to one instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time {
	return f.Instant
}

// At returns a Fixed clock pinned to t.
func At(t time.Time) Fixed {
	return Fixed{Instant: t}
}
