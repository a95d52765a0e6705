package ports

import "time"

// Clock fuente de tiempo inyectable.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real.
type SystemClock struct{}

// Now hora actual.
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapta una función a Clock.
type ClockFunc func() time.Time

// Now invoca la función.
func (f ClockFunc) Now() time.Time { return f() }
