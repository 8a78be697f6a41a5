package core

import "time"

// Ticks is the host's logical time unit.
type Ticks int64

const (
	// TickDuration is the wall-clock length of one tick.
	TickDuration = 50 * time.Millisecond

	// TicksPerSecond is the number of ticks in one second.
	TicksPerSecond Ticks = Ticks(time.Second / TickDuration)
)

// Duration converts ticks to a duration. The conversion is exact.
func (t Ticks) Duration() time.Duration {
	return time.Duration(t) * TickDuration
}

// TicksOf converts a duration to ticks, rounding partial ticks up so work is
// never scheduled earlier than requested. Non-positive durations yield 0.
func TicksOf(d time.Duration) Ticks {
	if d <= 0 {
		return 0
	}
	t := d / TickDuration
	if d%TickDuration != 0 {
		t++
	}
	return Ticks(t)
}

func atLeastOneTick(t Ticks) Ticks {
	if t < 1 {
		return 1
	}
	return t
}
