package ecs

import (
	"math"
	"time"
)

// Time is the clock resource maintained by the Scheduler. It is updated before
// every update pass; systems read it through a Singleton[Time] field.
type Time struct {
	// Delta is the time since the previous tick.
	Delta time.Duration
	// Elapsed is the sum of all deltas since the scheduler started.
	Elapsed time.Duration
	// Frame counts update passes, starting at 1 for the first one.
	Frame uint64
}

// DeltaSeconds is Delta in seconds.
func (t *Time) DeltaSeconds() float64 {
	return t.Delta.Seconds()
}

func (t *Time) advance(delta time.Duration) {
	t.Delta = delta
	t.Elapsed += delta
	t.Frame++
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
