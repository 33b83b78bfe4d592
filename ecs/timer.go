package ecs

import "time"

// Timer counts time towards a fixed duration. It is advanced explicitly with
// Tick, usually by a system feeding it Time.Delta.
//
// A repeating timer wraps around when it reaches its duration and fires again;
// a one-shot timer stops at its duration and stays finished until Reset.
type Timer struct {
	duration      time.Duration
	elapsed       time.Duration
	repeating     bool
	finished      bool
	justFinished  bool
	timesFinished int
}

// NewTimer returns a timer that fires after d.
func NewTimer(d time.Duration, repeating bool) Timer {
	return Timer{duration: d, repeating: repeating}
}

// TimerFromSeconds is NewTimer with the duration given in seconds.
func TimerFromSeconds(seconds float64, repeating bool) Timer {
	return NewTimer(secondsToDuration(seconds), repeating)
}

// Tick advances the timer by delta. Negative deltas count as zero.
func (t *Timer) Tick(delta time.Duration) *Timer {
	t.justFinished = false
	t.timesFinished = 0

	if t.finished && !t.repeating {
		return t
	}
	if delta > 0 {
		t.elapsed += delta
	}
	if t.elapsed < t.duration {
		if t.repeating {
			t.finished = false
		}
		return t
	}

	t.finished = true
	t.justFinished = true

	switch {
	case t.duration <= 0:
		t.timesFinished = 1
		t.elapsed = 0
	case t.repeating:
		t.timesFinished = int(t.elapsed / t.duration)
		t.elapsed %= t.duration
	default:
		t.timesFinished = 1
		t.elapsed = t.duration
	}
	return t
}

// JustFinished reports whether the last Tick reached the duration.
func (t *Timer) JustFinished() bool {
	return t.justFinished
}

// Finished reports whether the timer has reached its duration. For repeating
// timers this matches JustFinished.
func (t *Timer) Finished() bool {
	return t.finished
}

// TimesFinished is how many times the last Tick crossed the duration. It can
// exceed one for repeating timers ticked by a delta longer than the duration.
func (t *Timer) TimesFinished() int {
	return t.timesFinished
}

// Elapsed is the time accumulated towards the next firing.
func (t *Timer) Elapsed() time.Duration {
	return t.elapsed
}

// Remaining is the time left until the timer next fires.
func (t *Timer) Remaining() time.Duration {
	return t.duration - t.elapsed
}

// Duration returns the firing threshold.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// SetDuration changes the threshold without touching the elapsed time.
func (t *Timer) SetDuration(d time.Duration) {
	t.duration = d
}

// Repeating reports whether the timer wraps around.
func (t *Timer) Repeating() bool {
	return t.repeating
}

// Reset clears elapsed time and finished state.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
	t.justFinished = false
	t.timesFinished = 0
}
