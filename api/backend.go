package api

import "github.com/faiface/beep"

// Backend abstracts the audio playback layer the mix engine schedules against.
// All times are seconds on the backend's monotonic playback clock, which is
// sample-locked: it advances with the samples the backend actually plays,
// never with wall-clock time.
type Backend interface {
	// Now returns the current playback clock reading in seconds.
	Now() float64

	// SampleRate returns the backend's output sample rate.
	SampleRate() beep.SampleRate

	// NewPlaybackUnit allocates a fresh single-use playback unit for the
	// given buffer. Units must never be reused across sessions.
	NewPlaybackUnit(buf *beep.Buffer) (PlaybackUnit, error)

	// NewGainUnit wraps a playback unit with an automatable gain stage.
	NewGainUnit(unit PlaybackUnit) GainUnit

	// Commit wires the given gain chains into the mix bus in one atomic
	// step. After Commit, all scheduled timing is honored by the backend
	// independent of the calling goroutine.
	Commit(chains ...GainUnit) error

	// State describes the backend lifecycle ("running", "closed", ...).
	State() string
}

// PlaybackUnit is a single-use handle for one scheduled playback of one
// buffer. Schedule may be called exactly once; a second call fails. A unit
// cannot be restarted or rewound after it has been committed.
type PlaybackUnit interface {
	// Schedule commits the unit to start at startAt on the playback clock,
	// reading its buffer from offset seconds in, and to stop at stopAt.
	// stopAt <= 0 means play through to the end of the buffer.
	Schedule(startAt, offset, stopAt float64) error

	// OnEnded registers a callback invoked once when the unit finishes,
	// either by reaching stopAt or by draining its buffer.
	OnEnded(fn func())
}

// GainUnit is a per-unit volume stage whose level follows an automation
// curve over a window of playback-clock time. Outside the window the level
// holds the curve's first (before) or last (after) value.
type GainUnit interface {
	// SetAutomation applies curve over [startAt, startAt+duration].
	SetAutomation(curve []float64, startAt, duration float64)
}
