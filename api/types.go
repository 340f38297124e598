package api

import (
	"time"

	"github.com/faiface/beep"
)

// Track is one decoded audio track. The PCM buffer and the attached analysis
// are owned by the library/playlist side; the mix engine only reads them.
type Track struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	FilePath string        `json:"file_path"`
	Duration time.Duration `json:"duration"`
	Buffer   *beep.Buffer  `json:"-"`
	Analysis *Analysis     `json:"analysis,omitempty"`
}

// Analysis holds precomputed tempo data for a track. BPM may be imprecise and
// Beats may be empty; both come from an external analysis step, never from the
// engine itself.
type Analysis struct {
	BPM   float64   `json:"bpm"`
	Beats []float64 `json:"beats"` // seconds from track start, ascending
}

// HasBeats reports whether the analysis carries a usable beat grid.
func (a *Analysis) HasBeats() bool {
	return a != nil && len(a.Beats) > 0
}

// MixReport summarizes the decisions a mix session made (or would make, when
// produced by a simulation). It is a value object with no lifecycle.
type MixReport struct {
	OutgoingID        string  `json:"outgoing_id"`
	IncomingID        string  `json:"incoming_id"`
	MixPoint          float64 `json:"mix_point"`          // seconds into outgoing track
	CrossfadeDuration float64 `json:"crossfade_duration"` // seconds
	OutgoingBPM       float64 `json:"outgoing_bpm"`
	IncomingBPM       float64 `json:"incoming_bpm"`
	ResampleNeeded    bool    `json:"resample_needed"`
	ResampleRatio     float64 `json:"resample_ratio"`
	IncomingOffset    float64 `json:"incoming_offset"` // seconds into incoming buffer
	AnchorBeat        float64 `json:"anchor_beat"`     // outgoing beat nearest the mix point
}

// ReadinessStatus is a cheap non-mutating health snapshot of the engine.
type ReadinessStatus struct {
	BackendReady  bool   `json:"backend_ready"`
	PlaylistReady bool   `json:"playlist_ready"`
	BackendState  string `json:"backend_state"`
}

// MixCue is the hand-off to the animation collaborator: when the crossfade
// starts on the playback clock and how long it runs.
type MixCue struct {
	StartTime float64 `json:"start_time"` // playback clock seconds
	Duration  float64 `json:"duration"`   // seconds
}

// EventType identifies engine events on the bus.
type EventType int

const (
	EventMixScheduled EventType = iota
	EventMixCompleted
	EventResampleFallback
	EventError
)

// EngineEvent is published on the event bus. Payload is a MixCue for
// EventMixScheduled, a *MixReport for EventMixCompleted, and an error for
// EventResampleFallback and EventError.
type EngineEvent struct {
	Type    EventType
	Payload any
}
