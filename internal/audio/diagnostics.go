package audio

import (
	"log"

	"github.com/jscyril/automix/api"
	mixerrors "github.com/jscyril/automix/pkg/errors"
)

// SetDebugMode toggles debug logging of scheduling decisions.
func (s *Scheduler) SetDebugMode(enabled bool) {
	s.mu.Lock()
	s.debug = enabled
	s.mu.Unlock()
}

func (s *Scheduler) debugf(format string, args ...any) {
	s.mu.Lock()
	enabled := s.debug
	s.mu.Unlock()
	if enabled {
		log.Printf("automix: "+format, args...)
	}
}

// SimulateMixSession runs the same resampling and beat-alignment decisions a
// real session would make, without allocating playback units or touching the
// backend. Useful for tuning and tests; it produces no sound and mutates no
// scheduler state.
func (s *Scheduler) SimulateMixSession(outgoing, incoming *api.Track) (*api.MixReport, error) {
	if outgoing == nil || incoming == nil {
		return nil, mixerrors.NewMixError("simulate", "", mixerrors.ErrNoBuffer)
	}

	crossfade := s.source.CrossfadeDuration().Seconds()
	mixPoint := outgoing.Duration.Seconds() - crossfade

	bpmOut := trackBPM(outgoing)
	bpmIn := trackBPM(incoming)

	ratio := 1.0
	needed := IsResamplingNeeded(bpmOut, bpmIn)
	if needed {
		ratio = ResampleRatioFor(bpmOut, bpmIn)
	}

	offset, anchor := alignWithAnchor(outgoing.Analysis, incoming.Analysis, mixPoint)
	if needed {
		offset /= ratio
	}

	return &api.MixReport{
		OutgoingID:        outgoing.ID,
		IncomingID:        incoming.ID,
		MixPoint:          mixPoint,
		CrossfadeDuration: crossfade,
		OutgoingBPM:       bpmOut,
		IncomingBPM:       bpmIn,
		ResampleNeeded:    needed,
		ResampleRatio:     ratio,
		IncomingOffset:    offset,
		AnchorBeat:        anchor,
	}, nil
}

// ReadinessCheck reports whether the scheduler has a backend and a crossfade
// duration source, and the backend's lifecycle state. Non-mutating.
func (s *Scheduler) ReadinessCheck() api.ReadinessStatus {
	status := api.ReadinessStatus{
		BackendReady:  s.backend != nil,
		PlaylistReady: s.source != nil,
	}
	if s.backend != nil {
		status.BackendState = s.backend.State()
	}
	return status
}
