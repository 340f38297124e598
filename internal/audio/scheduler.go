package audio

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/jscyril/automix/api"
	mixerrors "github.com/jscyril/automix/pkg/errors"
	"github.com/jscyril/automix/pkg/events"
)

// State is the scheduler's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateScheduling
	StateArmed
	StateCrossfading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduling:
		return "scheduling"
	case StateArmed:
		return "armed"
	case StateCrossfading:
		return "crossfading"
	default:
		return "unknown"
	}
}

// DurationSource supplies the configured crossfade duration. The playlist
// collaborator implements it.
type DurationSource interface {
	CrossfadeDuration() time.Duration
}

// Scheduler orchestrates one mix session at a time: it validates state,
// resolves tempo correction and beat alignment, wires fresh playback units
// into the mix bus, applies the gain curves, and hands the session cue to the
// animation collaborator over the event bus.
//
// At most one session may be armed or active; that is the engine's central
// invariant and the only concurrency guard it needs.
type Scheduler struct {
	backend    api.Backend
	source     DurationSource
	bus        *events.Bus // optional; nil disables publishing
	resolution int

	mu      sync.Mutex
	state   State
	session *mixSession
	debug   bool
}

// mixSession is the transient state of one scheduled crossfade. The scheduler
// owns it exclusively from creation until the session clears.
type mixSession struct {
	outgoing *api.Track
	incoming *api.Track

	startTime float64 // playback clock seconds
	duration  float64 // seconds
	offset    float64 // seconds into the (possibly resampled) incoming buffer

	incomingBuf *beep.Buffer // resampled buffer, or the original on fallback

	report    api.MixReport
	fadeTimer *time.Timer // bookkeeping only: flips Armed -> Crossfading
}

// NewScheduler creates a crossfade scheduler bound to a backend and a
// crossfade-duration source. bus may be nil.
func NewScheduler(backend api.Backend, source DurationSource, bus *events.Bus) *Scheduler {
	return &Scheduler{
		backend:    backend,
		source:     source,
		bus:        bus,
		resolution: DefaultCurveResolution,
	}
}

// SetCurveResolution overrides the number of points in synthesized curves.
func (s *Scheduler) SetCurveResolution(n int) {
	s.mu.Lock()
	if n >= 2 {
		s.resolution = n
	}
	s.mu.Unlock()
}

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartAutoMix schedules a crossfade from outgoing into incoming, given the
// current playback position (seconds) within the outgoing track. A nil error
// means the session is armed; every timing commitment is then pre-scheduled
// against the playback clock and survives caller jitter.
//
// The offline resample is the one suspension point: StartAutoMix blocks until
// it completes or ctx is cancelled. Rejections leave the scheduler idle and
// allocate nothing.
func (s *Scheduler) StartAutoMix(ctx context.Context, outgoing, incoming *api.Track, currentPosition float64) error {
	if s.backend == nil {
		return mixerrors.ErrNoBackend
	}
	if outgoing == nil || outgoing.Buffer == nil {
		return mixerrors.NewMixError("start_auto_mix", "", mixerrors.ErrNoBuffer)
	}
	if incoming == nil || incoming.Buffer == nil {
		return mixerrors.NewMixError("start_auto_mix", "", mixerrors.ErrNoBuffer)
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		s.debugf("rejecting mix %s -> %s: state %s", outgoing.ID, incoming.ID, s.state)
		return mixerrors.ErrSessionActive
	}
	s.state = StateScheduling
	s.mu.Unlock()

	sess, err := s.schedule(ctx, outgoing, incoming, currentPosition)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateIdle
		return err
	}
	s.state = StateArmed
	s.session = sess
	return nil
}

// schedule runs the Scheduling phase: all decisions, then the atomic wiring.
// Called without the mutex held; the state field guards reentry.
func (s *Scheduler) schedule(ctx context.Context, outgoing, incoming *api.Track, currentPosition float64) (*mixSession, error) {
	crossfade := s.source.CrossfadeDuration().Seconds()
	mixPoint := outgoing.Duration.Seconds() - crossfade

	// The clock reading and position are captured together; the difference
	// stays valid while the resample below runs, since the position
	// advances in lockstep with the playback clock.
	entryNow := s.backend.Now()
	mixStart := entryNow + (mixPoint - currentPosition)

	bpmOut := trackBPM(outgoing)
	bpmIn := trackBPM(incoming)

	sess := &mixSession{
		outgoing:    outgoing,
		incoming:    incoming,
		startTime:   mixStart,
		duration:    crossfade,
		incomingBuf: incoming.Buffer,
	}

	ratio := 1.0
	needed := IsResamplingNeeded(bpmOut, bpmIn)
	if needed {
		ratio = ResampleRatioFor(bpmOut, bpmIn)
		s.debugf("resampling %s at ratio %.4f (%.1f -> %.1f BPM)", incoming.ID, ratio, bpmIn, bpmOut)

		buf, err := ResampleBuffer(ctx, incoming.Buffer, ratio)
		switch {
		case err == nil:
			sess.incomingBuf = buf
		case ctx.Err() != nil:
			return nil, err
		default:
			// Resampling is an enhancement, never a requirement: mix
			// with the original buffer and move on.
			log.Printf("automix: resample fallback for %s: %v", incoming.ID, err)
			ratio = 1.0
			s.publish(api.EngineEvent{Type: api.EventResampleFallback, Payload: err})
		}
	}

	offset, anchor := alignWithAnchor(outgoing.Analysis, incoming.Analysis, mixPoint)
	if ratio != 1.0 {
		// The beat grid describes the original timeline; the resampled
		// buffer is compressed or stretched by ratio.
		offset /= ratio
	}
	sess.offset = offset

	now := s.backend.Now()
	if mixStart <= now {
		s.debugf("mix point passed: start %.3f, clock %.3f", mixStart, now)
		return nil, mixerrors.ErrMixPointPassed
	}

	// Fresh units per session: playback units are single-use and must never
	// be restarted, so each side gets a newly allocated unit and gain stage.
	outUnit, err := s.backend.NewPlaybackUnit(outgoing.Buffer)
	if err != nil {
		return nil, mixerrors.NewMixError("allocate_unit", outgoing.ID, err)
	}
	inUnit, err := s.backend.NewPlaybackUnit(sess.incomingBuf)
	if err != nil {
		return nil, mixerrors.NewMixError("allocate_unit", incoming.ID, err)
	}

	// The outgoing unit takes over playback at the position the outgoing
	// track has reached by commit time, and stops when the fade completes.
	outPosition := currentPosition + (now - entryNow)
	if err := outUnit.Schedule(now, outPosition, mixStart+crossfade); err != nil {
		return nil, mixerrors.NewMixError("schedule_unit", outgoing.ID, err)
	}
	if err := inUnit.Schedule(mixStart, offset, 0); err != nil {
		return nil, mixerrors.NewMixError("schedule_unit", incoming.ID, err)
	}

	fadeOut, err := SynthesizeCurve(1, GainFloor, s.curveResolution(), false)
	if err != nil {
		return nil, err
	}
	fadeIn, err := SynthesizeCurve(GainFloor, 1, s.curveResolution(), true)
	if err != nil {
		return nil, err
	}

	outGain := s.backend.NewGainUnit(outUnit)
	outGain.SetAutomation(fadeOut, mixStart, crossfade)
	inGain := s.backend.NewGainUnit(inUnit)
	inGain.SetAutomation(fadeIn, mixStart, crossfade)

	// Session teardown rides the backend's end-of-playback notification
	// rather than a wall-clock timer, so it cannot drift from the
	// playback-clock-scheduled stop.
	outUnit.OnEnded(func() { s.finish(sess) })

	if err := s.backend.Commit(outGain, inGain); err != nil {
		return nil, mixerrors.NewMixError("commit", outgoing.ID, err)
	}

	sess.report = api.MixReport{
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
	}

	// Bookkeeping only: audio timing is already committed above.
	sess.fadeTimer = time.AfterFunc(secondsToDuration(mixStart-now), func() {
		s.markCrossfading(sess)
	})

	s.publish(api.EngineEvent{
		Type:    api.EventMixScheduled,
		Payload: api.MixCue{StartTime: mixStart, Duration: crossfade},
	})
	s.debugf("armed mix %s -> %s: start %.3f, duration %.1fs, offset %.3fs",
		outgoing.ID, incoming.ID, mixStart, crossfade, offset)

	return sess, nil
}

// Session returns the report of the armed or active session, or nil.
func (s *Scheduler) Session() *api.MixReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	report := s.session.report
	return &report
}

func (s *Scheduler) markCrossfading(sess *mixSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == sess && s.state == StateArmed {
		s.state = StateCrossfading
	}
}

// finish clears the session once its playback has ended, returning the
// scheduler to idle.
func (s *Scheduler) finish(sess *mixSession) {
	s.mu.Lock()
	if s.session != sess {
		s.mu.Unlock()
		return
	}
	if sess.fadeTimer != nil {
		sess.fadeTimer.Stop()
	}
	report := sess.report
	s.session = nil
	s.state = StateIdle
	s.mu.Unlock()

	s.publish(api.EngineEvent{Type: api.EventMixCompleted, Payload: &report})
	s.debugf("mix %s -> %s completed", report.OutgoingID, report.IncomingID)
}

func (s *Scheduler) curveResolution() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

func (s *Scheduler) publish(ev api.EngineEvent) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

func trackBPM(t *api.Track) float64 {
	if t == nil || t.Analysis == nil {
		return 0
	}
	return t.Analysis.BPM
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
