package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/jscyril/automix/api"
	mixerrors "github.com/jscyril/automix/pkg/errors"
)

// Ensure SpeakerBackend implements Backend interface at compile time
var _ api.Backend = (*SpeakerBackend)(nil)

// SpeakerBackend realizes the playback backend on beep's speaker. The mix bus
// is a beep.Mixer wrapped in a sample counter; the playback clock is that
// counter divided by the sample rate, so it is locked to the samples the
// speaker actually consumes and never drifts against wall-clock time.
type SpeakerBackend struct {
	format  beep.Format
	mixer   *beep.Mixer
	samples int64 // atomic: samples streamed through the bus
	closed  atomic.Bool
}

// NewSpeakerBackend initializes the speaker at the given sample rate and
// starts the mix bus. The bus plays silence until sessions are committed.
func NewSpeakerBackend(sampleRate beep.SampleRate) (*SpeakerBackend, error) {
	b := &SpeakerBackend{
		format: beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2},
		mixer:  &beep.Mixer{},
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, mixerrors.NewMixError("speaker_init", "", err)
	}
	speaker.Play(&busStreamer{backend: b})
	return b, nil
}

// Now returns the playback clock in seconds.
func (b *SpeakerBackend) Now() float64 {
	return float64(atomic.LoadInt64(&b.samples)) / float64(b.format.SampleRate)
}

// SampleRate returns the bus sample rate.
func (b *SpeakerBackend) SampleRate() beep.SampleRate {
	return b.format.SampleRate
}

// NewPlaybackUnit allocates a fresh single-use unit for buf.
func (b *SpeakerBackend) NewPlaybackUnit(buf *beep.Buffer) (api.PlaybackUnit, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, mixerrors.ErrNoBuffer
	}
	return &speakerUnit{backend: b, buf: buf}, nil
}

// NewGainUnit wraps a playback unit with an automatable gain stage.
func (b *SpeakerBackend) NewGainUnit(unit api.PlaybackUnit) api.GainUnit {
	return &speakerGain{unit: unit.(*speakerUnit)}
}

// Commit wires the gain chains into the mix bus under the speaker lock, in
// one step. All units must already be scheduled; their timing is resolved
// against the clock reading taken inside the lock.
func (b *SpeakerBackend) Commit(chains ...api.GainUnit) error {
	gains := make([]*speakerGain, len(chains))
	for i, c := range chains {
		g, ok := c.(*speakerGain)
		if !ok || !g.unit.isScheduled() {
			return mixerrors.ErrUnitNotScheduled
		}
		gains[i] = g
	}

	speaker.Lock()
	defer speaker.Unlock()

	commitSample := atomic.LoadInt64(&b.samples)
	for _, g := range gains {
		g.prepare(commitSample)
		b.mixer.Add(g)
	}
	return nil
}

// State reports the backend lifecycle.
func (b *SpeakerBackend) State() string {
	if b.closed.Load() {
		return "closed"
	}
	return "running"
}

// Close silences the bus and releases the speaker.
func (b *SpeakerBackend) Close() {
	if b.closed.CompareAndSwap(false, true) {
		speaker.Clear()
	}
}

func (b *SpeakerBackend) secondsToSample(s float64) int64 {
	return int64(math.Round(s * float64(b.format.SampleRate)))
}

// busStreamer pulls from the mixer and advances the sample clock. beep's
// Mixer streams silence when it has no sources, so the clock never stalls.
type busStreamer struct {
	backend *SpeakerBackend
}

func (bs *busStreamer) Stream(samples [][2]float64) (int, bool) {
	n, _ := bs.backend.mixer.Stream(samples)
	atomic.AddInt64(&bs.backend.samples, int64(n))
	return n, true
}

func (bs *busStreamer) Err() error { return nil }

// speakerUnit is one scheduled playback of one buffer. It streams silence
// until its start sample, then its buffer from the scheduled offset, and
// drains at its stop sample. Schedule works exactly once; there is no way to
// restart or rewind a unit.
type speakerUnit struct {
	backend *SpeakerBackend
	buf     *beep.Buffer

	mu        sync.Mutex
	scheduled bool
	startAt   float64
	offset    float64
	stopAt    float64
	onEnded   func()

	// Streaming state, touched only under the speaker lock after Commit.
	src         beep.StreamSeeker
	cursor      int64 // absolute bus sample index of the next sample emitted
	startSample int64
	stopSample  int64
	ended       bool
}

func (u *speakerUnit) Schedule(startAt, offset, stopAt float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.scheduled {
		return mixerrors.ErrUnitConsumed
	}
	u.scheduled = true
	u.startAt = startAt
	u.offset = offset
	u.stopAt = stopAt
	return nil
}

func (u *speakerUnit) OnEnded(fn func()) {
	u.mu.Lock()
	u.onEnded = fn
	u.mu.Unlock()
}

func (u *speakerUnit) isScheduled() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.scheduled
}

// prepare resolves the scheduled times to absolute bus samples. Called under
// the speaker lock at commit.
func (u *speakerUnit) prepare(commitSample int64) {
	b := u.backend

	u.startSample = b.secondsToSample(u.startAt)
	if u.startSample < commitSample {
		u.startSample = commitSample
	}

	offsetSample := int(b.secondsToSample(u.offset))
	if offsetSample < 0 {
		offsetSample = 0
	}
	if offsetSample > u.buf.Len() {
		offsetSample = u.buf.Len()
	}

	available := int64(u.buf.Len() - offsetSample)
	u.stopSample = u.startSample + available
	if u.stopAt > 0 {
		if stop := b.secondsToSample(u.stopAt); stop < u.stopSample {
			u.stopSample = stop
		}
	}

	u.src = u.buf.Streamer(offsetSample, u.buf.Len())
	u.cursor = commitSample
}

func (u *speakerUnit) Stream(samples [][2]float64) (int, bool) {
	if u.ended {
		return 0, false
	}

	filled := 0
	for filled < len(samples) {
		switch {
		case u.cursor < u.startSample:
			// Silence until the scheduled start.
			n := len(samples) - filled
			if gap := int(u.startSample - u.cursor); gap < n {
				n = gap
			}
			for i := filled; i < filled+n; i++ {
				samples[i] = [2]float64{}
			}
			filled += n
			u.cursor += int64(n)

		case u.cursor < u.stopSample:
			want := len(samples) - filled
			if left := int(u.stopSample - u.cursor); left < want {
				want = left
			}
			n, ok := u.src.Stream(samples[filled : filled+want])
			filled += n
			u.cursor += int64(n)
			if !ok {
				u.end()
				return filled, filled > 0
			}

		default:
			u.end()
			return filled, filled > 0
		}
	}
	return filled, true
}

func (u *speakerUnit) Err() error { return nil }

// end marks the unit drained and fires the ended callback off the audio path.
func (u *speakerUnit) end() {
	if u.ended {
		return
	}
	u.ended = true

	u.mu.Lock()
	fn := u.onEnded
	u.mu.Unlock()
	if fn != nil {
		go fn()
	}
}

// speakerGain applies automation to a unit's output. The level follows the
// curve across its window, holds the curve endpoints outside it, and is
// shaped by 15 ms exponential micro-ramps at the unit's own start and stop
// to remove boundary clicks.
type speakerGain struct {
	unit *speakerUnit

	mu      sync.Mutex
	curve   []float64
	autoAt  float64
	autoDur float64

	// Resolved at commit, read only under the speaker lock afterwards.
	autoStart    int64
	autoEnd      int64
	microSamples int64
}

func (g *speakerGain) SetAutomation(curve []float64, startAt, duration float64) {
	g.mu.Lock()
	g.curve = curve
	g.autoAt = startAt
	g.autoDur = duration
	g.mu.Unlock()
}

func (g *speakerGain) prepare(commitSample int64) {
	g.unit.prepare(commitSample)

	b := g.unit.backend
	g.mu.Lock()
	g.autoStart = b.secondsToSample(g.autoAt)
	g.autoEnd = b.secondsToSample(g.autoAt + g.autoDur)
	g.mu.Unlock()
	g.microSamples = b.secondsToSample(MicroFadeSeconds)
}

func (g *speakerGain) Stream(samples [][2]float64) (int, bool) {
	base := g.unit.cursor
	n, ok := g.unit.Stream(samples)

	g.mu.Lock()
	curve := g.curve
	start, end := g.autoStart, g.autoEnd
	g.mu.Unlock()

	for i := 0; i < n; i++ {
		abs := base + int64(i)
		gain := curveAt(curve, start, end, abs)

		// Boundary micro-ramps relative to the unit's own start and stop.
		if g.microSamples > 0 {
			if rise := abs - g.unit.startSample; rise >= 0 && rise < g.microSamples {
				gain *= MicroRamp(float64(rise) / float64(g.microSamples))
			}
			if fall := g.unit.stopSample - abs; fall >= 0 && fall < g.microSamples {
				gain *= MicroRamp(float64(fall) / float64(g.microSamples))
			}
		}

		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	return n, ok
}

func (g *speakerGain) Err() error { return nil }

// curveAt samples the automation curve at an absolute bus position, holding
// the endpoints outside the window and interpolating linearly inside it.
func curveAt(curve []float64, start, end, abs int64) float64 {
	if len(curve) == 0 {
		return 1
	}
	if abs <= start || end <= start {
		return curve[0]
	}
	if abs >= end {
		return curve[len(curve)-1]
	}

	pos := float64(abs-start) / float64(end-start) * float64(len(curve)-1)
	i := int(pos)
	if i >= len(curve)-1 {
		return curve[len(curve)-1]
	}
	frac := pos - float64(i)
	return curve[i]*(1-frac) + curve[i+1]*frac
}
