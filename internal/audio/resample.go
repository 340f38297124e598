package audio

import (
	"context"
	"fmt"
	"math"

	"github.com/faiface/beep"

	mixerrors "github.com/jscyril/automix/pkg/errors"
)

const (
	// bpmMatchTolerance: below this relative delta a tempo mismatch is
	// imperceptible and not worth correcting.
	bpmMatchTolerance = 0.03

	// bpmCorrectionLimit: above this relative delta the pitch shift from a
	// linear resample would be audible enough that the engine declines.
	bpmCorrectionLimit = 0.25

	// resampleQuality is the sinc quality passed to beep's resampler.
	resampleQuality = 4
)

// IsResamplingNeeded reports whether the incoming track should be
// tempo-corrected to match the outgoing one. Correction only happens inside
// the (3%, 25%) relative-delta window; unknown tempos never trigger it.
func IsResamplingNeeded(bpmA, bpmB float64) bool {
	if bpmA <= 0 || bpmB <= 0 {
		return false
	}
	delta := math.Abs(bpmA - bpmB)
	return delta > bpmMatchTolerance*bpmA && delta < bpmCorrectionLimit*bpmA
}

// ResampleRatioFor returns the playback-rate ratio that brings bpmB to bpmA.
func ResampleRatioFor(bpmA, bpmB float64) float64 {
	return bpmA / bpmB
}

// ResampleBuffer renders src through an offline resampling pass at playback
// rate ratio, producing a new buffer of the same format whose duration is
// src's divided by ratio. This is a linear playback-rate resample: pitch
// shifts with tempo.
//
// The render runs faster than real time but still proportional to the source
// length, so it is the engine's one suspension point; ctx cancels it. On any
// failure the caller is expected to fall back to the original buffer.
func ResampleBuffer(ctx context.Context, src *beep.Buffer, ratio float64) (*beep.Buffer, error) {
	if src == nil || src.Len() == 0 {
		return nil, mixerrors.NewMixError("resample", "", mixerrors.ErrNoBuffer)
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, mixerrors.NewMixError("resample", "", mixerrors.ErrInvalidRatio)
	}

	type result struct {
		buf *beep.Buffer
		err error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: mixerrors.NewMixError("resample", "",
					fmt.Errorf("%w: %v", mixerrors.ErrResampleFailed, r))}
			}
		}()

		out := beep.NewBuffer(src.Format())
		out.Append(beep.ResampleRatio(resampleQuality, ratio, src.Streamer(0, src.Len())))
		done <- result{buf: out}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.buf, r.err
	}
}
