package audio

import (
	"math"

	mixerrors "github.com/jscyril/automix/pkg/errors"
)

const (
	// GainFloor is the lowest gain value ever written to an automation
	// curve. Some backends misbehave when an automation target is exactly
	// zero, so fades bottom out here instead.
	GainFloor = 0.0001

	// DefaultCurveResolution is the number of samples in a synthesized
	// gain curve.
	DefaultCurveResolution = 512

	// MicroFadeSeconds is the length of the exponential ramp applied at
	// playback boundaries to remove discontinuity clicks.
	MicroFadeSeconds = 0.015
)

// GainCurve is a fixed-length sequence of gain values in [GainFloor, 1].
// A fade-out curve is monotonically non-increasing, a fade-in curve
// non-decreasing, and the endpoints equal the requested bounds exactly.
type GainCurve []float64

// SynthesizeCurve builds a raised-cosine gain curve from start to end over
// numPoints samples. For a fade-in the ease runs along x directly; for a
// fade-out the abscissa is mirrored, so the level holds longer before it
// drops. Inputs below GainFloor are clamped up to it. Pure function, safe
// for concurrent use.
func SynthesizeCurve(start, end float64, numPoints int, fadeIn bool) (GainCurve, error) {
	if numPoints < 2 {
		return nil, mixerrors.ErrInvalidCurve
	}

	start = clampGain(start)
	end = clampGain(end)

	curve := make(GainCurve, numPoints)
	for i := range curve {
		x := float64(i) / float64(numPoints-1)
		if fadeIn {
			curve[i] = start + (end-start)*raisedCosine(x)
		} else {
			curve[i] = end + (start-end)*raisedCosine(1-x)
		}
	}

	// Endpoints carry the contract; pin them against rounding.
	curve[0] = start
	curve[numPoints-1] = end

	return curve, nil
}

// EaseProgress maps t in [0,1] through the same raised-cosine shape the gain
// curves use. The animation collaborator drives its progress indicator with
// this so the visual easing matches the audible one.
func EaseProgress(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return raisedCosine(t)
}

// MicroRamp returns the exponential boundary gain at ramp progress t in
// [0,1], rising from GainFloor to 1. Mirror t for the closing ramp.
func MicroRamp(t float64) float64 {
	if t <= 0 {
		return GainFloor
	}
	if t >= 1 {
		return 1
	}
	return math.Pow(GainFloor, 1-t)
}

func raisedCosine(x float64) float64 {
	return 0.5 * (1 - math.Cos(x*math.Pi))
}

func clampGain(v float64) float64 {
	if v < GainFloor {
		return GainFloor
	}
	if v > 1 {
		return 1
	}
	return v
}
