package audio

import (
	"math"

	"github.com/jscyril/automix/api"
)

// spuriousBeatWindow skips beats detected in the first moments of a track;
// analyzers often emit a bogus beat at or near time zero.
const spuriousBeatWindow = 0.1

// AlignIncomingStart computes the offset (seconds) into the incoming buffer
// at which playback should begin so that the incoming track's first usable
// beat lands on the outgoing beat nearest the mix point. If either beat grid
// is missing or empty the mix proceeds unaligned and the offset is 0.
func AlignIncomingStart(outgoing, incoming *api.Analysis, mixPoint float64) float64 {
	offset, _ := alignWithAnchor(outgoing, incoming, mixPoint)
	return offset
}

// alignWithAnchor additionally reports the outgoing anchor beat, for mix
// reports.
func alignWithAnchor(outgoing, incoming *api.Analysis, mixPoint float64) (offset, anchor float64) {
	if !outgoing.HasBeats() || !incoming.HasBeats() {
		return 0, 0
	}

	anchor = nearestBeat(outgoing.Beats, mixPoint)
	offset = firstUsableBeat(incoming.Beats)
	return offset, anchor
}

// nearestBeat returns the beat with minimal absolute distance to t. Ties go
// to the first beat encountered in grid order. Alignment is to the nearest
// beat, not the nearest bar boundary.
func nearestBeat(beats []float64, t float64) float64 {
	nearest := beats[0]
	best := math.Abs(beats[0] - t)
	for _, b := range beats[1:] {
		if d := math.Abs(b - t); d < best {
			best = d
			nearest = b
		}
	}
	return nearest
}

// firstUsableBeat returns the first beat strictly after the spurious-beat
// window, falling back to the first beat in the grid.
func firstUsableBeat(beats []float64) float64 {
	for _, b := range beats {
		if b > spuriousBeatWindow {
			return b
		}
	}
	return beats[0]
}
