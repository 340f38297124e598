package playlist

import (
	"errors"
	"sync"
	"time"

	"github.com/jscyril/automix/api"
)

const (
	// DefaultCrossfadeDuration is used when no duration is configured.
	DefaultCrossfadeDuration = 8 * time.Second

	minCrossfade = 1 * time.Second
	maxCrossfade = 30 * time.Second
)

// Queue is the playlist collaborator the mix engine consumes: an ordered set
// of tracks plus the configured crossfade duration. The engine never mutates
// it; ordering and persistence live outside the engine.
type Queue struct {
	tracks    []*api.Track
	index     int
	crossfade time.Duration
	mu        sync.RWMutex
}

// NewQueue creates an empty queue with the given crossfade duration, clamped
// to a sane range.
func NewQueue(crossfade time.Duration) *Queue {
	return &Queue{crossfade: clampCrossfade(crossfade)}
}

// CrossfadeDuration returns the configured crossfade length. Implements the
// engine's DurationSource.
func (q *Queue) CrossfadeDuration() time.Duration {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.crossfade
}

// SetCrossfadeDuration updates the crossfade length for future sessions.
func (q *Queue) SetCrossfadeDuration(d time.Duration) {
	q.mu.Lock()
	q.crossfade = clampCrossfade(d)
	q.mu.Unlock()
}

// Add adds tracks to the end of the queue
func (q *Queue) Add(tracks ...*api.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = append(q.tracks, tracks...)
}

// Set replaces the entire queue with new tracks
func (q *Queue) Set(tracks []*api.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = make([]*api.Track, len(tracks))
	copy(q.tracks, tracks)
	q.index = 0
}

// Clear removes all tracks from the queue
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = q.tracks[:0]
	q.index = 0
}

// Current returns the current track
func (q *Queue) Current() *api.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if len(q.tracks) == 0 || q.index < 0 || q.index >= len(q.tracks) {
		return nil
	}
	return q.tracks[q.index]
}

// Peek returns the upcoming track without advancing, or nil at the end of
// the queue. The engine uses it to know what to mix into.
func (q *Queue) Peek() *api.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.index+1 >= len(q.tracks) {
		return nil
	}
	return q.tracks[q.index+1]
}

// Next moves to the next track and returns it, or nil at the end of the
// queue.
func (q *Queue) Next() *api.Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index+1 >= len(q.tracks) {
		return nil
	}
	q.index++
	return q.tracks[q.index]
}

// JumpTo jumps to a specific index
func (q *Queue) JumpTo(index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.tracks) {
		return errors.New("index out of bounds")
	}

	q.index = index
	return nil
}

// GetAll returns a copy of all tracks in the queue
func (q *Queue) GetAll() []*api.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]*api.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of tracks in the queue
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.tracks)
}

// Index returns the current index
func (q *Queue) Index() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index
}

// HasNext returns true if there's a next track
func (q *Queue) HasNext() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index < len(q.tracks)-1
}

func clampCrossfade(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultCrossfadeDuration
	}
	if d < minCrossfade {
		return minCrossfade
	}
	if d > maxCrossfade {
		return maxCrossfade
	}
	return d
}
