package library

import (
	"context"
	"sort"
	"sync"

	"github.com/jscyril/automix/api"
	"github.com/jscyril/automix/internal/audio"
	mixerrors "github.com/jscyril/automix/pkg/errors"
)

// Library holds the scanned track collection. Buffers are decoded lazily:
// scanning only reads tags and analysis sidecars, and LoadBuffer fills in the
// PCM when a track is about to be mixed.
type Library struct {
	tracks  map[string]*api.Track
	mu      sync.RWMutex
	scanner *Scanner
}

// NewLibrary creates a new empty library
func NewLibrary() *Library {
	return &Library{
		tracks:  make(map[string]*api.Track),
		scanner: NewScanner(4),
	}
}

// AddTrack adds a track to the library
func (l *Library) AddTrack(track *api.Track) {
	l.mu.Lock()
	l.tracks[track.ID] = track
	l.mu.Unlock()
}

// GetTrack returns a track by ID
func (l *Library) GetTrack(id string) (*api.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	track, exists := l.tracks[id]
	if !exists {
		return nil, mixerrors.NewMixError("get_track", id, mixerrors.ErrTrackNotFound)
	}
	return track, nil
}

// GetAllTracks returns all tracks sorted by artist, then title
func (l *Library) GetAllTracks() []*api.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tracks := make([]*api.Track, 0, len(l.tracks))
	for _, track := range l.tracks {
		tracks = append(tracks, track)
	}

	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Artist != tracks[j].Artist {
			return tracks[i].Artist < tracks[j].Artist
		}
		return tracks[i].Title < tracks[j].Title
	})

	return tracks
}

// Len returns the number of tracks in the library
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tracks)
}

// Scan walks the given paths and adds every supported audio file. Scan
// errors are collected and returned after the walk finishes; a partial scan
// is still usable.
func (l *Library) Scan(ctx context.Context, paths []string) []error {
	tracks, errs := l.scanner.Scan(ctx, paths)

	var scanErrors []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for err := range errs {
			scanErrors = append(scanErrors, err)
		}
	}()

	for track := range tracks {
		l.AddTrack(track)
	}
	<-done

	return scanErrors
}

// LoadBuffer decodes the track's file into its PCM buffer if not already
// loaded, and fills in the duration.
func (l *Library) LoadBuffer(track *api.Track) error {
	if track.Buffer != nil {
		return nil
	}

	buf, duration, err := audio.DecodeToBuffer(track.FilePath)
	if err != nil {
		return mixerrors.NewMixError("load_buffer", track.ID, err)
	}

	l.mu.Lock()
	track.Buffer = buf
	track.Duration = duration
	l.mu.Unlock()
	return nil
}
