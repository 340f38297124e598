package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrSessionActive    = errors.New("a mix session is already armed or active")
	ErrMixPointPassed   = errors.New("mix point has already passed")
	ErrUnitConsumed     = errors.New("playback unit has already been scheduled")
	ErrUnitNotScheduled = errors.New("playback unit committed before scheduling")
	ErrNoBackend        = errors.New("no audio backend configured")
	ErrNoBuffer         = errors.New("track has no decoded buffer")
	ErrTrackNotFound    = errors.New("track not found")
	ErrInvalidCurve     = errors.New("gain curve needs at least two points")
	ErrInvalidRatio     = errors.New("resample ratio must be positive")
	ErrInvalidFormat    = errors.New("unsupported audio format")
	ErrResampleFailed   = errors.New("offline resample failed")
)

// MixError wraps errors with additional context
type MixError struct {
	Op    string // Operation that failed
	Track string // Track ID if applicable
	Err   error  // Underlying error
}

func (e *MixError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MixError) Unwrap() error {
	return e.Err
}

// NewMixError creates a new MixError
func NewMixError(op, track string, err error) *MixError {
	return &MixError{Op: op, Track: track, Err: err}
}

// ScanError represents an error during library scanning
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error at %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
