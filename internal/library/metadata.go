package library

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"

	"github.com/jscyril/automix/api"
)

// MetadataReader extracts metadata from audio files
type MetadataReader struct{}

// NewMetadataReader creates a new metadata reader
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Read extracts metadata from an audio file and returns a Track. Tempo
// analysis, when a sidecar file exists next to the audio file, is attached;
// a track without analysis is still valid and simply mixes unaligned.
func (r *MetadataReader) Read(filePath string) (*api.Track, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	track := &api.Track{
		ID:       generateTrackID(filePath),
		Title:    filepath.Base(filePath),
		FilePath: filePath,
		Analysis: readAnalysisSidecar(filePath),
	}

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		// No tags; keep the filename-derived title
		return track, nil
	}

	track.Title = getOrDefault(metadata.Title(), track.Title)
	track.Artist = getOrDefault(metadata.Artist(), "Unknown Artist")
	return track, nil
}

// AnalysisSidecarSuffix names the per-file sidecar carrying precomputed
// tempo analysis, e.g. "song.mp3.analysis.json" next to "song.mp3".
const AnalysisSidecarSuffix = ".analysis.json"

// readAnalysisSidecar loads the precomputed analysis for an audio file.
// Returns nil when the sidecar is missing or unreadable; analysis is always
// optional.
func readAnalysisSidecar(filePath string) *api.Analysis {
	data, err := os.ReadFile(filePath + AnalysisSidecarSuffix)
	if err != nil {
		return nil
	}

	var analysis api.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil
	}
	return &analysis
}

// generateTrackID creates a unique ID for a track based on its file path
func generateTrackID(filePath string) string {
	hash := md5.Sum([]byte(filePath))
	return fmt.Sprintf("track-%x", hash[:8])
}

// getOrDefault returns the value if non-empty, otherwise returns the default
func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
