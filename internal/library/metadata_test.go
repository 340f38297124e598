package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jscyril/automix/api"
)

// writeFile creates a file with arbitrary content under dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMetadataReader_FilenameFallback(t *testing.T) {
	// Not a real MP3, so tag parsing fails and the filename is kept.
	path := writeFile(t, t.TempDir(), "untitled.mp3", "not audio")

	track, err := NewMetadataReader().Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if track.Title != "untitled.mp3" {
		t.Errorf("Title = %q, want filename fallback", track.Title)
	}
	if track.FilePath != path {
		t.Errorf("FilePath = %q, want %q", track.FilePath, path)
	}
	if track.ID == "" {
		t.Error("track ID should be generated")
	}
	if track.Analysis != nil {
		t.Error("Analysis should be nil without a sidecar")
	}
}

func TestMetadataReader_AnalysisSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.mp3", "not audio")
	writeFile(t, dir, "song.mp3"+AnalysisSidecarSuffix,
		`{"bpm": 128, "beats": [0.5, 0.9688, 1.4375]}`)

	track, err := NewMetadataReader().Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if track.Analysis == nil {
		t.Fatal("Analysis should be loaded from sidecar")
	}
	if track.Analysis.BPM != 128 {
		t.Errorf("BPM = %v, want 128", track.Analysis.BPM)
	}
	if len(track.Analysis.Beats) != 3 {
		t.Errorf("got %d beats, want 3", len(track.Analysis.Beats))
	}
}

func TestMetadataReader_CorruptSidecarIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.mp3", "not audio")
	writeFile(t, dir, "song.mp3"+AnalysisSidecarSuffix, "{broken")

	track, err := NewMetadataReader().Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if track.Analysis != nil {
		t.Error("corrupt sidecar should yield nil analysis, not an error")
	}
}

func TestMetadataReader_MissingFile(t *testing.T) {
	_, err := NewMetadataReader().Read(filepath.Join(t.TempDir(), "none.mp3"))
	if err == nil {
		t.Error("Read should fail for a missing file")
	}
}

func TestGenerateTrackID_Stable(t *testing.T) {
	a := generateTrackID("/music/a.mp3")
	b := generateTrackID("/music/b.mp3")

	if a != generateTrackID("/music/a.mp3") {
		t.Error("track ID should be deterministic for the same path")
	}
	if a == b {
		t.Error("different paths should yield different IDs")
	}
}

func TestScanner_ScanFindsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.mp3", "x")
	writeFile(t, dir, "two.wav", "x")
	writeFile(t, dir, "notes.txt", "x")
	writeFile(t, dir, "two.wav"+AnalysisSidecarSuffix, `{"bpm": 120, "beats": []}`)

	scanner := NewScanner(2)
	tracks, errs := scanner.Scan(context.Background(), []string{dir})

	found := make(map[string]*api.Track)
	for track := range tracks {
		found[filepath.Base(track.FilePath)] = track
	}
	for err := range errs {
		t.Errorf("unexpected scan error: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("found %d tracks, want 2 (txt skipped): %v", len(found), found)
	}
	if found["two.wav"].Analysis == nil {
		t.Error("sidecar analysis should be attached during scan")
	}
	if found["two.wav"].Analysis != nil && found["two.wav"].Analysis.BPM != 120 {
		t.Errorf("BPM = %v, want 120", found["two.wav"].Analysis.BPM)
	}
}

func TestScanner_ScanFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.flac", "x")

	scanner := NewScanner(1)
	track, err := scanner.ScanFile(path)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if track.FilePath != path {
		t.Errorf("FilePath = %q, want %q", track.FilePath, path)
	}

	if _, err := scanner.ScanFile(filepath.Join(dir, "doc.pdf")); err == nil {
		t.Error("ScanFile should reject unsupported formats")
	}
}
