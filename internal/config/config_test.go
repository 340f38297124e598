package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.CrossfadeSeconds != 8 {
		t.Errorf("CrossfadeSeconds = %v, want 8", cfg.CrossfadeSeconds)
	}
	if cfg.CurveResolution != 512 {
		t.Errorf("CurveResolution = %d, want 512", cfg.CurveResolution)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.SampleRate)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CrossfadeSeconds != 8 {
		t.Errorf("CrossfadeSeconds = %v, want default 8", cfg.CrossfadeSeconds)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig should fail on invalid JSON")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTOMIX_CROSSFADE_SECONDS", "12.5")
	t.Setenv("AUTOMIX_CURVE_RESOLUTION", "1024")
	t.Setenv("AUTOMIX_DEBUG", "true")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.CrossfadeSeconds != 12.5 {
		t.Errorf("CrossfadeSeconds = %v, want 12.5", cfg.CrossfadeSeconds)
	}
	if cfg.CurveResolution != 1024 {
		t.Errorf("CurveResolution = %d, want 1024", cfg.CurveResolution)
	}
	if !cfg.Debug {
		t.Error("Debug should be overridden to true")
	}
}

func TestLoadConfig_IgnoresMalformedEnv(t *testing.T) {
	t.Setenv("AUTOMIX_CROSSFADE_SECONDS", "not-a-number")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CrossfadeSeconds != 8 {
		t.Errorf("CrossfadeSeconds = %v, want default 8", cfg.CrossfadeSeconds)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	want := &Config{
		MusicDirectories: []string{"/music"},
		CrossfadeSeconds: 10,
		CurveResolution:  256,
		SampleRate:       48000,
		Debug:            true,
	}
	if err := SaveConfig(want, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got.CrossfadeSeconds != want.CrossfadeSeconds {
		t.Errorf("CrossfadeSeconds = %v, want %v", got.CrossfadeSeconds, want.CrossfadeSeconds)
	}
	if got.CurveResolution != want.CurveResolution {
		t.Errorf("CurveResolution = %d, want %d", got.CurveResolution, want.CurveResolution)
	}
	if got.SampleRate != want.SampleRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, want.SampleRate)
	}
	if len(got.MusicDirectories) != 1 || got.MusicDirectories[0] != "/music" {
		t.Errorf("MusicDirectories = %v, want [/music]", got.MusicDirectories)
	}
}

func TestLoadOrCreate_WritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if _, err := LoadOrCreate(path); err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file should have been created: %v", err)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("AUTOMIX_CONFIG", "/tmp/custom.json")
	if got := GetConfigPath(); got != "/tmp/custom.json" {
		t.Errorf("GetConfigPath = %q, want /tmp/custom.json", got)
	}
}
