package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	MusicDirectories []string `json:"music_directories"`
	CrossfadeSeconds float64  `json:"crossfade_seconds"`
	CurveResolution  int      `json:"curve_resolution"`
	SampleRate       int      `json:"sample_rate"`
	Debug            bool     `json:"debug"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		MusicDirectories: []string{},
		CrossfadeSeconds: 8,
		CurveResolution:  512,
		SampleRate:       44100,
		Debug:            false,
	}
}

// LoadConfig reads and unmarshals configuration from file, then applies any
// environment overrides (a .env file is honored when present).
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// applyEnv overrides config fields from the environment. godotenv pulls in a
// local .env first; a missing .env is not an error.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("AUTOMIX_MUSIC_DIR"); v != "" {
		c.MusicDirectories = []string{v}
	}
	if v := os.Getenv("AUTOMIX_CROSSFADE_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.CrossfadeSeconds = f
		}
	}
	if v := os.Getenv("AUTOMIX_CURVE_RESOLUTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CurveResolution = n
		}
	}
	if v := os.Getenv("AUTOMIX_SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SampleRate = n
		}
	}
	if v := os.Getenv("AUTOMIX_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Save default config if file didn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("AUTOMIX_CONFIG"); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "automix", "config.json")
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "automix", "config.json")
}
