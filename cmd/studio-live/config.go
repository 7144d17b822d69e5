package main

import (
	"fmt"
	"os"
	"time"

	yaml "go.yaml.in/yaml/v2"
)

// Config configures the studio live CLI.
type Config struct {
	// Endpoint is an optional studio live WebSocket URL. When set, the
	// session talks to it instead of the Gemini Live API directly.
	Endpoint string `yaml:"endpoint"`

	// Model and Voice apply to the WebSocket endpoint.
	Model string `yaml:"model"`
	Voice string `yaml:"voice"`

	// DataDir is where projects and favorites are stored as blob files.
	DataDir string `yaml:"data_dir"`

	// PostgresDSN switches blob storage from files to Postgres when set.
	PostgresDSN string `yaml:"postgres_dsn"`

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr"`

	// FrameDuration is the microphone frame length.
	FrameDuration time.Duration `yaml:"frame_duration"`

	// TranscriptName names the asset the transcript is saved under.
	TranscriptName string `yaml:"transcript_name"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:        "data",
		FrameDuration:  20 * time.Millisecond,
		TranscriptName: "Live Conversation",
	}
}

// LoadConfig loads configuration from a YAML file. If path is empty it
// reads IOA_CONFIG; if still empty, defaults are returned.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("IOA_CONFIG")
	}

	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	if cfg.FrameDuration <= 0 {
		cfg.FrameDuration = 20 * time.Millisecond
	}
	return cfg, nil
}
