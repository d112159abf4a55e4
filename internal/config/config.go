// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults for every configurable value. LoadConfig starts from these before
// reading the YAML file and the environment.
const (
	DefaultLogLevel = "info"

	// Analysis
	DefaultFFTSize           = 2048
	DefaultFFTWindow         = "Hann"
	DefaultMaxFrames         = 256
	DefaultRolloffPercent    = 0.85
	DefaultPitchMinHz        = 80.0
	DefaultPitchMaxHz        = 800.0
	DefaultTempoScale        = 0.1
	DefaultExtractionTimeout = 10 * time.Second

	// Recognition
	DefaultReadyTimeout      = 5 * time.Second
	DefaultClassifierTimeout = 2 * time.Second
	DefaultModelEnabled      = true
	DefaultModelTemperature  = 1.0

	// Transcription
	DefaultTranscriptionTimeout = 30 * time.Second

	// Transport
	DefaultUDPTargetAddress = "127.0.0.1:9090"

	// Store
	DefaultStoreEnabled = true
	DefaultStorePath    = "earshot.db"

	// Search location used when no path is given.
	DefaultConfigFile = "earshot.yaml"
)

// Config is the application configuration, loaded from YAML.
type Config struct {
	Debug         bool                `yaml:"debug"`     // Enable debug logging.
	LogLevel      string              `yaml:"log_level"` // debug, info, warn or error.
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Recognition   RecognitionConfig   `yaml:"recognition"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Transport     TransportConfig     `yaml:"transport"`
	Store         StoreConfig         `yaml:"store"`
}

// AnalysisConfig holds the spectral feature extractor settings.
type AnalysisConfig struct {
	FFTSize        int           `yaml:"fft_size"`           // Power of two.
	FFTWindow      string        `yaml:"fft_window"`         // Window function name, e.g. "Hann".
	MaxFrames      int           `yaml:"max_frames"`         // Frames averaged per spectrum (0 for all).
	RolloffPercent float64       `yaml:"rolloff_percent"`    // Share of energy below the rolloff, in (0, 1].
	PitchMinHz     float64       `yaml:"pitch_min_hz"`       // Lower edge of the pitch scan band.
	PitchMaxHz     float64       `yaml:"pitch_max_hz"`       // Upper edge of the pitch scan band.
	TempoScale     float64       `yaml:"tempo_scale"`        // Zero-crossings per second to BPM factor.
	Timeout        time.Duration `yaml:"extraction_timeout"` // Upper bound on one extraction.
}

// RecognitionConfig holds orchestrator settings.
type RecognitionConfig struct {
	ReadyTimeout      time.Duration `yaml:"ready_timeout"`      // Bounded wait for subsystem initialization.
	ClassifierTimeout time.Duration `yaml:"classifier_timeout"` // Per-classifier bound.
	ModelEnabled      bool          `yaml:"model_enabled"`      // Run the untrained model voter.
	ModelTemperature  float64       `yaml:"model_temperature"`  // Softmax temperature of the model voter.
}

// TranscriptionConfig configures the optional speech-to-text service.
type TranscriptionConfig struct {
	URL     string        `yaml:"url"`     // Base URL; empty disables transcription.
	Timeout time.Duration `yaml:"timeout"` // Request timeout.
}

// TransportConfig holds settings for publishing results over the network.
type TransportConfig struct {
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send feature packets over UDP.
	UDPTargetAddress string `yaml:"udp_target_address"` // host:port for UDP packets.
	WebSocketAddr    string `yaml:"websocket_addr"`     // Listen address for progress broadcast; empty disables it.
}

// StoreConfig configures the recognition history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // SQLite database file.
}

// NewConfig returns a Config holding the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Analysis: AnalysisConfig{
			FFTSize:        DefaultFFTSize,
			FFTWindow:      DefaultFFTWindow,
			MaxFrames:      DefaultMaxFrames,
			RolloffPercent: DefaultRolloffPercent,
			PitchMinHz:     DefaultPitchMinHz,
			PitchMaxHz:     DefaultPitchMaxHz,
			TempoScale:     DefaultTempoScale,
			Timeout:        DefaultExtractionTimeout,
		},
		Recognition: RecognitionConfig{
			ReadyTimeout:      DefaultReadyTimeout,
			ClassifierTimeout: DefaultClassifierTimeout,
			ModelEnabled:      DefaultModelEnabled,
			ModelTemperature:  DefaultModelTemperature,
		},
		Transcription: TranscriptionConfig{
			Timeout: DefaultTranscriptionTimeout,
		},
		Transport: TransportConfig{
			UDPTargetAddress: DefaultUDPTargetAddress,
		},
		Store: StoreConfig{
			Enabled: DefaultStoreEnabled,
			Path:    DefaultStorePath,
		},
	}
}
