// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"earshot/internal/analysis"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "earshot.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Analysis.FFTSize != DefaultFFTSize || cfg.Recognition.ReadyTimeout != DefaultReadyTimeout {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
analysis:
  fft_size: 4096
  fft_window: hamming
  extraction_timeout: 3s
recognition:
  ready_timeout: 250ms
  model_enabled: false
transcription:
  url: http://localhost:8000
store:
  path: /tmp/history.db
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.Analysis.FFTSize != 4096 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Analysis.Timeout != 3*time.Second || cfg.Recognition.ReadyTimeout != 250*time.Millisecond {
		t.Errorf("durations = %s, %s", cfg.Analysis.Timeout, cfg.Recognition.ReadyTimeout)
	}
	if cfg.Recognition.ModelEnabled {
		t.Error("model_enabled: false was not applied")
	}
	// Unset keys keep their defaults.
	if cfg.Analysis.RolloffPercent != DefaultRolloffPercent || cfg.Recognition.ClassifierTimeout != DefaultClassifierTimeout {
		t.Errorf("defaults lost for unset keys: %+v", cfg)
	}

	ecfg, err := cfg.ExtractorConfig()
	if err != nil {
		t.Fatalf("ExtractorConfig: %v", err)
	}
	if ecfg.Window != analysis.Hamming || ecfg.FFTSize != 4096 {
		t.Errorf("ExtractorConfig = %+v", ecfg)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("ENV_LOG_LEVEL", "warn")
	t.Setenv("ENV_TRANSCRIBE_URL", "https://asr.example.com")
	t.Setenv("ENV_UDP_ENABLED", "1")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "10.0.0.2:7000")
	t.Setenv("ENV_STORE_PATH", "/var/lib/earshot.db")

	path := writeTempConfig(t, "debug: false\nlog_level: info\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Debug || cfg.LogLevel != "warn" {
		t.Errorf("debug/log level = %v/%s", cfg.Debug, cfg.LogLevel)
	}
	if cfg.Transcription.URL != "https://asr.example.com" {
		t.Errorf("transcription.url = %s", cfg.Transcription.URL)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.2:7000" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Store.Path != "/var/lib/earshot.db" {
		t.Errorf("store.path = %s", cfg.Store.Path)
	}
}

func TestLoadConfig_EnvIgnoresBadBool(t *testing.T) {
	t.Setenv("ENV_UDP_ENABLED", "sometimes")
	cfg, err := LoadConfig(writeTempConfig(t, "transport:\n  udp_enabled: false\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Transport.UDPEnabled {
		t.Error("unparseable ENV_UDP_ENABLED changed the setting")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad window", func(c *Config) { c.Analysis.FFTWindow = "triangle" }, "fft_window"},
		{"fft not power of two", func(c *Config) { c.Analysis.FFTSize = 1000 }, "power of 2"},
		{"rolloff out of range", func(c *Config) { c.Analysis.RolloffPercent = 1.2 }, "rolloff"},
		{"pitch band inverted", func(c *Config) { c.Analysis.PitchMinHz = 900 }, "pitch band"},
		{"zero ready timeout", func(c *Config) { c.Recognition.ReadyTimeout = 0 }, "ready_timeout"},
		{"zero classifier timeout", func(c *Config) { c.Recognition.ClassifierTimeout = 0 }, "classifier_timeout"},
		{"bad transcription url", func(c *Config) { c.Transcription.URL = "ftp://x" }, "transcription.url"},
		{"udp missing port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "missing port"},
		{"store without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
	}

	if err := NewConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
