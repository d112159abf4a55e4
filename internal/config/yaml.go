// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"earshot/internal/analysis"
	applog "earshot/internal/log"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches the working directory for DefaultConfigFile and falls back to the
// built-in defaults when none exists. Environment overrides are applied last, then
// the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		} else {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting the application cannot run with.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	ecfg, err := c.ExtractorConfig()
	if err != nil {
		return err
	}
	if err := ecfg.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if c.Recognition.ReadyTimeout <= 0 {
		return errors.New("recognition.ready_timeout must be positive")
	}
	if c.Recognition.ClassifierTimeout <= 0 {
		return errors.New("recognition.classifier_timeout must be positive")
	}
	if c.Recognition.ModelEnabled && c.Recognition.ModelTemperature <= 0 {
		return errors.New("recognition.model_temperature must be positive")
	}

	if c.Transcription.URL != "" {
		if !strings.HasPrefix(c.Transcription.URL, "http://") && !strings.HasPrefix(c.Transcription.URL, "https://") {
			return fmt.Errorf("transcription.url %q must be an http(s) URL", c.Transcription.URL)
		}
		if c.Transcription.Timeout <= 0 {
			return errors.New("transcription.timeout must be positive")
		}
	}

	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return errors.New("transport.udp_target_address must be set when UDP is enabled")
		}
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return errors.New("store.path must be set when the store is enabled")
	}
	return nil
}

// ExtractorConfig converts the analysis section into extractor settings.
func (c *Config) ExtractorConfig() (analysis.ExtractorConfig, error) {
	window, err := analysis.ParseWindowFunc(c.Analysis.FFTWindow)
	if err != nil {
		return analysis.ExtractorConfig{}, fmt.Errorf("analysis.fft_window: %w", err)
	}
	return analysis.ExtractorConfig{
		FFTSize:        c.Analysis.FFTSize,
		Window:         window,
		MaxFrames:      c.Analysis.MaxFrames,
		RolloffPercent: c.Analysis.RolloffPercent,
		PitchMinHz:     c.Analysis.PitchMinHz,
		PitchMaxHz:     c.Analysis.PitchMaxHz,
		TempoScale:     c.Analysis.TempoScale,
		Timeout:        c.Analysis.Timeout,
	}, nil
}

// applyEnvOverrides lets ENV_* variables replace file and default values.
// Unparseable values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Infof("configuration: overriding debug from env: %v", bVal)
		} else {
			applog.Warnf("configuration: ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("configuration: overriding log_level from env: %s", val)
	}

	// ENV_TRANSCRIBE_URL
	if val, ok := os.LookupEnv("ENV_TRANSCRIBE_URL"); ok {
		c.Transcription.URL = val
		applog.Infof("configuration: overriding transcription.url from env: %s", val)
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Infof("configuration: overriding transport.udp_enabled from env: %v", bVal)
		} else {
			applog.Warnf("configuration: ignoring ENV_UDP_ENABLED=%q: %v", val, err)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("configuration: overriding transport.udp_target_address from env: %s", val)
	}

	// ENV_STORE_PATH
	if val, ok := os.LookupEnv("ENV_STORE_PATH"); ok {
		c.Store.Path = val
		applog.Infof("configuration: overriding store.path from env: %s", val)
	}
}
