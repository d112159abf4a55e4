// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"earshot/internal/audio"
	applog "earshot/internal/log"
	"earshot/pkg/bitint"
)

// Extractor defaults.
const (
	DefaultFFTSize           = 2048
	DefaultMaxFrames         = 256
	DefaultExtractionTimeout = 10 * time.Second
)

// ExtractorConfig tunes the spectral feature extractor.
type ExtractorConfig struct {
	FFTSize        int
	Window         WindowFunc
	MaxFrames      int
	RolloffPercent float64
	PitchMinHz     float64
	PitchMaxHz     float64
	TempoScale     float64
	Timeout        time.Duration
}

// DefaultExtractorConfig returns the standard 2048-point Hann configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		FFTSize:        DefaultFFTSize,
		Window:         Hann,
		MaxFrames:      DefaultMaxFrames,
		RolloffPercent: DefaultRolloffPercent,
		PitchMinHz:     DefaultPitchMinHz,
		PitchMaxHz:     DefaultPitchMaxHz,
		TempoScale:     DefaultTempoScale,
		Timeout:        DefaultExtractionTimeout,
	}
}

// Validate checks the configuration for values the extractor cannot use.
func (c ExtractorConfig) Validate() error {
	if !bitint.IsPowerOfTwo(c.FFTSize) {
		return fmt.Errorf("fft size must be a power of 2, got %d (nearest is %d)", c.FFTSize, bitint.NearestPowerOfTwo(c.FFTSize))
	}
	if c.RolloffPercent <= 0 || c.RolloffPercent > 1 {
		return fmt.Errorf("rolloff percent must be in (0, 1], got %v", c.RolloffPercent)
	}
	if c.PitchMinHz < 0 || c.PitchMaxHz <= c.PitchMinHz {
		return fmt.Errorf("pitch band [%v, %v] is not ordered", c.PitchMinHz, c.PitchMaxHz)
	}
	if c.TempoScale <= 0 {
		return fmt.Errorf("tempo scale must be positive, got %v", c.TempoScale)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("extraction timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxFrames < 0 {
		return fmt.Errorf("max frames must not be negative, got %d", c.MaxFrames)
	}
	return nil
}

// Extractor is the spectral FeatureExtractor. Spectrum analyzers are created
// lazily per sample rate and reused across calls.
type Extractor struct {
	cfg ExtractorConfig
	log applog.Logger

	mu        sync.Mutex
	analyzers map[float64]*SpectrumAnalyzer
}

var _ FeatureExtractor = (*Extractor)(nil)

// NewExtractor validates cfg and returns an Extractor.
func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := applog.For("extractor")
	l.Debugf("initializing (fft=%d window=%s max_frames=%d timeout=%s)",
		cfg.FFTSize, cfg.Window, cfg.MaxFrames, cfg.Timeout)
	return &Extractor{
		cfg:       cfg,
		log:       l,
		analyzers: make(map[float64]*SpectrumAnalyzer),
	}, nil
}

func (e *Extractor) analyzerFor(sampleRate float64) (*SpectrumAnalyzer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.analyzers[sampleRate]; ok {
		return a, nil
	}
	a, err := NewSpectrumAnalyzer(e.cfg.FFTSize, sampleRate, e.cfg.Window, e.cfg.MaxFrames)
	if err != nil {
		return nil, err
	}
	e.analyzers[sampleRate] = a
	return a, nil
}

type extraction struct {
	features Features
	spectrum Spectrum
	err      error
}

// Extract computes Features from channel 0 of buf within the configured
// timeout. A timed-out extraction returns a *TimeoutError and no features.
func (e *Extractor) Extract(ctx context.Context, buf *audio.Buffer) (Features, error) {
	res, err := e.run(ctx, buf)
	if err != nil {
		return Features{}, err
	}
	return res.features, nil
}

// Spectrum returns the frame-averaged spectrum Extract works from.
func (e *Extractor) Spectrum(ctx context.Context, buf *audio.Buffer) (Spectrum, error) {
	res, err := e.run(ctx, buf)
	if err != nil {
		return Spectrum{}, err
	}
	return res.spectrum, nil
}

func (e *Extractor) run(ctx context.Context, buf *audio.Buffer) (extraction, error) {
	if err := buf.Validate(); err != nil {
		return extraction{}, err
	}
	analyzer, err := e.analyzerFor(buf.SampleRate())
	if err != nil {
		return extraction{}, &audio.DecodeError{Reason: "unusable sample rate", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	// Buffered so the worker never blocks if we stop waiting for it.
	done := make(chan extraction, 1)
	go func() {
		done <- e.safeCompute(ctx, analyzer, buf)
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return extraction{}, e.classify(ctx, res.err)
		}
		return res, nil
	case <-ctx.Done():
		return extraction{}, e.classify(ctx, ctx.Err())
	}
}

// classify maps context failures onto the extractor's error taxonomy.
func (e *Extractor) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.log.Warnf("extraction exceeded %s", e.cfg.Timeout)
		return &TimeoutError{Op: "feature extraction", Limit: e.cfg.Timeout}
	}
	return err
}

// safeCompute runs compute, turning a panic into an extraction error.
func (e *Extractor) safeCompute(ctx context.Context, analyzer *SpectrumAnalyzer, buf *audio.Buffer) (res extraction) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("extraction panicked: %v", r)
			res = extraction{err: fmt.Errorf("feature extraction panicked: %v", r)}
		}
	}()
	return e.compute(ctx, analyzer, buf)
}

func (e *Extractor) compute(ctx context.Context, analyzer *SpectrumAnalyzer, buf *audio.Buffer) extraction {
	samples := buf.Channel(0)

	spec, err := analyzer.Compute(ctx, samples)
	if err != nil {
		return extraction{err: err}
	}

	zcr := ZeroCrossingRate(samples)
	f := Features{
		SpectralCentroid:    SpectralCentroid(spec),
		SpectralRolloff:     SpectralRolloff(spec, e.cfg.RolloffPercent),
		SpectralFlatness:    SpectralFlatness(spec),
		ZeroCrossingRate:    zcr,
		RMSEnergy:           RMS(samples),
		DominantFrequencies: DominantFrequencies(spec, MaxDominantFrequencies),
		Bands:               BandEnergies(spec),
		Pitch:               EstimatePitch(spec, e.cfg.PitchMinHz, e.cfg.PitchMaxHz),
		Tempo:               EstimateTempo(zcr, buf.SampleRate(), e.cfg.TempoScale),
		SampleRate:          buf.SampleRate(),
		Duration:            buf.Duration(),
	}
	e.log.Debugf("extracted centroid=%.1fHz rolloff=%.1fHz flatness=%.3f rms=%.4f pitch=%.1fHz",
		f.SpectralCentroid, f.SpectralRolloff, f.SpectralFlatness, f.RMSEnergy, f.Pitch)
	return extraction{features: f, spectrum: spec}
}
