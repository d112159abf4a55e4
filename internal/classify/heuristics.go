// SPDX-License-Identifier: MIT
package classify

import (
	"fmt"
	"math"

	"earshot/internal/analysis"
)

// Rule thresholds shared by the heuristic voters.
const (
	tonalFlatness = 0.2
	noisyFlatness = 0.5

	bandMajority = 0.5

	slowTempo     = 80.0
	moderateTempo = 120.0
	activeZCR     = 0.1

	highRMS   = 0.5
	mediumRMS = 0.2
)

// Heuristics returns the four built-in voters in a fixed order.
func Heuristics() []Classifier {
	return []Classifier{SpectralShape{}, BandDistribution{}, Temporal{}, Energy{}}
}

// SpectralShape votes from centroid, rolloff and flatness. The first matching
// rule wins.
type SpectralShape struct{}

func (SpectralShape) Name() string { return "spectral-shape" }

func (SpectralShape) Classify(f analysis.Features) (*Result, error) {
	if f.Bands.Total() == 0 {
		return nil, nil
	}
	switch {
	case f.SpectralFlatness < tonalFlatness && f.SpectralCentroid > 1000:
		return &Result{
			Label:       "Musical Content",
			Confidence:  0.7,
			Category:    Music,
			Description: fmt.Sprintf("Tonal spectrum (flatness %.2f) centred at %.0f Hz", f.SpectralFlatness, f.SpectralCentroid),
			Tags:        []string{"tonal", "harmonic"},
		}, nil
	case f.SpectralCentroid > 800 && f.SpectralCentroid < 3000 && f.SpectralRolloff < 4000:
		return &Result{
			Label:       "Speech",
			Confidence:  0.65,
			Category:    Speech,
			Description: fmt.Sprintf("Energy concentrated below %.0f Hz around %.0f Hz", f.SpectralRolloff, f.SpectralCentroid),
			Tags:        []string{"voice", "formants"},
		}, nil
	case f.SpectralCentroid > 2000 && f.SpectralRolloff > 6000:
		return &Result{
			Label:       "Animal Sounds",
			Confidence:  0.55,
			Category:    Animal,
			Description: fmt.Sprintf("Bright spectrum reaching %.0f Hz", f.SpectralRolloff),
			Tags:        []string{"high-frequency"},
		}, nil
	case f.SpectralFlatness > noisyFlatness:
		return &Result{
			Label:       "Environmental Noise",
			Confidence:  0.6,
			Category:    Environmental,
			Description: fmt.Sprintf("Noise-like spectrum (flatness %.2f)", f.SpectralFlatness),
			Tags:        []string{"noise", "broadband"},
		}, nil
	case f.SpectralCentroid < 500:
		return &Result{
			Label:       "Low-Frequency Sound",
			Confidence:  0.5,
			Category:    Other,
			Description: fmt.Sprintf("Spectral centroid at %.0f Hz", f.SpectralCentroid),
			Tags:        []string{"low-frequency", "rumble"},
		}, nil
	}
	return nil, nil
}

// BandDistribution votes from the share of energy in the low, mid and high
// bands.
type BandDistribution struct{}

func (BandDistribution) Name() string { return "band-distribution" }

func (BandDistribution) Classify(f analysis.Features) (*Result, error) {
	total := f.Bands.Total()
	if total == 0 {
		return nil, nil
	}
	low, mid, high := f.Bands.Low/total, f.Bands.Mid/total, f.Bands.High/total
	shares := fmt.Sprintf("low %.0f%%, mid %.0f%%, high %.0f%%", low*100, mid*100, high*100)

	// A majority share maps to (0.6, 0.8].
	confidence := func(share float64) float64 { return 0.4 + 0.4*share }

	switch {
	case low > bandMajority:
		return &Result{
			Label:       "Bass-Heavy Music",
			Confidence:  confidence(low),
			Category:    Music,
			Description: shares,
			Tags:        []string{"bass", "low-band"},
		}, nil
	case mid > bandMajority:
		return &Result{
			Label:       "Speech",
			Confidence:  confidence(mid),
			Category:    Speech,
			Description: shares,
			Tags:        []string{"mid-band"},
		}, nil
	case high > bandMajority:
		return &Result{
			Label:       "Animal Sounds",
			Confidence:  confidence(high),
			Category:    Animal,
			Description: shares,
			Tags:        []string{"high-band"},
		}, nil
	}
	return &Result{
		Label:       "Balanced Audio",
		Confidence:  0.4,
		Category:    Other,
		Description: shares,
		Tags:        []string{"balanced"},
	}, nil
}

// Temporal votes from the tempo bucket and the zero-crossing rate. A high
// crossing rate adds a speech candidate; the stronger candidate is returned.
type Temporal struct{}

func (Temporal) Name() string { return "temporal" }

func (Temporal) Classify(f analysis.Features) (*Result, error) {
	if f.RMSEnergy == 0 {
		return nil, nil
	}

	var r *Result
	switch {
	case f.Tempo < slowTempo:
		r = &Result{
			Label:      "Ambient Rhythm",
			Confidence: 0.4,
			Category:   Environmental,
			Tags:       []string{"slow"},
		}
	case f.Tempo < moderateTempo:
		r = &Result{
			Label:      "Conversational Pace",
			Confidence: 0.45,
			Category:   Speech,
			Tags:       []string{"moderate"},
		}
	default:
		r = &Result{
			Label:      "Rhythmic Content",
			Confidence: 0.5,
			Category:   Music,
			Tags:       []string{"fast"},
		}
	}
	r.Description = fmt.Sprintf("Approximate tempo %.0f BPM", f.Tempo)

	if f.ZeroCrossingRate > activeZCR {
		active := &Result{
			Label:       "High-Activity Speech",
			Confidence:  math.Min(0.9, 0.5+f.ZeroCrossingRate),
			Category:    Speech,
			Description: fmt.Sprintf("Zero-crossing rate %.3f", f.ZeroCrossingRate),
			Tags:        []string{"high-activity"},
		}
		if active.Confidence > r.Confidence {
			r = active
		}
	}
	return r, nil
}

// Energy votes from RMS loudness.
type Energy struct{}

func (Energy) Name() string { return "energy" }

func (Energy) Classify(f analysis.Features) (*Result, error) {
	if f.RMSEnergy == 0 {
		return nil, nil
	}
	desc := fmt.Sprintf("RMS level %.3f", f.RMSEnergy)
	switch {
	case f.RMSEnergy > highRMS:
		return &Result{Label: "Loud Music", Confidence: 0.55, Category: Music, Description: desc, Tags: []string{"loud"}}, nil
	case f.RMSEnergy > mediumRMS:
		return &Result{Label: "Speech-Level Audio", Confidence: 0.5, Category: Speech, Description: desc, Tags: []string{"medium"}}, nil
	}
	return &Result{Label: "Ambient Sound", Confidence: 0.4, Category: Environmental, Description: desc, Tags: []string{"quiet", "ambient"}}, nil
}
