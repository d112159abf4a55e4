// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Descriptor thresholds and constants.
const (
	DefaultRolloffPercent = 0.85
	LowBandUpperHz        = 250.0  // Low band is f < 250 Hz.
	MidBandUpperHz        = 4000.0 // Mid band is 250 <= f <= 4000 Hz.
	DefaultPitchMinHz     = 80.0
	DefaultPitchMaxHz     = 800.0

	// DefaultTempoScale maps zero-crossings per second to BPM. It is a
	// placeholder constant with no empirical grounding.
	DefaultTempoScale = 0.1

	flatnessFloor = 1e-10
)

// RMS returns sqrt(mean(x²)), 0 for an empty slice.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs whose signs
// differ, treating zero as non-negative.
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// SpectralCentroid returns Σ(f·m)/Σm, 0 when the spectrum carries no energy.
func SpectralCentroid(s Spectrum) float64 {
	total := floats.Sum(s.Magnitudes)
	if total == 0 {
		return 0
	}
	return floats.Dot(s.Frequencies, s.Magnitudes) / total
}

// SpectralRolloff returns the lowest bin frequency at which the cumulative
// magnitude reaches percent of the total. When the threshold is never reached
// (or the spectrum is silent) it returns the highest bin frequency. The result
// is always one of s.Frequencies, or 0 for an empty spectrum.
func SpectralRolloff(s Spectrum, percent float64) float64 {
	n := s.Len()
	if n == 0 {
		return 0
	}
	total := floats.Sum(s.Magnitudes)
	if total == 0 {
		return s.Frequencies[n-1]
	}
	threshold := percent * total
	cumulative := 0.0
	for i, m := range s.Magnitudes {
		cumulative += m
		if cumulative >= threshold {
			return s.Frequencies[i]
		}
	}
	return s.Frequencies[n-1]
}

// SpectralFlatness returns the geometric mean over the arithmetic mean of the
// magnitudes, each floored at a tiny positive value. Near 1 is noise-like,
// near 0 tonal. A silent spectrum has flatness 0.
func SpectralFlatness(s Spectrum) float64 {
	if s.Len() == 0 || floats.Sum(s.Magnitudes) == 0 {
		return 0
	}
	floored := make([]float64, s.Len())
	for i, m := range s.Magnitudes {
		floored[i] = math.Max(m, flatnessFloor)
	}
	arithmetic := stat.Mean(floored, nil)
	if arithmetic == 0 {
		return 0
	}
	return stat.GeometricMean(floored, nil) / arithmetic
}

// BandEnergies sums magnitudes into the low, mid and high bands. Every bin
// lands in exactly one band, so the three sum to the total magnitude.
func BandEnergies(s Spectrum) FrequencyBands {
	var b FrequencyBands
	for i, f := range s.Frequencies {
		m := s.Magnitudes[i]
		switch {
		case f < LowBandUpperHz:
			b.Low += m
		case f <= MidBandUpperHz:
			b.Mid += m
		default:
			b.High += m
		}
	}
	return b
}

// DominantFrequencies returns the frequencies of the n strongest bins,
// strongest first, or fewer when the spectrum has fewer bins. Ties keep
// ascending bin order. An all-zero spectrum has no dominant frequency.
func DominantFrequencies(s Spectrum, n int) []float64 {
	idx := make([]int, 0, s.Len())
	energy := false
	for i, m := range s.Magnitudes {
		idx = append(idx, i)
		energy = energy || m > 0
	}
	if !energy {
		return []float64{}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case s.Magnitudes[a] > s.Magnitudes[b]:
			return -1
		case s.Magnitudes[a] < s.Magnitudes[b]:
			return 1
		default:
			return 0
		}
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]float64, len(idx))
	for i, k := range idx {
		out[i] = s.Frequencies[k]
	}
	return out
}

// EstimatePitch returns the frequency of the strongest bin within
// [minHz, maxHz], or 0 when that band is silent. This is plain dominant-bin
// tracking, so its resolution is one FFT bin.
func EstimatePitch(s Spectrum, minHz, maxHz float64) float64 {
	best := -1
	bestMag := 0.0
	for i, f := range s.Frequencies {
		if f < minHz || f > maxHz {
			continue
		}
		if s.Magnitudes[i] > bestMag {
			bestMag = s.Magnitudes[i]
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return s.Frequencies[best]
}

// EstimateTempo derives a BPM figure from the zero-crossing rate:
// zcr * sampleRate * scale, clamped to [MinTempo, MaxTempo]. It does not track
// beats and should be read as a coarse activity indicator.
func EstimateTempo(zcr, sampleRate, scale float64) float64 {
	raw := zcr * sampleRate * scale
	if math.IsNaN(raw) {
		return MinTempo
	}
	return math.Max(MinTempo, math.Min(MaxTempo, raw))
}
