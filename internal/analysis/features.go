// SPDX-License-Identifier: MIT
package analysis

import "time"

// Tempo bounds in BPM. Every Features value carries a tempo inside them.
const (
	MinTempo = 60.0
	MaxTempo = 200.0
)

// MaxDominantFrequencies caps Features.DominantFrequencies.
const MaxDominantFrequencies = 5

// FeatureVectorLen is the length of the slice returned by Features.Vector.
const FeatureVectorLen = 10 + MaxDominantFrequencies

// FrequencyBands holds the summed spectral magnitude below 250 Hz (Low),
// between 250 and 4000 Hz inclusive (Mid) and above 4000 Hz (High).
type FrequencyBands struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// Total returns Low + Mid + High.
func (b FrequencyBands) Total() float64 { return b.Low + b.Mid + b.High }

// Features is the descriptor set for one recording. It is produced once per
// extraction and never modified afterwards; classifiers receive copies.
type Features struct {
	SpectralCentroid    float64        `json:"spectral_centroid"`
	SpectralRolloff     float64        `json:"spectral_rolloff"`
	SpectralFlatness    float64        `json:"spectral_flatness"`
	ZeroCrossingRate    float64        `json:"zero_crossing_rate"`
	RMSEnergy           float64        `json:"rms_energy"`
	DominantFrequencies []float64      `json:"dominant_frequencies"`
	Bands               FrequencyBands `json:"frequency_bands"`
	Pitch               float64        `json:"pitch"` // Hz, 0 when undetected.
	Tempo               float64        `json:"tempo"` // Approximate BPM, see EstimateTempo.

	SampleRate float64       `json:"sample_rate"`
	Duration   time.Duration `json:"duration"`
}

// Clone returns a deep copy, so a classifier can never observe another
// goroutine's writes through the shared DominantFrequencies slice.
func (f Features) Clone() Features {
	c := f
	if f.DominantFrequencies != nil {
		c.DominantFrequencies = append([]float64(nil), f.DominantFrequencies...)
	}
	return c
}

// Vector flattens the features in a fixed order: centroid, rolloff, flatness,
// zcr, rms, low, mid, high, pitch, tempo, then the dominant frequencies padded
// with zeros to MaxDominantFrequencies.
func (f Features) Vector() []float64 {
	v := make([]float64, 0, FeatureVectorLen)
	v = append(v,
		f.SpectralCentroid,
		f.SpectralRolloff,
		f.SpectralFlatness,
		f.ZeroCrossingRate,
		f.RMSEnergy,
		f.Bands.Low,
		f.Bands.Mid,
		f.Bands.High,
		f.Pitch,
		f.Tempo,
	)
	for i := range MaxDominantFrequencies {
		if i < len(f.DominantFrequencies) {
			v = append(v, f.DominantFrequencies[i])
		} else {
			v = append(v, 0)
		}
	}
	return v
}
