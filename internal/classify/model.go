// SPDX-License-Identifier: MIT
package classify

import (
	"fmt"
	"math"

	"earshot/internal/analysis"

	"gonum.org/v1/gonum/floats"
)

// ModelClassifier is an untrained linear scorer over a normalised feature
// vector. Its weights are fixed constants, not learned, so it is a
// deterministic stand-in for a real model behind the same interface.
type ModelClassifier struct {
	// Temperature sharpens (<1) or flattens (>1) the softmax. Zero means 1.
	Temperature float64
}

func (ModelClassifier) Name() string { return "model-stub" }

// modelWeights holds one row per category over the normalised vector:
// centroid, rolloff, flatness, zcr, rms, low, mid, high, pitch, tempo, dom1..dom5.
var modelWeights = map[Category][analysis.FeatureVectorLen]float64{
	Music:         {0.5, 0.2, -2.0, -0.5, 1.5, 0.8, 0.4, -0.2, 1.2, 1.0, 0.3, 0.2, 0.1, 0.1, 0.1},
	Speech:        {0.8, -0.5, -0.8, 0.6, 0.6, -0.2, 1.6, -0.6, 0.8, 0.2, 0.4, 0.2, 0.1, 0, 0},
	Environmental: {0.2, 0.8, 2.2, 0.4, -0.6, 0.2, -0.2, 0.6, -0.8, -0.5, 0, 0, 0, 0, 0},
	Animal:        {1.4, 1.2, 0.2, 0.8, 0.1, -0.8, -0.2, 1.8, -0.4, 0.1, 0.6, 0.4, 0.2, 0.1, 0},
	Vehicle:       {-1.0, -0.6, 0.8, -0.4, 0.8, 1.8, -0.4, -0.8, -0.6, -0.2, -0.3, -0.2, 0, 0, 0},
	Other:         {0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
}

var modelLabels = map[Category]string{
	Music:         "Music",
	Speech:        "Speech",
	Environmental: "Environmental Sound",
	Animal:        "Animal Sounds",
	Vehicle:       "Vehicle Noise",
	Other:         "Unclassified Audio",
}

// normalise maps every component of f.Vector() roughly into [0, 1].
func normalise(f analysis.Features) []float64 {
	nyquist := f.SampleRate / 2
	if nyquist <= 0 {
		nyquist = 22050
	}
	v := f.Vector()
	total := f.Bands.Total()
	for i := range v {
		switch {
		case i == 0 || i == 1 || i >= 10:
			v[i] /= nyquist
		case i >= 5 && i <= 7:
			if total > 0 {
				v[i] /= total
			}
		case i == 8:
			v[i] /= analysis.DefaultPitchMaxHz
		case i == 9:
			v[i] = (v[i] - analysis.MinTempo) / (analysis.MaxTempo - analysis.MinTempo)
		}
	}
	return v
}

// Classify returns the softmax-best category. It abstains on silent input.
func (m ModelClassifier) Classify(f analysis.Features) (*Result, error) {
	if f.RMSEnergy == 0 {
		return nil, nil
	}
	temp := m.Temperature
	if temp == 0 {
		temp = 1
	}
	if temp < 0 {
		return nil, fmt.Errorf("model temperature must be positive, got %v", temp)
	}

	v := normalise(f)
	logits := make([]float64, len(Categories))
	for i, c := range Categories {
		w := modelWeights[c]
		logits[i] = floats.Dot(w[:], v) / temp
	}

	// Softmax, shifted by the max logit for stability.
	maxLogit := floats.Max(logits)
	for i := range logits {
		logits[i] = math.Exp(logits[i] - maxLogit)
	}
	floats.Scale(1/floats.Sum(logits), logits)

	best := floats.MaxIdx(logits)
	c := Categories[best]
	return &Result{
		Label:       modelLabels[c],
		Confidence:  logits[best],
		Category:    c,
		Description: fmt.Sprintf("Untrained linear model vote (p=%.2f)", logits[best]),
		Tags:        []string{"model", "stub"},
	}, nil
}
