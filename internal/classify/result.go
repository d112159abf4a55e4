// SPDX-License-Identifier: MIT

// Package classify holds the heuristic voters that label a feature set and the
// aggregator that ranks their votes.
package classify

import "earshot/internal/analysis"

// Category is the coarse class a Result votes for.
type Category string

const (
	Music         Category = "music"
	Speech        Category = "speech"
	Environmental Category = "environmental"
	Animal        Category = "animal"
	Vehicle       Category = "vehicle"
	Other         Category = "other"
)

// Categories lists every Category in declaration order.
var Categories = []Category{Music, Speech, Environmental, Animal, Vehicle, Other}

// AudioType is the overall kind of content an Analysis describes.
type AudioType string

const (
	TypeMusic         AudioType = "music"
	TypeSpeech        AudioType = "speech"
	TypeEnvironmental AudioType = "environmental"
	TypeMixed         AudioType = "mixed"
)

// Result is one classifier's vote.
type Result struct {
	Label       string   `json:"label"`
	Confidence  float64  `json:"confidence"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Clone returns a copy that shares no memory with r.
func (r Result) Clone() Result {
	c := r
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	return c
}

// Analysis is the ranked outcome of aggregating classifier votes.
type Analysis struct {
	Primary            Result     `json:"primary"`
	Secondary          []Result   `json:"secondary"`
	OverallConfidence  float64    `json:"overall_confidence"`
	DetectedCategories []Category `json:"detected_categories"`
	AudioType          AudioType  `json:"audio_type"`
}

// Clone returns a deep copy of a.
func (a Analysis) Clone() Analysis {
	c := a
	c.Primary = a.Primary.Clone()
	if a.Secondary != nil {
		c.Secondary = make([]Result, len(a.Secondary))
		for i, r := range a.Secondary {
			c.Secondary[i] = r.Clone()
		}
	}
	if a.DetectedCategories != nil {
		c.DetectedCategories = append([]Category(nil), a.DetectedCategories...)
	}
	return c
}

// Classifier votes on a feature set. A nil Result with a nil error means the
// classifier does not apply to this input. Implementations must be safe for
// concurrent use and must not retain f.
type Classifier interface {
	Name() string
	Classify(f analysis.Features) (*Result, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc struct {
	ID string
	Fn func(analysis.Features) (*Result, error)
}

func (c ClassifierFunc) Name() string { return c.ID }

func (c ClassifierFunc) Classify(f analysis.Features) (*Result, error) { return c.Fn(f) }
