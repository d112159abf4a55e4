// SPDX-License-Identifier: MIT
package classify

import (
	"cmp"
	"slices"
)

// MaxSecondary caps Analysis.Secondary.
const MaxSecondary = 2

// Fallback values used when no classifier produced a vote.
const (
	FallbackLabel      = "Audio Content"
	FallbackConfidence = 0.5
)

// audioTypePrecedence decides Analysis.AudioType: the first category present
// wins, anything else is mixed.
var audioTypePrecedence = []struct {
	category Category
	audio    AudioType
}{
	{Music, TypeMusic},
	{Speech, TypeSpeech},
	{Environmental, TypeEnvironmental},
}

// FallbackAnalysis is returned by Aggregate when every vote is nil.
func FallbackAnalysis() Analysis {
	return Analysis{
		Primary: Result{
			Label:       FallbackLabel,
			Confidence:  FallbackConfidence,
			Category:    Other,
			Description: "No classifier produced a confident match",
			Tags:        []string{},
		},
		Secondary:          []Result{},
		OverallConfidence:  FallbackConfidence,
		DetectedCategories: []Category{Other},
		AudioType:          TypeMixed,
	}
}

// Aggregate ranks the non-nil votes by confidence, keeping input order on
// ties. It never modifies results and returns FallbackAnalysis when nothing
// is left.
func Aggregate(results []*Result) Analysis {
	valid := make([]Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			valid = append(valid, r.Clone())
		}
	}
	if len(valid) == 0 {
		return FallbackAnalysis()
	}

	slices.SortStableFunc(valid, func(a, b Result) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	var sum float64
	detected := make([]Category, 0, len(valid))
	for _, r := range valid {
		sum += r.Confidence
		if !slices.Contains(detected, r.Category) {
			detected = append(detected, r.Category)
		}
	}

	end := min(len(valid), 1+MaxSecondary)
	return Analysis{
		Primary:            valid[0],
		Secondary:          valid[1:end:end],
		OverallConfidence:  sum / float64(len(valid)),
		DetectedCategories: detected,
		AudioType:          AudioTypeOf(detected),
	}
}

// AudioTypeOf returns the audio type implied by a set of categories: music,
// then speech, then environmental, otherwise mixed.
func AudioTypeOf(detected []Category) AudioType {
	for _, p := range audioTypePrecedence {
		if slices.Contains(detected, p.category) {
			return p.audio
		}
	}
	return TypeMixed
}
