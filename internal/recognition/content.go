// SPDX-License-Identifier: MIT
package recognition

import (
	"fmt"
	"strings"
)

// detectedContent lists the human-readable facts behind a result, strongest
// first, followed by one note per degraded step.
func detectedContent(res *Result, v votes) []string {
	facts := make([]string, 0, 12)
	agg := res.Classification
	f := res.Features

	facts = append(facts, fmt.Sprintf("%s (%s, %.0f%%)", agg.Primary.Label, agg.Primary.Category, agg.Primary.Confidence*100))
	for _, r := range agg.Secondary {
		facts = append(facts, fmt.Sprintf("Also possible: %s (%.0f%%)", r.Label, r.Confidence*100))
	}
	if v.model != nil {
		facts = append(facts, fmt.Sprintf("Model vote: %s (%.0f%%)", v.model.Label, v.model.Confidence*100))
	}
	if res.Transcription != "" {
		fact := fmt.Sprintf("Spoken words: %q", res.Transcription)
		if res.Language != "" {
			fact += " [" + res.Language + "]"
		}
		facts = append(facts, fact)
	}
	if res.Sentiment != nil {
		facts = append(facts, fmt.Sprintf("Sentiment: %s (%+.2f)", res.Sentiment.Label, res.Sentiment.Score))
	}

	if len(f.DominantFrequencies) > 0 {
		facts = append(facts, fmt.Sprintf("Dominant frequency: %.0f Hz", f.DominantFrequencies[0]))
	}
	if f.Pitch > 0 {
		facts = append(facts, fmt.Sprintf("Pitch: %.0f Hz", f.Pitch))
	}
	if f.RMSEnergy > 0 {
		facts = append(facts, fmt.Sprintf("Tempo: ~%.0f BPM (approximate)", f.Tempo))
	}
	if total := f.Bands.Total(); total > 0 {
		facts = append(facts, fmt.Sprintf("Energy balance: low %.0f%%, mid %.0f%%, high %.0f%%",
			f.Bands.Low/total*100, f.Bands.Mid/total*100, f.Bands.High/total*100))
	} else {
		facts = append(facts, "No measurable signal energy")
	}

	for _, err := range v.failures {
		facts = append(facts, "Degraded: "+strings.TrimSpace(err.Error()))
	}
	return facts
}
