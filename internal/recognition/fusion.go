// SPDX-License-Identifier: MIT
package recognition

import (
	"fmt"

	"earshot/internal/classify"
)

// fusion is the outcome of merging the model vote, the transcript and the
// aggregated heuristic vote.
type fusion struct {
	summary    string
	confidence float64
	source     Source
	audioType  classify.AudioType
}

type candidate struct {
	source     Source
	summary    string
	confidence float64
}

// fuse walks the sources in priority order (model, transcription, heuristic).
// A later source replaces the current pick only when its confidence is
// strictly higher, so ties go to the higher-priority source. A transcript
// next to a non-speech classification marks the audio as mixed and the
// summary names both.
func fuse(agg classify.Analysis, model *classify.Result, tr *Transcript) fusion {
	var pick *candidate
	consider := func(c candidate) {
		if pick == nil || c.confidence > pick.confidence {
			pick = &c
		}
	}

	if model != nil {
		consider(candidate{SourceModel, model.Label, model.Confidence})
	}
	spoken := tr.Spoken()
	speechSummary := ""
	if spoken {
		speechSummary = fmt.Sprintf("Speech: %q", tr.Text)
		consider(candidate{SourceTranscription, speechSummary, tr.Confidence})
	}
	consider(candidate{SourceHeuristic, agg.Primary.Label, agg.Primary.Confidence})

	out := fusion{
		summary:    pick.summary,
		confidence: pick.confidence,
		source:     pick.source,
		audioType:  agg.AudioType,
	}
	switch pick.source {
	case SourceModel:
		if t := classify.AudioTypeOf([]classify.Category{model.Category}); t != classify.TypeMixed {
			out.audioType = t
		}
	case SourceTranscription:
		out.audioType = classify.TypeSpeech
	}

	if spoken && agg.Primary.Category != classify.Speech {
		out.audioType = classify.TypeMixed
		if pick.source == SourceTranscription {
			out.summary = speechSummary + " over " + agg.Primary.Label
		} else {
			out.summary = pick.summary + " with " + speechSummary
		}
	}
	return out
}
