// SPDX-License-Identifier: MIT
package recognition

import (
	"strings"
	"unicode"
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "happy": {}, "love": {}, "excellent": {}, "nice": {},
	"wonderful": {}, "amazing": {}, "thanks": {}, "thank": {}, "glad": {}, "awesome": {},
	"beautiful": {}, "best": {}, "fantastic": {}, "enjoy": {}, "pleased": {}, "yes": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "sad": {}, "hate": {}, "terrible": {}, "awful": {}, "angry": {},
	"horrible": {}, "worst": {}, "poor": {}, "sorry": {}, "problem": {}, "wrong": {},
	"upset": {}, "annoying": {}, "broken": {}, "fail": {}, "failed": {}, "no": {},
}

// sentimentThreshold is the |score| above which a transcript is polarised.
const sentimentThreshold = 0.2

// AnalyzeSentiment scores text with a small word lexicon. The score is
// (positive - negative) / (positive + negative), 0 when no lexicon word occurs.
func AnalyzeSentiment(text string) Sentiment {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	var pos, neg int
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}

	s := Sentiment{Label: "neutral"}
	if pos+neg == 0 {
		return s
	}
	s.Score = float64(pos-neg) / float64(pos+neg)
	switch {
	case s.Score > sentimentThreshold:
		s.Label = "positive"
	case s.Score < -sentimentThreshold:
		s.Label = "negative"
	}
	return s
}
