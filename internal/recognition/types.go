// SPDX-License-Identifier: MIT

// Package recognition sequences feature extraction, the classifier vote and
// the optional transcription step, and fuses their outputs into one Result.
package recognition

import (
	"time"

	"earshot/internal/analysis"
	"earshot/internal/classify"
)

// Stage names one step of a recognition call.
type Stage string

const (
	StageInitializing      Stage = "initializing"
	StageFeatureExtraction Stage = "feature-extraction"
	StageClassification    Stage = "classification"
	StageFusion            Stage = "fusion"
	StageComplete          Stage = "complete"
)

// Progress is a transient status event. Progress values emitted by one call
// never decrease and reach 100 only at StageComplete.
type Progress struct {
	Stage    Stage  `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// ProgressFunc receives progress events on the calling goroutine.
type ProgressFunc func(Progress)

// Source names the signal fusion chose the primary recognition from.
type Source string

const (
	SourceModel         Source = "model"
	SourceTranscription Source = "transcription"
	SourceHeuristic     Source = "heuristic"
)

// Sentiment is the polarity of a transcript.
type Sentiment struct {
	Label string  `json:"label"` // positive, negative or neutral
	Score float64 `json:"score"` // -1 (negative) .. 1 (positive)
}

// Result is the fused outcome of one recognition call. The caller owns it.
type Result struct {
	ID                 string             `json:"id"`
	PrimaryRecognition string             `json:"primary_recognition"`
	Confidence         float64            `json:"confidence"`
	Source             Source             `json:"source"`
	Transcription      string             `json:"transcription,omitempty"`
	Sentiment          *Sentiment         `json:"sentiment,omitempty"`
	Language           string             `json:"language,omitempty"`
	AudioType          classify.AudioType `json:"audio_type"`
	DetectedContent    []string           `json:"detected_content"`
	AnalysisTime       int64              `json:"analysis_time_ms"`
	Timestamp          time.Time          `json:"timestamp"`

	Features       analysis.Features `json:"features"`
	Classification classify.Analysis `json:"classification"`
}
