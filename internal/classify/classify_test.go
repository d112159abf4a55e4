// SPDX-License-Identifier: MIT
package classify

import (
	"math"
	"reflect"
	"sync"
	"testing"

	"earshot/internal/analysis"
)

func features(mutate func(*analysis.Features)) analysis.Features {
	f := analysis.Features{
		SpectralCentroid:    1500,
		SpectralRolloff:     5000,
		SpectralFlatness:    0.3,
		ZeroCrossingRate:    0.05,
		RMSEnergy:           0.1,
		DominantFrequencies: []float64{440, 880},
		Bands:               analysis.FrequencyBands{Low: 1, Mid: 1, High: 1},
		Pitch:               440,
		Tempo:               100,
		SampleRate:          44100,
	}
	if mutate != nil {
		mutate(&f)
	}
	return f
}

func TestSpectralShapeRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*analysis.Features)
		want   Category
		isNil  bool
	}{
		{"tonal bright is music", func(f *analysis.Features) { f.SpectralFlatness = 0.1; f.SpectralCentroid = 1200 }, Music, false},
		{"mid centroid low rolloff is speech", func(f *analysis.Features) { f.SpectralCentroid = 1500; f.SpectralRolloff = 3500 }, Speech, false},
		{"bright wide is animal", func(f *analysis.Features) { f.SpectralCentroid = 4000; f.SpectralRolloff = 9000 }, Animal, false},
		{"flat is environmental", func(f *analysis.Features) { f.SpectralFlatness = 0.7; f.SpectralCentroid = 1500 }, Environmental, false},
		{"low centroid is other", func(f *analysis.Features) { f.SpectralCentroid = 300; f.SpectralRolloff = 8000 }, Other, false},
		{"no rule matches", func(f *analysis.Features) { f.SpectralCentroid = 1500; f.SpectralRolloff = 5000 }, "", true},
		{"silent spectrum", func(f *analysis.Features) { f.Bands = analysis.FrequencyBands{} }, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := SpectralShape{}.Classify(features(tt.mutate))
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if tt.isNil {
				if r != nil {
					t.Errorf("got %+v, want nil", r)
				}
				return
			}
			if r == nil || r.Category != tt.want {
				t.Errorf("got %+v, want category %s", r, tt.want)
			}
		})
	}
}

func TestBandDistribution(t *testing.T) {
	tests := []struct {
		name  string
		bands analysis.FrequencyBands
		want  Category
		label string
	}{
		{"low majority", analysis.FrequencyBands{Low: 6, Mid: 2, High: 2}, Music, "Bass-Heavy Music"},
		{"mid majority", analysis.FrequencyBands{Low: 1, Mid: 8, High: 1}, Speech, "Speech"},
		{"high majority", analysis.FrequencyBands{Low: 1, Mid: 1, High: 8}, Animal, "Animal Sounds"},
		{"exactly half is balanced", analysis.FrequencyBands{Low: 5, Mid: 3, High: 2}, Other, "Balanced Audio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := BandDistribution{}.Classify(features(func(f *analysis.Features) { f.Bands = tt.bands }))
			if r == nil || r.Category != tt.want || r.Label != tt.label {
				t.Fatalf("got %+v, want %s/%s", r, tt.want, tt.label)
			}
			if r.Confidence < 0 || r.Confidence > 1 {
				t.Errorf("confidence %v outside [0, 1]", r.Confidence)
			}
		})
	}

	r, _ := BandDistribution{}.Classify(features(func(f *analysis.Features) { f.Bands = analysis.FrequencyBands{} }))
	if r != nil {
		t.Errorf("zero bands: got %+v, want nil", r)
	}
}

func TestTemporalTakesMaxNotSum(t *testing.T) {
	tests := []struct {
		name  string
		tempo float64
		zcr   float64
		want  Category
		conf  float64
	}{
		{"slow", 70, 0.05, Environmental, 0.4},
		{"moderate", 100, 0.05, Speech, 0.45},
		{"fast", 150, 0.05, Music, 0.5},
		{"fast but active", 150, 0.2, Speech, 0.7},
		{"active caps at 0.9", 150, 0.6, Speech, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := Temporal{}.Classify(features(func(f *analysis.Features) {
				f.Tempo = tt.tempo
				f.ZeroCrossingRate = tt.zcr
			}))
			if r == nil || r.Category != tt.want {
				t.Fatalf("got %+v, want %s", r, tt.want)
			}
			if math.Abs(r.Confidence-tt.conf) > 1e-9 {
				t.Errorf("confidence %v, want %v", r.Confidence, tt.conf)
			}
		})
	}
}

func TestEnergyLevels(t *testing.T) {
	tests := []struct {
		rms  float64
		want Category
	}{
		{0.8, Music},
		{0.3, Speech},
		{0.05, Environmental},
	}
	for _, tt := range tests {
		r, _ := Energy{}.Classify(features(func(f *analysis.Features) { f.RMSEnergy = tt.rms }))
		if r == nil || r.Category != tt.want {
			t.Errorf("rms %v: got %+v, want %s", tt.rms, r, tt.want)
		}
	}
}

func TestHeuristicsAbstainOnSilence(t *testing.T) {
	silent := analysis.Features{Tempo: analysis.MinTempo, SpectralRolloff: 22050, SampleRate: 44100}
	for _, c := range append(Heuristics(), ModelClassifier{}) {
		r, err := c.Classify(silent)
		if err != nil || r != nil {
			t.Errorf("%s: got (%+v, %v), want (nil, nil)", c.Name(), r, err)
		}
	}
}

func TestModelClassifierDeterministic(t *testing.T) {
	m := ModelClassifier{}
	f := features(nil)
	first, err := m.Classify(f)
	if err != nil || first == nil {
		t.Fatalf("Classify: (%v, %v)", first, err)
	}
	for range 10 {
		again, _ := m.Classify(f)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("model not deterministic: %+v vs %+v", first, again)
		}
	}
	if first.Confidence <= 0 || first.Confidence > 1 {
		t.Errorf("confidence %v outside (0, 1]", first.Confidence)
	}
	if first.Confidence < 1.0/float64(len(Categories)) {
		t.Errorf("winning probability %v below uniform", first.Confidence)
	}
}

func TestModelFlatSpectrumLeansEnvironmental(t *testing.T) {
	r, _ := ModelClassifier{}.Classify(features(func(f *analysis.Features) {
		f.SpectralFlatness = 0.95
		f.SpectralCentroid = 8000
		f.SpectralRolloff = 16000
		f.Pitch = 0
		f.Tempo = 60
		f.RMSEnergy = 0.05
		f.Bands = analysis.FrequencyBands{Low: 1, Mid: 2, High: 3}
	}))
	if r == nil {
		t.Fatal("nil result")
	}
	if r.Category != Environmental && r.Category != Animal {
		t.Errorf("noise-like input classified as %s", r.Category)
	}
}

func TestAggregateFallback(t *testing.T) {
	got := Aggregate([]*Result{nil, nil, nil})
	want := FallbackAnalysis()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Aggregate(all nil) = %+v, want %+v", got, want)
	}
	if got.Primary.Label != "Audio Content" || got.Primary.Confidence != 0.5 ||
		got.Primary.Category != Other || got.AudioType != TypeMixed {
		t.Errorf("unexpected fallback %+v", got)
	}
	if a := Aggregate(nil); !reflect.DeepEqual(a, want) {
		t.Errorf("Aggregate(nil) = %+v", a)
	}
}

func TestAggregateRanksStably(t *testing.T) {
	in := []*Result{
		{Label: "a", Confidence: 0.5, Category: Environmental},
		nil,
		{Label: "b", Confidence: 0.7, Category: Speech},
		{Label: "c", Confidence: 0.5, Category: Animal},
		{Label: "d", Confidence: 0.5, Category: Environmental},
	}
	a := Aggregate(in)

	if a.Primary.Label != "b" {
		t.Errorf("primary = %s, want b", a.Primary.Label)
	}
	if len(a.Secondary) != 2 || a.Secondary[0].Label != "a" || a.Secondary[1].Label != "c" {
		t.Errorf("secondary = %+v, want [a c]", a.Secondary)
	}
	if math.Abs(a.OverallConfidence-0.55) > 1e-9 {
		t.Errorf("overall = %v, want 0.55", a.OverallConfidence)
	}
	if !reflect.DeepEqual(a.DetectedCategories, []Category{Speech, Environmental, Animal}) {
		t.Errorf("detected = %v", a.DetectedCategories)
	}
	if a.AudioType != TypeSpeech {
		t.Errorf("audio type = %s, want speech", a.AudioType)
	}
	if in[0].Label != "a" || in[2].Label != "b" {
		t.Error("Aggregate reordered its input")
	}
}

func TestAggregateIdempotent(t *testing.T) {
	in := []*Result{
		{Label: "x", Confidence: 0.6, Category: Music, Tags: []string{"t"}},
		{Label: "y", Confidence: 0.6, Category: Speech},
		{Label: "z", Confidence: 0.3, Category: Vehicle},
	}
	first := Aggregate(in)
	second := Aggregate(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not idempotent:\n%+v\n%+v", first, second)
	}

	first.Primary.Tags[0] = "mutated"
	if in[0].Tags[0] != "t" {
		t.Error("Analysis shares tag storage with the input")
	}
}

func TestAudioTypePrecedence(t *testing.T) {
	tests := []struct {
		cats []Category
		want AudioType
	}{
		{[]Category{Speech, Music}, TypeMusic},
		{[]Category{Environmental, Speech}, TypeSpeech},
		{[]Category{Animal, Environmental}, TypeEnvironmental},
		{[]Category{Animal, Vehicle}, TypeMixed},
	}
	for _, tt := range tests {
		if got := AudioTypeOf(tt.cats); got != tt.want {
			t.Errorf("AudioTypeOf(%v) = %s, want %s", tt.cats, got, tt.want)
		}
	}
}

func TestClassifiersConcurrentUse(t *testing.T) {
	f := features(nil)
	classifiers := append(Heuristics(), ModelClassifier{})
	want := make([]*Result, len(classifiers))
	for i, c := range classifiers {
		want[i], _ = c.Classify(f)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, c := range classifiers {
				got, _ := c.Classify(f.Clone())
				if !reflect.DeepEqual(got, want[i]) {
					t.Errorf("%s: concurrent result differs", c.Name())
				}
			}
		}()
	}
	wg.Wait()
}
