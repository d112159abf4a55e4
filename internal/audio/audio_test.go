// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"earshot/pkg/utils"
)

const (
	testSampleRate = 44100
	testFrameSize  = 4410
)

func TestNewBufferValidation(t *testing.T) {
	tests := []struct {
		desc       string
		sampleRate float64
		channels   [][]float64
		wantErr    bool
	}{
		{"mono", testSampleRate, [][]float64{{0, 0.5, -0.5}}, false},
		{"stereo", testSampleRate, [][]float64{{0, 1}, {1, 0}}, false},
		{"no channels", testSampleRate, nil, true},
		{"zero rate", 0, [][]float64{{0.1}}, true},
		{"negative rate", -8000, [][]float64{{0.1}}, true},
		{"empty channel", testSampleRate, [][]float64{{}}, true},
		{"ragged", testSampleRate, [][]float64{{0, 1}, {1}}, true},
		{"nan sample", testSampleRate, [][]float64{{0, math.NaN()}}, true},
		{"inf sample", testSampleRate, [][]float64{{math.Inf(1)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			buf, err := NewBuffer(tt.sampleRate, tt.channels...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got buffer %+v", buf)
				}
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Errorf("error %T is not a *DecodeError", err)
				}
				if !errors.Is(err, ErrDecode) {
					t.Errorf("errors.Is(%v, ErrDecode) = false", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.NumChannels() != len(tt.channels) {
				t.Errorf("NumChannels = %d, want %d", buf.NumChannels(), len(tt.channels))
			}
		})
	}
}

func TestBufferAccessors(t *testing.T) {
	buf, err := NewBuffer(testSampleRate, make([]float64, testSampleRate*2))
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Duration(); got != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", got)
	}
	if buf.Channel(1) != nil {
		t.Error("out-of-range channel should be nil")
	}
	if buf.Len() != testSampleRate*2 {
		t.Errorf("Len = %d", buf.Len())
	}
}

func TestWAVRoundTrip(t *testing.T) {
	samples := utils.GenerateSineWave(testFrameSize, testSampleRate, 440, 0.5)
	src, err := NewBuffer(testSampleRate, samples)
	if err != nil {
		t.Fatal(err)
	}

	data, err := WAVBytes(src, 16)
	if err != nil {
		t.Fatalf("WAVBytes: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SampleRate() != testSampleRate {
		t.Errorf("sample rate = %v, want %v", got.SampleRate(), testSampleRate)
	}
	if got.Len() != testFrameSize {
		t.Fatalf("frames = %d, want %d", got.Len(), testFrameSize)
	}

	// 16-bit quantization error is at most one LSB.
	const tolerance = 2.0 / 32768
	for i, want := range samples {
		if diff := math.Abs(got.Channel(0)[i] - want); diff > tolerance {
			t.Fatalf("sample %d = %v, want %v (diff %v)", i, got.Channel(0)[i], want, diff)
		}
	}
}

func TestWriteWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	src, err := NewBuffer(8000, utils.GenerateSineWave(800, 8000, 200, 0.3), utils.GenerateSilence(800))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAVFile(path, src, 24); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}
	got, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if got.NumChannels() != 2 || got.Len() != 800 {
		t.Errorf("decoded %d channels x %d frames, want 2 x 800", got.NumChannels(), got.Len())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	inputs := map[string][]byte{
		"empty":        {},
		"text":         []byte("definitely not audio"),
		"riff no wave": []byte("RIFF\x00\x00\x00\x00AVI LIST"),
		"truncated":    []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(data); !errors.Is(err, ErrDecode) {
				t.Errorf("Decode(%q) error = %v, want ErrDecode", name, err)
			}
		})
	}
}

func TestDecodeFloat32LE(t *testing.T) {
	values := []float32{0, 0.25, -0.25, 1}
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}

	buf, err := DecodeFloat32LE(data, 16000, 2)
	if err != nil {
		t.Fatalf("DecodeFloat32LE: %v", err)
	}
	if buf.NumChannels() != 2 || buf.Len() != 2 {
		t.Fatalf("layout = %d x %d, want 2 x 2", buf.NumChannels(), buf.Len())
	}
	if buf.Channel(0)[1] != -0.25 || buf.Channel(1)[1] != 1 {
		t.Errorf("de-interleave mismatch: %v %v", buf.Channel(0), buf.Channel(1))
	}

	if _, err := DecodeFloat32LE(data[:6], 16000, 1); !errors.Is(err, ErrDecode) {
		t.Errorf("partial frame error = %v, want ErrDecode", err)
	}
	nan := make([]byte, 4)
	binary.LittleEndian.PutUint32(nan, math.Float32bits(float32(math.NaN())))
	if _, err := DecodeFloat32LE(nan, 16000, 1); !errors.Is(err, ErrDecode) {
		t.Errorf("NaN payload error = %v, want ErrDecode", err)
	}
}
