// SPDX-License-Identifier: MIT
/*
Package audio turns raw recordings into decoded sample buffers and back.

A Buffer is the unit handed to feature extraction: one or more channels of
float64 samples in [-1, 1] at a known sample rate. Buffers are treated as
immutable once decoded; nothing in this module writes to a Buffer after
construction and callers must not either.
*/
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDecode is matched by every *DecodeError via errors.Is.
var ErrDecode = errors.New("audio: decode failed")

// DecodeError reports input that cannot be interpreted as PCM audio.
type DecodeError struct {
	Reason string // Human readable cause, e.g. "sample rate must be positive".
	Err    error  // Underlying error, if any.
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode audio: %s: %v", e.Reason, e.Err)
	}
	return "decode audio: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func decodeErr(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

// Buffer holds decoded, de-interleaved audio.
type Buffer struct {
	sampleRate float64
	channels   [][]float64
}

// NewBuffer wraps the given channels without copying them. The caller gives up
// ownership of the slices. The result is validated; an invalid layout yields a
// *DecodeError.
func NewBuffer(sampleRate float64, channels ...[]float64) (*Buffer, error) {
	b := &Buffer{sampleRate: sampleRate, channels: channels}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the buffer is usable PCM: at least one channel, a
// positive sample rate, a non-empty first channel, equal channel lengths and
// only finite samples.
func (b *Buffer) Validate() error {
	if b == nil {
		return decodeErr("nil buffer", nil)
	}
	if len(b.channels) == 0 {
		return decodeErr("no channels", nil)
	}
	if b.sampleRate <= 0 || math.IsNaN(b.sampleRate) || math.IsInf(b.sampleRate, 0) {
		return decodeErr(fmt.Sprintf("sample rate must be positive, got %v", b.sampleRate), nil)
	}
	n := len(b.channels[0])
	if n == 0 {
		return decodeErr("no samples", nil)
	}
	for ch, samples := range b.channels {
		if len(samples) != n {
			return decodeErr(fmt.Sprintf("channel %d has %d samples, channel 0 has %d", ch, len(samples), n), nil)
		}
		for i, s := range samples {
			if math.IsNaN(s) || math.IsInf(s, 0) {
				return decodeErr(fmt.Sprintf("non-finite sample at channel %d index %d", ch, i), nil)
			}
		}
	}
	return nil
}

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() float64 { return b.sampleRate }

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// Len returns the number of frames (samples per channel).
func (b *Buffer) Len() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the samples of channel i. The slice is shared with the
// buffer and must be treated as read-only.
func (b *Buffer) Channel(i int) []float64 {
	if i < 0 || i >= len(b.channels) {
		return nil
	}
	return b.channels[i]
}

// Duration returns the length of the recording.
func (b *Buffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Len()) / b.sampleRate * float64(time.Second))
}
