// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV writes buf as integer PCM WAV with the given bit depth (8, 16, 24
// or 32). Samples outside [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, buf *Buffer, bitDepth int) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	numChannels := buf.NumChannels()
	encoder := wav.NewEncoder(w, int(buf.SampleRate()), bitDepth, numChannels, 1)

	offset := 0
	if bitDepth == 8 {
		offset = 128
	}
	fullScale := math.Pow(2, float64(bitDepth-1)) - 1
	frames := buf.Len()
	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: numChannels,
			SampleRate:  int(buf.SampleRate()),
		},
		Data:           make([]int, frames*numChannels),
		SourceBitDepth: bitDepth,
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			s := math.Max(-1, math.Min(1, buf.channels[ch][i]))
			intBuf.Data[i*numChannels+ch] = int(math.Round(s*fullScale)) + offset
		}
	}

	if err := encoder.Write(intBuf); err != nil {
		encoder.Close()
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// WriteWAVFile encodes buf into a new file at path.
func WriteWAVFile(path string, buf *Buffer, bitDepth int) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return EncodeWAV(file, buf, bitDepth)
}

// WAVBytes encodes buf into an in-memory WAV image.
func WAVBytes(buf *Buffer, bitDepth int) ([]byte, error) {
	var ws seekBuffer
	if err := EncodeWAV(&ws, buf, bitDepth); err != nil {
		return nil, err
	}
	return ws.data, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes once the sample count is known.
type seekBuffer struct {
	data []byte
	pos  int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.data) {
		grown := make([]byte, end)
		copy(grown, s.data)
		s.data = grown
	}
	copy(s.data[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(len(s.data))
	default:
		return 0, errors.New("seek: invalid whence")
	}
	next := base + offset
	if next < 0 {
		return 0, errors.New("seek: negative position")
	}
	s.pos = int(next)
	return next, nil
}
