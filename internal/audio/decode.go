// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// Decode sniffs data and decodes it. RIFF/WAVE containers are supported; any
// other payload is rejected with a *DecodeError.
func Decode(data []byte) (*Buffer, error) {
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		return DecodeWAV(bytes.NewReader(data))
	}
	return nil, decodeErr("unsupported container (expected RIFF/WAVE)", nil)
}

// DecodeFile reads and decodes the file at path.
func DecodeFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// DecodeWAV decodes an integer PCM WAV stream into a normalized Buffer.
func DecodeWAV(r io.ReadSeeker) (*Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, decodeErr("invalid WAV file", decoder.Err())
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, decodeErr("could not read PCM buffer", err)
	}
	if pcm == nil || pcm.Format == nil {
		return nil, decodeErr("WAV file has no format chunk", nil)
	}

	numChannels := pcm.Format.NumChannels
	if numChannels <= 0 {
		return nil, decodeErr(fmt.Sprintf("invalid channel count %d", numChannels), nil)
	}
	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, decodeErr(fmt.Sprintf("unsupported bit depth %d", bitDepth), nil)
	}

	// 8-bit WAV samples are unsigned and centered on 128.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}
	scale := 1.0 / math.Pow(2, float64(bitDepth-1))
	frames := len(pcm.Data) / numChannels
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][i] = float64(pcm.Data[i*numChannels+ch]-offset) * scale
		}
	}

	return NewBuffer(float64(pcm.Format.SampleRate), channels...)
}

// DecodeFloat32LE decodes headerless interleaved little-endian float32 PCM.
func DecodeFloat32LE(data []byte, sampleRate float64, numChannels int) (*Buffer, error) {
	if numChannels <= 0 {
		return nil, decodeErr(fmt.Sprintf("invalid channel count %d", numChannels), nil)
	}
	frameBytes := 4 * numChannels
	if len(data)%frameBytes != 0 {
		return nil, decodeErr(fmt.Sprintf("payload of %d bytes is not a whole number of %d-byte frames", len(data), frameBytes), nil)
	}

	frames := len(data) / frameBytes
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			off := (i*numChannels + ch) * 4
			bits := binary.LittleEndian.Uint32(data[off : off+4])
			channels[ch][i] = float64(math.Float32frombits(bits))
		}
	}

	return NewBuffer(sampleRate, channels...)
}
