// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"fmt"
	"math/cmplx"
	"strings"
	"sync"

	applog "earshot/internal/log"
	"earshot/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc defines the type for selecting an FFT window function.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
	Rectangular
)

func (w WindowFunc) String() string {
	switch w {
	case BartlettHann:
		return "BartlettHann"
	case Blackman:
		return "Blackman"
	case BlackmanNuttall:
		return "BlackmanNuttall"
	case Hann:
		return "Hann"
	case Hamming:
		return "Hamming"
	case Lanczos:
		return "Lanczos"
	case Nuttall:
		return "Nuttall"
	case Rectangular:
		return "Rectangular"
	default:
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	case "rectangular", "none":
		return Rectangular, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window's coefficients.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	// The gonum window functions scale in place, so start from ones.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Rectangular:
	default:
		applog.For("analysis").Warnf("unknown window function type %d, defaulting to Hann", windowType)
		window.Hann(coeffs)
	}
}

// Spectrum is a magnitude spectrum. Frequencies is strictly increasing and
// has the same length as Magnitudes.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.Frequencies) }

// fftWorkspace holds the per-call buffers for one transform. Workspaces are
// pooled and must be returned with release on every path.
type fftWorkspace struct {
	input     []float64
	fftOutput []complex128
	magnitude []float64
}

// SpectrumAnalyzer computes frame-averaged magnitude spectra. It is safe for
// concurrent use; each call borrows its own workspace.
type SpectrumAnalyzer struct {
	fft        *fourier.FFT
	fftMu      sync.Mutex // fourier.FFT keeps internal scratch state.
	fftSize    int
	sampleRate float64
	window     []float64
	maxFrames  int
	pool       sync.Pool
}

// NewSpectrumAnalyzer prepares a reusable analyzer. fftSize must be a power
// of two; maxFrames bounds how many frames are averaged (0 means no bound).
func NewSpectrumAnalyzer(fftSize int, sampleRate float64, windowType WindowFunc, maxFrames int) (*SpectrumAnalyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if maxFrames < 0 {
		return nil, fmt.Errorf("max frames must not be negative, got %d", maxFrames)
	}

	coeffs := make([]float64, fftSize)
	applyWindow(coeffs, windowType)
	bins := fftSize/2 + 1

	a := &SpectrumAnalyzer{
		fft:        fourier.NewFFT(fftSize),
		fftSize:    fftSize,
		sampleRate: sampleRate,
		window:     coeffs,
		maxFrames:  maxFrames,
	}
	a.pool.New = func() any {
		return &fftWorkspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, bins),
			magnitude: make([]float64, bins),
		}
	}
	return a, nil
}

// FrequencyForBin returns the center frequency (Hz) for bin k: k*sampleRate/fftSize.
func (a *SpectrumAnalyzer) FrequencyForBin(k int) float64 {
	if k < 0 || k > a.fftSize/2 {
		return 0
	}
	return float64(k) * a.sampleRate / float64(a.fftSize)
}

// FFTSize returns the configured transform size.
func (a *SpectrumAnalyzer) FFTSize() int { return a.fftSize }

// BinWidth returns the spacing between adjacent bins in Hz.
func (a *SpectrumAnalyzer) BinWidth() float64 { return a.sampleRate / float64(a.fftSize) }

// frameStarts returns the offsets of the frames that will be transformed.
// Short inputs yield a single zero-padded frame.
func (a *SpectrumAnalyzer) frameStarts(n int) []int {
	frames := (n + a.fftSize - 1) / a.fftSize
	if frames <= 1 {
		return []int{0}
	}
	if a.maxFrames == 0 || frames <= a.maxFrames {
		starts := make([]int, frames)
		for i := range starts {
			starts[i] = i * a.fftSize
		}
		return starts
	}
	last := n - a.fftSize
	if a.maxFrames == 1 {
		return []int{last / 2}
	}
	// Spread maxFrames evenly over the whole signal.
	starts := make([]int, a.maxFrames)
	for i := range starts {
		starts[i] = i * last / (a.maxFrames - 1)
	}
	return starts
}

// Compute transforms samples and returns the frame-averaged spectrum. It
// checks ctx between frames and returns ctx.Err() once it is done.
func (a *SpectrumAnalyzer) Compute(ctx context.Context, samples []float64) (Spectrum, error) {
	bins := a.fftSize/2 + 1
	spec := Spectrum{
		Frequencies: make([]float64, bins),
		Magnitudes:  make([]float64, bins),
	}
	for k := range spec.Frequencies {
		spec.Frequencies[k] = a.FrequencyForBin(k)
	}

	ws := a.pool.Get().(*fftWorkspace)
	defer a.pool.Put(ws)

	starts := a.frameStarts(len(samples))
	for _, start := range starts {
		if err := ctx.Err(); err != nil {
			return Spectrum{}, err
		}
		for i := range a.fftSize {
			j := start + i
			if j < len(samples) {
				ws.input[i] = samples[j] * a.window[i]
			} else {
				ws.input[i] = 0
			}
		}

		a.fftMu.Lock()
		a.fft.Coefficients(ws.fftOutput, ws.input)
		a.fftMu.Unlock()

		for k, c := range ws.fftOutput {
			ws.magnitude[k] = cmplx.Abs(c)
			spec.Magnitudes[k] += ws.magnitude[k]
		}
	}

	inv := 1.0 / float64(len(starts))
	for k := range spec.Magnitudes {
		spec.Magnitudes[k] *= inv
	}
	return spec, nil
}
