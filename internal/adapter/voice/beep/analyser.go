package beep

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Analyser defaults, matching a browser AnalyserNode with fftSize 64.
const (
	FFTSize   = 64
	NumBins   = FFTSize / 2
	minDB     = -100.0
	maxDB     = -30.0
	smoothing = 0.8
)

// Analyser turns mono PCM windows into NumBins byte-scaled band energies.
// Magnitudes are Blackman windowed, averaged over time and mapped from the
// [-100, -30] dB range onto 0-255.
//
// Thread-safety: not safe for concurrent use.
type Analyser struct {
	fft      *fourier.FFT
	window   [FFTSize]float64
	history  [FFTSize]float64
	scratch  []float64
	coeffs   []complex128
	smoothed [NumBins]float64
}

// NewAnalyser creates an analyser with an empty history.
func NewAnalyser() *Analyser {
	a := &Analyser{
		fft:     fourier.NewFFT(FFTSize),
		scratch: make([]float64, FFTSize),
	}
	for i := range a.window {
		x := 2 * math.Pi * float64(i) / FFTSize
		a.window[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
	return a
}

// Push appends samples to the rolling FFTSize history.
func (a *Analyser) Push(samples []float64) {
	if len(samples) >= FFTSize {
		copy(a.history[:], samples[len(samples)-FFTSize:])
		return
	}
	n := copy(a.history[:], a.history[len(samples):])
	copy(a.history[n:], samples)
}

// Bands analyses the current history into dst (resized to NumBins).
func (a *Analyser) Bands(dst []float64) []float64 {
	if cap(dst) < NumBins {
		dst = make([]float64, NumBins)
	}
	dst = dst[:NumBins]

	for i, s := range a.history {
		a.scratch[i] = s * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.scratch)

	for k := 0; k < NumBins; k++ {
		mag := math.Hypot(real(a.coeffs[k]), imag(a.coeffs[k])) / FFTSize
		a.smoothed[k] = smoothing*a.smoothed[k] + (1-smoothing)*mag

		if a.smoothed[k] <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		dst[k] = math.Max(0, math.Min(255, 255*(db-minDB)/(maxDB-minDB)))
	}
	return dst
}

// Reset clears the history and the time smoothing.
func (a *Analyser) Reset() {
	a.history = [FFTSize]float64{}
	a.smoothed = [NumBins]float64{}
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
