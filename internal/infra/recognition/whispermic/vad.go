package whispermic

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// fluxRatio is the relative spectral-flux jump that separates speech
// onset from background noise, and its inverse marks the return to
// quiet.
const fluxRatio = 1.75

// vad detects speech by spectral flux: speech onset shows a sharp rise
// in high-frequency energy relative to the running background level.
type vad struct {
	buf []float64
}

func newVAD(frameSize int) *vad {
	return &vad{buf: make([]float64, frameSize)}
}

// Flux returns the spectral magnitude of one frame of 16-bit samples.
func (v *vad) Flux(samples []int16) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	if n > len(v.buf) {
		n = len(v.buf)
	}
	for i := 0; i < n; i++ {
		v.buf[i] = float64(samples[i]) / 32768.0
	}
	for i := n; i < len(v.buf); i++ {
		v.buf[i] = 0
	}

	spectrum := fft.FFTReal(v.buf)

	var flux float64
	for _, c := range spectrum {
		flux += math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
	}
	return flux
}
