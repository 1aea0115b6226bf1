package whispermic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVADFlux(t *testing.T) {
	v := newVAD(512)

	silence := make([]int16, 512)
	assert.Zero(t, v.Flux(silence))

	tone := make([]int16, 512)
	for i := range tone {
		tone[i] = int16(20000 * math.Sin(2*math.Pi*float64(i)*440/16000))
	}
	assert.Greater(t, v.Flux(tone), v.Flux(silence))
}

func TestVADFluxEmptyFrame(t *testing.T) {
	v := newVAD(512)
	assert.Zero(t, v.Flux(nil))
}

func TestVADFluxOversizedFrame(t *testing.T) {
	v := newVAD(16)
	long := make([]int16, 64)
	for i := range long {
		long[i] = 10000
	}
	// Oversized input is truncated to the frame size, not a panic.
	assert.Positive(t, v.Flux(long))
}
