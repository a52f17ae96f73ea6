package probe

import (
	"fmt"
	"math"
)

// goertzel evaluates a single DFT bin. It is used to read the level of a
// probe tone without an FFT of the whole block.
type goertzel struct {
	coeff  float64
	s0, s1 float64
}

func newGoertzel(freqHz, sampleRate float64) (*goertzel, error) {
	if freqHz < 0 || freqHz > sampleRate/2 || math.IsNaN(freqHz) {
		return nil, fmt.Errorf("%w: tone frequency must be in [0, %g]: %g", ErrInvalidParameter, sampleRate/2, freqHz)
	}

	return &goertzel{coeff: 2 * math.Cos(2*math.Pi*freqHz/sampleRate)}, nil
}

func (g *goertzel) process(x []float64) {
	s0, s1 := g.s0, g.s1
	for _, v := range x {
		s := v + g.coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
}

// power is |X[k]|^2 over every sample processed so far.
func (g *goertzel) power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// tonePower runs a fresh detector over x.
func tonePower(x []float64, freqHz, sampleRate float64) (float64, error) {
	g, err := newGoertzel(freqHz, sampleRate)
	if err != nil {
		return 0, err
	}

	g.process(x)

	return g.power(), nil
}
