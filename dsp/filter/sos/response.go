package sos

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Spacing selects how FrequencyResponse distributes its evaluation points.
type Spacing int

const (
	// Linear spaces points evenly from 0 Hz to Nyquist inclusive.
	Linear Spacing = iota
	// Log places the first point at 0 Hz and spaces the rest
	// logarithmically from Nyquist/1000 to Nyquist.
	Log
)

// logDecades is the span of the logarithmic grid below Nyquist.
const logDecades = 3

// Response computes H(e^jw) of the section at freqHz for the given sample
// rate. A0 is used as stored; the result equals the normalized response.
func (s Section) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := ejw * ejw

	num := complex(s.B0, 0) + complex(s.B1, 0)*ejw + complex(s.B2, 0)*ej2w
	den := complex(s.A0, 0) + complex(s.A1, 0)*ejw + complex(s.A2, 0)*ej2w

	return num / den
}

// MagnitudeDB returns 20*log10|H(f)| of the section.
func (s Section) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(s.Response(freqHz, sampleRate)))
}

// Phase returns the section phase response in radians, in [-pi, pi].
func (s Section) Phase(freqHz, sampleRate float64) float64 {
	return cmplx.Phase(s.Response(freqHz, sampleRate))
}

// Response returns the cascade response at freqHz as the product of the
// normalized section responses.
func (c *Cascade) Response(freqHz float64) (complex128, error) {
	norm, err := c.Normalized()
	if err != nil {
		return 0, err
	}

	return responseAt(norm, freqHz, c.design.SampleRate), nil
}

// FrequencyResponse evaluates the cascade on numPoints frequencies between
// 0 Hz and Nyquist. Cascading is multiplicative: every normalized section is
// evaluated at z = e^jw and the section responses are multiplied.
func (c *Cascade) FrequencyResponse(numPoints int, spacing Spacing) ([]float64, []complex128, error) {
	if c.Empty() {
		return nil, nil, ErrNotDesigned
	}

	freqs, err := FrequencyGrid(numPoints, c.design.Nyquist(), spacing)
	if err != nil {
		return nil, nil, err
	}

	norm, err := c.Normalized()
	if err != nil {
		return nil, nil, err
	}

	h := make([]complex128, len(freqs))
	for i, f := range freqs {
		h[i] = responseAt(norm, f, c.design.SampleRate)
	}

	return freqs, h, nil
}

// FrequencyGrid returns numPoints frequencies from 0 to nyquist.
func FrequencyGrid(numPoints int, nyquist float64, spacing Spacing) ([]float64, error) {
	if numPoints < 2 {
		return nil, fmt.Errorf("%w: need at least 2 frequency points, got %d", ErrInvalidParameter, numPoints)
	}

	if !(nyquist > 0) {
		return nil, fmt.Errorf("%w: nyquist must be > 0: %v", ErrInvalidParameter, nyquist)
	}

	freqs := make([]float64, numPoints)

	switch spacing {
	case Linear:
		step := nyquist / float64(numPoints-1)
		for i := range freqs {
			freqs[i] = float64(i) * step
		}
	case Log:
		lo := math.Log10(nyquist) - logDecades
		span := float64(logDecades)
		n := numPoints - 1
		for i := 1; i <= n; i++ {
			t := 1.0
			if n > 1 {
				t = float64(i-1) / float64(n-1)
			}
			freqs[i] = math.Pow(10, lo+t*span)
		}
	default:
		return nil, fmt.Errorf("%w: unknown spacing %d", ErrInvalidParameter, spacing)
	}

	freqs[numPoints-1] = nyquist

	return freqs, nil
}

func responseAt(sections []Section, freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for i := range sections {
		h *= sections[i].Response(freqHz, sampleRate)
	}

	return h
}
