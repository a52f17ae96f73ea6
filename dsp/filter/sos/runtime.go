package sos

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// Structure is the realization topology used when running a cascade over a
// signal.
type Structure int

const (
	// DirectForm2Transposed keeps two state values per section.
	DirectForm2Transposed Structure = iota
	// DirectForm1 keeps four state values per section (two input and two
	// output delays).
	DirectForm1
)

func (st Structure) String() string {
	switch st {
	case DirectForm2Transposed:
		return "DF2T"
	case DirectForm1:
		return "DF1"
	default:
		return fmt.Sprintf("Structure(%d)", int(st))
	}
}

// StatePerSection returns the number of delay elements one section needs.
func (st Structure) StatePerSection() int {
	if st == DirectForm1 {
		return 4
	}

	return 2
}

// Filter runs x through the cascade offline and returns a new slice. The
// cascade is not modified; every call starts from zero state.
func (c *Cascade) Filter(x []float64, st Structure) ([]float64, error) {
	norm, err := c.Normalized()
	if err != nil {
		return nil, err
	}

	out := append([]float64(nil), x...)

	switch st {
	case DirectForm2Transposed:
		biquad.NewChain(toBiquads(norm)).ProcessBlock(out)
	case DirectForm1:
		for _, s := range norm {
			df1Block(s, out)
		}
	default:
		return nil, fmt.Errorf("%w: unknown structure %d", ErrInvalidParameter, st)
	}

	return out, nil
}

// ImpulseResponse returns n samples of the cascade impulse response.
func (c *Cascade) ImpulseResponse(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: impulse length must be > 0: %d", ErrInvalidParameter, n)
	}

	x := make([]float64, n)
	x[0] = 1

	return c.Filter(x, DirectForm2Transposed)
}

// StepResponse returns n samples of the cascade unit-step response.
func (c *Cascade) StepResponse(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: step length must be > 0: %d", ErrInvalidParameter, n)
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1
	}

	return c.Filter(x, DirectForm2Transposed)
}

// Biquads returns the normalized sections as runtime coefficients for a
// DF2T [biquad.Chain].
func (c *Cascade) Biquads() ([]biquad.Coefficients, error) {
	norm, err := c.Normalized()
	if err != nil {
		return nil, err
	}

	return toBiquads(norm), nil
}

func toBiquads(norm []Section) []biquad.Coefficients {
	out := make([]biquad.Coefficients, len(norm))
	for i, s := range norm {
		out[i] = biquad.Coefficients{B0: s.B0, B1: s.B1, B2: s.B2, A1: s.A1, A2: s.A2}
	}

	return out
}

// df1Block filters buf in place with a normalized section.
//
//	y = b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
func df1Block(s Section, buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2

	var x1, x2, y1, y2 float64
	for i, x := range buf {
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		buf[i] = y
	}
}
