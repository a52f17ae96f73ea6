package sos

import (
	"fmt"
	"math"
)

const (
	// HardEpsilon is the |a0| threshold below which a section is not
	// realizable and cannot be normalized.
	HardEpsilon = 1e-10

	// SoftEpsilon is the |a0| threshold below which a section is flagged as
	// numerically problematic. The flag is advisory only.
	SoftEpsilon = 1e-6
)

// Section holds the six transfer-function coefficients of one second-order
// section. Unlike runtime biquads, a0 is stored explicitly.
//
// A first-order section is represented with B2 = A2 = 0.
type Section struct {
	B0, B1, B2 float64 // numerator
	A0, A1, A2 float64 // denominator
}

// NewSection builds a section from the six-coefficient SOS row
// [b0, b1, b2, a0, a1, a2].
func NewSection(row []float64) (Section, error) {
	if len(row) != 6 {
		return Section{}, fmt.Errorf("%w: section row needs 6 coefficients, got %d", ErrInvalidParameter, len(row))
	}

	return Section{B0: row[0], B1: row[1], B2: row[2], A0: row[3], A1: row[4], A2: row[5]}, nil
}

// Row returns the coefficients in SOS row order [b0, b1, b2, a0, a1, a2].
func (s Section) Row() [6]float64 {
	return [6]float64{s.B0, s.B1, s.B2, s.A0, s.A1, s.A2}
}

// Normalize returns a new section with every coefficient divided by A0.
// It fails with [ErrDivisionByZero] when |A0| < [HardEpsilon].
//
// Normalizing a section whose A0 is already 1 returns identical values.
func (s Section) Normalize() (Section, error) {
	if math.Abs(s.A0) < HardEpsilon {
		return Section{}, fmt.Errorf("%w: |a0|=%g", ErrDivisionByZero, math.Abs(s.A0))
	}

	if s.A0 == 1 {
		return s, nil
	}

	inv := 1 / s.A0

	return Section{
		B0: s.B0 * inv,
		B1: s.B1 * inv,
		B2: s.B2 * inv,
		A0: 1,
		A1: s.A1 * inv,
		A2: s.A2 * inv,
	}, nil
}

// Realizable reports whether |A0| is at least [HardEpsilon].
func (s Section) Realizable() bool {
	return math.Abs(s.A0) >= HardEpsilon
}

// IllConditioned reports whether A0 is realizable but below [SoftEpsilon].
func (s Section) IllConditioned() bool {
	a := math.Abs(s.A0)
	return a >= HardEpsilon && a < SoftEpsilon
}

// IsFirstOrder reports whether the section degenerates to first order.
func (s Section) IsFirstOrder() bool {
	return s.B2 == 0 && s.A2 == 0
}

// Map returns a copy of the section with fn applied to every coefficient.
func (s Section) Map(fn func(float64) float64) Section {
	return Section{
		B0: fn(s.B0), B1: fn(s.B1), B2: fn(s.B2),
		A0: fn(s.A0), A1: fn(s.A1), A2: fn(s.A2),
	}
}

// Finite reports whether all coefficients are finite.
func (s Section) Finite() bool {
	for _, v := range s.Row() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
