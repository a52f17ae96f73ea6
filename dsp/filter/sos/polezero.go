package sos

import (
	"math"
	"math/cmplx"
)

// PoleZeroSet holds the z-plane zeros, poles and overall gain of a section or
// cascade. It is derived on demand and never cached.
type PoleZeroSet struct {
	Zeros []complex128
	Poles []complex128
	Gain  float64
}

// MaxPoleMagnitude returns the largest |p| in the set, or 0 for no poles.
func (pz PoleZeroSet) MaxPoleMagnitude() float64 {
	maxMag := 0.0
	for _, p := range pz.Poles {
		maxMag = math.Max(maxMag, cmplx.Abs(p))
	}

	return maxMag
}

// PoleMagnitudes returns |p| for every pole in order.
func (pz PoleZeroSet) PoleMagnitudes() []float64 {
	out := make([]float64, len(pz.Poles))
	for i, p := range pz.Poles {
		out[i] = cmplx.Abs(p)
	}

	return out
}

// Poles returns the z-plane poles of the normalized denominator:
//
//	z^2 + A1/A0*z + A2/A0 = 0
func (s Section) Poles() ([2]complex128, error) {
	n, err := s.Normalize()
	if err != nil {
		return [2]complex128{}, err
	}

	return quadraticRoots(1, n.A1, n.A2), nil
}

// Zeros returns the z-plane zeros of the numerator:
//
//	B0*z^2 + B1*z + B2 = 0
//
// A vanishing leading coefficient reduces the order; missing roots are
// reported at the origin.
func (s Section) Zeros() ([2]complex128, error) {
	n, err := s.Normalize()
	if err != nil {
		return [2]complex128{}, err
	}

	return quadraticRoots(n.B0, n.B1, n.B2), nil
}

// PoleZeros returns both root pairs and the section gain (normalized B0).
func (s Section) PoleZeros() (PoleZeroSet, error) {
	n, err := s.Normalize()
	if err != nil {
		return PoleZeroSet{}, err
	}

	p := quadraticRoots(1, n.A1, n.A2)
	z := quadraticRoots(n.B0, n.B1, n.B2)

	return PoleZeroSet{
		Zeros: z[:],
		Poles: p[:],
		Gain:  n.B0,
	}, nil
}

// IsStable reports whether every pole lies strictly inside the unit circle.
// An empty pole set is stable.
func IsStable(poles []complex128) bool {
	for _, p := range poles {
		if !(cmplx.Abs(p) < 1) {
			return false
		}
	}

	return true
}

// quadraticRoots solves a*x^2 + b*x + c = 0 with the sign-aware form
//
//	q = -(b + sign(b)*sqrt(b^2 - 4ac)) / 2,  x1 = q/a,  x2 = c/q
//
// which avoids cancellation between -b and the square root.
func quadraticRoots(a, b, c float64) [2]complex128 {
	if a == 0 {
		if b == 0 {
			return [2]complex128{}
		}

		return [2]complex128{complex(-c/b, 0), 0}
	}

	sqrtDisc := cmplx.Sqrt(complex(b*b-4*a*c, 0))

	sign := 1.0
	if b < 0 {
		sign = -1
	}

	q := -0.5 * (complex(b, 0) + complex(sign, 0)*sqrtDisc)
	if q == 0 {
		return [2]complex128{}
	}

	return [2]complex128{q / complex(a, 0), complex(c, 0) / q}
}
