package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// designBand builds bandpass and bandstop cascades from an analog lowpass
// prototype of order d.Order/2.
func designBand(d sos.Design) ([]sos.Section, error) {
	n := d.Order / 2

	var (
		proto   []complex128
		refGain float64
	)

	switch d.Family {
	case sos.Butterworth:
		proto, refGain = butterworthPrototype(n), 1
	case sos.Chebyshev1:
		proto, refGain = chebyshev1Prototype(n, d.RippleDB)
	default:
		return nil, fmt.Errorf("%w: %v %v", ErrUnsupportedFamily, d.Family, d.Band)
	}

	fs := d.SampleRate
	w1 := prewarp(d.Cutoff[0], fs)
	w2 := prewarp(d.Cutoff[1], fs)
	w0 := math.Sqrt(w1 * w2)
	bw := w2 - w1

	bandstop := d.Band == sos.Bandstop

	// Numerator shared by every section: zeros at z=+1 and z=-1 for a
	// bandpass, a conjugate pair on the unit circle at the notch frequency
	// for a bandstop.
	num := [3]float64{1, 0, -1}
	refOmega := 2 * math.Atan(w0/(2*fs))
	if bandstop {
		num = [3]float64{1, -2 * math.Cos(refOmega), 1}
		refOmega = 0
	}

	sections := make([]sos.Section, 0, n)
	for _, p := range proto {
		s1, s2 := bandPoles(p, w0, bw, bandstop)
		z1, z2 := bilinear(s1, fs), bilinear(s2, fs)

		if imag(p) == 0 {
			// A real prototype pole yields one section holding both roots.
			sections = append(sections, sectionFromPoles(num, z1, z2))
			continue
		}

		// Each upper-half prototype pole stands for a conjugate pair; its
		// two band poles pair with their own conjugates.
		sections = append(sections,
			sectionFromPoles(num, z1, cmplx.Conj(z1)),
			sectionFromPoles(num, z2, cmplx.Conj(z2)),
		)
	}

	return scaleToGain(sections, refOmega, fs, refGain), nil
}

// prototypePass maps analog prototype poles to a lowpass (s -> s/wc) or
// highpass (s -> wc/s) cascade. A real pole becomes a first-order section
// placed last.
func prototypePass(d sos.Design, proto []complex128, refGain float64) []sos.Section {
	fs := d.SampleRate
	wc := complex(prewarp(d.Cutoff[0], fs), 0)
	hp := d.Band == sos.Highpass

	num, first := [3]float64{1, 2, 1}, [3]float64{1, 1, 0}
	if hp {
		num, first = [3]float64{1, -2, 1}, [3]float64{1, -1, 0}
	}

	sections := make([]sos.Section, 0, len(proto))
	for _, p := range proto {
		s := wc * p
		if hp {
			s = wc / p
		}

		z := bilinear(s, fs)
		if imag(p) == 0 {
			sections = append(sections, sectionFromPoles(first, complex(real(z), 0), 0))
			continue
		}

		sections = append(sections, sectionFromPoles(num, z, cmplx.Conj(z)))
	}

	return scaleToGain(sections, passReference(d.Band), fs, refGain)
}

// butterworthPrototype returns the upper-half-plane poles (plus the real
// pole for odd n) of the normalized Butterworth lowpass.
func butterworthPrototype(n int) []complex128 {
	poles := make([]complex128, 0, (n+1)/2)
	for k := 0; k < n/2; k++ {
		theta := math.Pi * float64(2*k+1) / float64(2*n)
		poles = append(poles, complex(-math.Sin(theta), math.Cos(theta)))
	}

	if n%2 == 1 {
		poles = append(poles, complex(-1, 0))
	}

	return poles
}

// chebyshev1Prototype returns the prototype poles and the passband
// reference gain (1 for odd n, 1/sqrt(1+eps^2) for even n).
func chebyshev1Prototype(n int, rippleDB float64) ([]complex128, float64) {
	eps := math.Sqrt(math.Pow(10, rippleDB/10) - 1)
	mu := math.Asinh(1/eps) / float64(n)

	poles := make([]complex128, 0, (n+1)/2)
	for k := 0; k < n/2; k++ {
		theta := math.Pi * float64(2*k+1) / float64(2*n)
		poles = append(poles, complex(-math.Sinh(mu)*math.Sin(theta), math.Cosh(mu)*math.Cos(theta)))
	}

	if n%2 == 1 {
		poles = append(poles, complex(-math.Sinh(mu), 0))
		return poles, 1
	}

	return poles, 1 / math.Sqrt(1+eps*eps)
}

// bandPoles applies the lowpass-to-bandpass (s -> (s^2+w0^2)/(bw*s)) or
// lowpass-to-bandstop (s -> bw*s/(s^2+w0^2)) substitution to one pole.
func bandPoles(p complex128, w0, bw float64, bandstop bool) (complex128, complex128) {
	var b complex128
	if bandstop {
		b = complex(bw, 0) / p
	} else {
		b = p * complex(bw, 0)
	}

	disc := cmplx.Sqrt(b*b - complex(4*w0*w0, 0))

	return (b + disc) / 2, (b - disc) / 2
}

func prewarp(f, fs float64) float64 {
	return 2 * fs * math.Tan(math.Pi*f/fs)
}

func bilinear(s complex128, fs float64) complex128 {
	k := complex(2*fs, 0)
	return (k + s) / (k - s)
}

func sectionFromPoles(num [3]float64, p1, p2 complex128) sos.Section {
	return sos.Section{
		B0: num[0], B1: num[1], B2: num[2],
		A0: 1,
		A1: -real(p1 + p2),
		A2: real(p1 * p2),
	}
}

// scaleToGain scales the first section so that the cascade magnitude at
// omega (rad/sample) equals gain.
func scaleToGain(sections []sos.Section, omega, fs, gain float64) []sos.Section {
	h := complex(1, 0)
	f := omega * fs / (2 * math.Pi)
	for _, s := range sections {
		h *= s.Response(f, fs)
	}

	mag := cmplx.Abs(h)
	if mag == 0 || len(sections) == 0 {
		return sections
	}

	g := gain / mag
	sections[0].B0 *= g
	sections[0].B1 *= g
	sections[0].B2 *= g

	return sections
}
