package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

const (
	// DefaultRippleDB is used when a ripple-based family gets no ripple.
	DefaultRippleDB = 1.0
	// DefaultStopbandDB is used when a stopband-based family gets no
	// attenuation.
	DefaultStopbandDB = 40.0
)

// Validate checks d for synthesis. On top of [sos.Design.Validate] it
// requires an even order for bandpass and bandstop designs.
func Validate(d sos.Design) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if d.Band.Edges() == 2 && d.Order%2 != 0 {
		return fmt.Errorf("%w: %v order must be even, got %d", sos.ErrInvalidParameter, d.Band, d.Order)
	}

	if d.RippleDB < 0 || d.StopbandDB < 0 {
		return fmt.Errorf("%w: ripple and stopband attenuation must be >= 0", sos.ErrInvalidParameter)
	}

	return nil
}

// WithDefaults fills in ripple and stopband attenuation for families that
// need them.
func WithDefaults(d sos.Design) sos.Design {
	switch d.Family {
	case sos.Chebyshev1:
		if d.RippleDB == 0 {
			d.RippleDB = DefaultRippleDB
		}
	case sos.Chebyshev2:
		if d.StopbandDB == 0 {
			d.StopbandDB = DefaultStopbandDB
		}
	case sos.Elliptic:
		if d.RippleDB == 0 {
			d.RippleDB = DefaultRippleDB
		}
		if d.StopbandDB == 0 {
			d.StopbandDB = DefaultStopbandDB
		}
	}

	return d
}

// Design synthesizes the cascade described by d.
func Design(d sos.Design) (*sos.Cascade, error) {
	d = WithDefaults(d)
	if err := Validate(d); err != nil {
		return nil, err
	}

	var (
		sections []sos.Section
		err      error
	)

	switch d.Band {
	case sos.Lowpass, sos.Highpass:
		sections, err = designPass(d)
	case sos.Bandpass, sos.Bandstop:
		sections, err = designBand(d)
	default:
		err = fmt.Errorf("%w: unknown band type %v", sos.ErrInvalidParameter, d.Band)
	}

	if err != nil {
		return nil, err
	}

	return sos.NewCascade(sections, d)
}

func designPass(d sos.Design) ([]sos.Section, error) {
	fc := d.Cutoff[0]
	lp := d.Band == sos.Lowpass

	var coeffs []biquad.Coefficients

	switch d.Family {
	case sos.Butterworth:
		if lp {
			coeffs = pass.ButterworthLP(fc, d.Order, d.SampleRate)
		} else {
			coeffs = pass.ButterworthHP(fc, d.Order, d.SampleRate)
		}
	case sos.Chebyshev1:
		if d.Order%2 == 1 {
			// The pass designers complete odd orders with a Butterworth
			// first-order section.
			proto, ref := chebyshev1Prototype(d.Order, d.RippleDB)
			return prototypePass(d, proto, ref), nil
		}

		x := 1 / rippleEpsilon(d.RippleDB)
		if lp {
			coeffs = pass.Chebyshev1LP(fc, d.Order, x, d.SampleRate)
		} else {
			coeffs = pass.Chebyshev1HP(fc, d.Order, x, d.SampleRate)
		}

		if len(coeffs) > 0 {
			_, ref := chebyshev1Prototype(d.Order, d.RippleDB)
			return scaleToGain(fromBiquads(coeffs), passReference(d.Band), d.SampleRate, ref), nil
		}
	case sos.Chebyshev2:
		x := rippleEpsilon(d.StopbandDB)
		if lp {
			coeffs = pass.Chebyshev2LP(fc, d.Order, x, d.SampleRate)
		} else {
			coeffs = pass.Chebyshev2HP(fc, d.Order, x, d.SampleRate)
		}
	case sos.Elliptic:
		if lp {
			coeffs = pass.EllipticLP(fc, d.Order, d.RippleDB, d.StopbandDB, d.SampleRate)
		} else {
			coeffs = pass.EllipticHP(fc, d.Order, d.RippleDB, d.StopbandDB, d.SampleRate)
		}
	case sos.Bessel:
		if lp {
			coeffs = pass.BesselLP(fc, d.Order, d.SampleRate)
		} else {
			coeffs = pass.BesselHP(fc, d.Order, d.SampleRate)
		}
	default:
		return nil, fmt.Errorf("%w: %v %v", ErrUnsupportedFamily, d.Family, d.Band)
	}

	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%w: %v %v design rejected order %d at %v Hz",
			sos.ErrInvalidParameter, d.Family, d.Band, d.Order, fc)
	}

	return fromBiquads(coeffs), nil
}

// rippleEpsilon maps an attenuation in dB to sqrt(10^(dB/10) - 1). The pass
// designers take the Chebyshev shape parameter, not dB.
func rippleEpsilon(db float64) float64 {
	return math.Sqrt(math.Pow(10, db/10) - 1)
}

// passReference is the normalized angular frequency at which a lowpass or
// highpass passband gain is pinned.
func passReference(band sos.Band) float64 {
	if band == sos.Highpass {
		return math.Pi
	}

	return 0
}

// fromBiquads converts a0-normalized runtime coefficients to sections with
// an explicit a0 of 1.
func fromBiquads(coeffs []biquad.Coefficients) []sos.Section {
	out := make([]sos.Section, len(coeffs))
	for i, c := range coeffs {
		out[i] = sos.Section{B0: c.B0, B1: c.B1, B2: c.B2, A0: 1, A1: c.A1, A2: c.A2}
	}

	return out
}
