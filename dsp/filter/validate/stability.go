package validate

import (
	"math/cmplx"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// Root is a complex root in serializable form.
type Root struct {
	Re        float64 `json:"re" yaml:"re"`
	Im        float64 `json:"im" yaml:"im"`
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
}

func toRoots(zs []complex128) []Root {
	out := make([]Root, len(zs))
	for i, z := range zs {
		out[i] = Root{Re: real(z), Im: imag(z), Magnitude: cmplx.Abs(z)}
	}

	return out
}

// StabilityReport describes the pole locations of the cascade.
type StabilityReport struct {
	Stable bool `json:"stable" yaml:"stable"`
	// Margin is 1 - max|p|, or 0 when the cascade is unstable.
	Margin           float64   `json:"margin" yaml:"margin"`
	MaxPoleMagnitude float64   `json:"max_pole_magnitude" yaml:"max_pole_magnitude"`
	PoleMagnitudes   []float64 `json:"pole_magnitudes" yaml:"pole_magnitudes"`
	Poles            []Root    `json:"poles" yaml:"poles"`
	Zeros            []Root    `json:"zeros" yaml:"zeros"`
	Gain             float64   `json:"gain" yaml:"gain"`

	PoleZeros sos.PoleZeroSet `json:"-" yaml:"-"`
}

// Stability computes the aggregate pole/zero set and the stability margin.
func (v *Validator) Stability() (StabilityReport, error) {
	pz, err := v.cascade.AggregatePoleZeros()
	if err != nil {
		return StabilityReport{}, err
	}

	stable := sos.IsStable(pz.Poles)
	maxMag := pz.MaxPoleMagnitude()

	margin := 0.0
	if stable {
		margin = 1 - maxMag
	}

	return StabilityReport{
		Stable:           stable,
		Margin:           margin,
		MaxPoleMagnitude: maxMag,
		PoleMagnitudes:   pz.PoleMagnitudes(),
		Poles:            toRoots(pz.Poles),
		Zeros:            toRoots(pz.Zeros),
		Gain:             pz.Gain,
		PoleZeros:        pz,
	}, nil
}
