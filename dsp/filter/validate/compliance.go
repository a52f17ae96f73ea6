package validate

import (
	"math"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

const (
	// CutoffTolerance is the accepted relative cutoff error.
	CutoffTolerance = 0.10
	// DCGainToleranceDB is the accepted lowpass DC gain deviation from 0 dB.
	DCGainToleranceDB = 1.0
)

// CutoffCheck compares the measured -3 dB point with the requested cutoff.
type CutoffCheck struct {
	RequestedHz   float64 `json:"requested_hz" yaml:"requested_hz"`
	MeasuredHz    float64 `json:"measured_hz" yaml:"measured_hz"`
	RelativeError float64 `json:"relative_error" yaml:"relative_error"`
	Extrapolated  bool    `json:"extrapolated" yaml:"extrapolated"`
	Pass          bool    `json:"pass" yaml:"pass"`
}

// DCGainCheck verifies that a lowpass passes DC at unity gain.
type DCGainCheck struct {
	GainDB float64 `json:"gain_db" yaml:"gain_db"`
	Pass   bool    `json:"pass" yaml:"pass"`
}

// StabilityCheck echoes the stability verdict.
type StabilityCheck struct {
	Stable bool    `json:"stable" yaml:"stable"`
	Margin float64 `json:"margin" yaml:"margin"`
}

// ComplianceReport holds per-check results. Cutoff is only set for lowpass
// and highpass requests, DCGain only for lowpass.
type ComplianceReport struct {
	Pass      bool           `json:"pass" yaml:"pass"`
	Cutoff    *CutoffCheck   `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`
	DCGain    *DCGainCheck   `json:"dc_gain,omitempty" yaml:"dc_gain,omitempty"`
	Stability StabilityCheck `json:"stability" yaml:"stability"`
}

// Compliance checks the cascade against a requested design. The -3 dB point
// is measured on the configured frequency grid.
func (v *Validator) Compliance(req sos.Design) (ComplianceReport, error) {
	if err := req.Validate(); err != nil {
		return ComplianceReport{}, err
	}

	freq, err := v.Frequency(v.cfg.frequencyPoints)
	if err != nil {
		return ComplianceReport{}, err
	}

	stab, err := v.Stability()
	if err != nil {
		return ComplianceReport{}, err
	}

	rep := ComplianceReport{
		Stability: StabilityCheck{Stable: stab.Stable, Margin: stab.Margin},
	}

	if req.Band == sos.Lowpass || req.Band == sos.Highpass {
		measured, extrapolated := freq.CutoffHz, freq.CutoffExtrapolated
		if req.Band == sos.Highpass {
			measured, extrapolated = findCutoffFromNyquist(freq.Frequencies, freq.MagnitudeDB)
		}

		want := req.Cutoff[0]
		relErr := math.Abs(measured-want) / want
		rep.Cutoff = &CutoffCheck{
			RequestedHz:   want,
			MeasuredHz:    measured,
			RelativeError: relErr,
			Extrapolated:  extrapolated,
			Pass:          relErr < CutoffTolerance,
		}
	}

	if req.Band == sos.Lowpass {
		rep.DCGain = &DCGainCheck{
			GainDB: freq.DCGainDB,
			Pass:   math.Abs(freq.DCGainDB) < DCGainToleranceDB,
		}
	}

	rep.Pass = rep.Stability.Stable
	if rep.Cutoff != nil && !rep.Cutoff.Pass {
		rep.Pass = false
	}

	if rep.DCGain != nil && !rep.DCGain.Pass {
		rep.Pass = false
	}

	return rep, nil
}
