package validate

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-dsp/dsp/spectrum"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-iir/dsp/core"
	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// magnitudeFloor bounds |H| before the dB conversion.
const magnitudeFloor = 1e-10

// cutoffDropDB is the attenuation relative to DC that defines the cutoff.
const cutoffDropDB = 3

// FrequencyReport holds the frequency-domain diagnostics on a linear grid
// from 0 Hz to Nyquist.
type FrequencyReport struct {
	Frequencies []float64 `json:"frequencies_hz" yaml:"frequencies_hz"`
	MagnitudeDB []float64 `json:"magnitude_db" yaml:"magnitude_db"`
	// PhaseRad is the unwrapped phase.
	PhaseRad []float64 `json:"phase_rad" yaml:"phase_rad"`
	// GroupDelay is -dphi/domega in samples.
	GroupDelay []float64 `json:"group_delay_samples" yaml:"group_delay_samples"`
	DCGainDB   float64   `json:"dc_gain_db" yaml:"dc_gain_db"`
	CutoffHz   float64   `json:"cutoff_hz" yaml:"cutoff_hz"`
	// CutoffExtrapolated is set when no -3 dB crossing was found past DC
	// and CutoffHz is the last evaluated frequency instead.
	CutoffExtrapolated bool `json:"cutoff_extrapolated" yaml:"cutoff_extrapolated"`
}

// Frequency evaluates the cascade on numPoints linearly spaced frequencies.
func (v *Validator) Frequency(numPoints int) (FrequencyReport, error) {
	freqs, h, err := v.cascade.FrequencyResponse(numPoints, sos.Linear)
	if err != nil {
		return FrequencyReport{}, err
	}

	magDB := magnitudeDB(h)
	phase := spectrum.UnwrapPhase(phases(h))
	gd := groupDelay(freqs, phase, v.cascade.SampleRate())

	rep := FrequencyReport{
		Frequencies: freqs,
		MagnitudeDB: magDB,
		PhaseRad:    phase,
		GroupDelay:  gd,
		DCGainDB:    magDB[0],
	}
	rep.CutoffHz, rep.CutoffExtrapolated = findCutoff(freqs, magDB)

	return rep, nil
}

// magnitudeDB returns 20*log10(max(|h|, magnitudeFloor)).
func magnitudeDB(h []complex128) []float64 {
	re := make([]float64, len(h))
	im := make([]float64, len(h))
	for i, z := range h {
		re[i] = real(z)
		im[i] = imag(z)
	}

	mag := make([]float64, len(h))
	vecmath.Magnitude(mag, re, im)

	for i, m := range mag {
		mag[i] = core.LinearToDB(m, magnitudeFloor)
	}

	return mag
}

func phases(h []complex128) []float64 {
	out := make([]float64, len(h))
	for i, z := range h {
		out[i] = cmplx.Phase(z)
	}

	return out
}

// groupDelay differentiates phase with respect to angular frequency in
// rad/sample using forward differences. The last value repeats the one
// before it.
func groupDelay(freqs, phase []float64, sampleRate float64) []float64 {
	if len(freqs) < 2 {
		return []float64{0}
	}

	gd := make([]float64, len(freqs))
	toOmega := 2 * math.Pi / sampleRate
	for i := 0; i < len(freqs)-1; i++ {
		dw := (freqs[i+1] - freqs[i]) * toOmega
		gd[i] = -(phase[i+1] - phase[i]) / dw
	}
	gd[len(gd)-1] = gd[len(gd)-2]

	return gd
}

// findCutoff returns the first frequency whose magnitude is at least 3 dB
// below the DC value. When no such point exists after DC, the last
// frequency is returned and the extrapolated flag is set.
func findCutoff(freqs, magDB []float64) (float64, bool) {
	if len(freqs) == 0 {
		return 0, true
	}

	threshold := magDB[0] - cutoffDropDB
	for i := 1; i < len(magDB); i++ {
		if magDB[i] <= threshold {
			return freqs[i], false
		}
	}

	return freqs[len(freqs)-1], true
}

// findCutoffFromNyquist mirrors findCutoff for highpass responses: it walks
// down from Nyquist and returns the first frequency 3 dB below the Nyquist
// gain. Without a crossing the lowest frequency is returned, extrapolated.
func findCutoffFromNyquist(freqs, magDB []float64) (float64, bool) {
	if len(freqs) == 0 {
		return 0, true
	}

	last := len(magDB) - 1
	threshold := magDB[last] - cutoffDropDB
	for i := last - 1; i >= 0; i-- {
		if magDB[i] <= threshold {
			return freqs[i], false
		}
	}

	return freqs[0], true
}
