package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// Report aggregates all sub-reports for one cascade.
type Report struct {
	Design      sos.Design        `json:"design" yaml:"design"`
	Sections    int               `json:"sections" yaml:"sections"`
	Stability   StabilityReport   `json:"stability" yaml:"stability"`
	Causality   CausalityReport   `json:"causality" yaml:"causality"`
	Frequency   FrequencyReport   `json:"frequency" yaml:"frequency"`
	Sensitivity SensitivityReport `json:"sensitivity" yaml:"sensitivity"`
	Compliance  *ComplianceReport `json:"compliance,omitempty" yaml:"compliance,omitempty"`
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}

// WriteYAML writes the report as YAML.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(r); err != nil {
		return err
	}

	return enc.Close()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

// WriteText renders a human-readable summary.
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder

	b.WriteString("IIR FILTER VALIDATION REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	d := r.Design
	fmt.Fprintf(&b, "Design: %s %s, order %d, %d sections, fs=%g Hz, cutoff=%v Hz\n\n",
		d.Family, d.Band, d.Order, r.Sections, d.SampleRate, d.Cutoff)

	s := r.Stability
	b.WriteString("1. STABILITY\n")
	if s.Stable {
		b.WriteString("   - State: STABLE\n")
	} else {
		b.WriteString("   - State: UNSTABLE\n")
	}
	fmt.Fprintf(&b, "   - Stability margin: %.6f\n", s.Margin)
	fmt.Fprintf(&b, "   - Max pole magnitude: %.6f\n", s.MaxPoleMagnitude)
	fmt.Fprintf(&b, "   - Poles: %d, zeros: %d\n\n", len(s.Poles), len(s.Zeros))

	c := r.Causality
	b.WriteString("2. CAUSALITY\n")
	fmt.Fprintf(&b, "   - Causal: %s\n", yesNo(c.Causal))
	for _, is := range c.Issues {
		fmt.Fprintf(&b, "     * [%s] %s\n", is.Severity, is.Message)
	}
	fmt.Fprintf(&b, "   - Sections checked: %d\n\n", c.SectionsChecked)

	f := r.Frequency
	b.WriteString("3. FREQUENCY RESPONSE\n")
	fmt.Fprintf(&b, "   - DC gain: %.3f dB\n", f.DCGainDB)
	if f.CutoffExtrapolated {
		fmt.Fprintf(&b, "   - -3 dB cutoff: %.2f Hz (no crossing found, upper band edge reported)\n", f.CutoffHz)
	} else {
		fmt.Fprintf(&b, "   - -3 dB cutoff: %.2f Hz\n", f.CutoffHz)
	}
	if n := len(f.GroupDelay); n > 0 {
		fmt.Fprintf(&b, "   - Group delay at DC: %.3f samples\n", f.GroupDelay[0])
	}
	b.WriteString("\n")

	n := r.Sensitivity
	b.WriteString("4. NUMERICAL SENSITIVITY\n")
	fmt.Fprintf(&b, "   - %s\n", n.Summary())
	fmt.Fprintf(&b, "   - Stability robustness: %.3f\n", n.Robustness)
	fmt.Fprintf(&b, "   - Stability changes: %d\n", n.StabilityFlips)
	fmt.Fprintf(&b, "   - Mean magnitude change: %.6f dB\n", n.MeanMagnitudeDeviationDB)
	fmt.Fprintf(&b, "   - Max magnitude change: %.6f dB\n", n.MaxMagnitudeDeviationDB)

	if cr := r.Compliance; cr != nil {
		b.WriteString("\n5. SPECIFICATION COMPLIANCE\n")
		fmt.Fprintf(&b, "   - Pass: %s\n", yesNo(cr.Pass))
		if cc := cr.Cutoff; cc != nil {
			fmt.Fprintf(&b, "   - Cutoff: requested %.2f Hz, measured %.2f Hz, error %.2f%% (%s)\n",
				cc.RequestedHz, cc.MeasuredHz, 100*cc.RelativeError, passFail(cc.Pass))
		}
		if dc := cr.DCGain; dc != nil {
			fmt.Fprintf(&b, "   - DC gain: %.3f dB (%s)\n", dc.GainDB, passFail(dc.Pass))
		}
		fmt.Fprintf(&b, "   - Stable: %s, margin %.6f\n", yesNo(cr.Stability.Stable), cr.Stability.Margin)
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}

	return "FAIL"
}
