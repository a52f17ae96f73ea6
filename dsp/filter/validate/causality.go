package validate

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// Severity grades a causality issue.
type Severity int

const (
	// SeverityWarning marks an ill-conditioned but realizable section.
	SeverityWarning Severity = iota
	// SeverityError marks a section whose a0 is effectively zero.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue is a problem found in one section (1-based index).
type Issue struct {
	Section  int      `json:"section" yaml:"section"`
	A0       float64  `json:"a0" yaml:"a0"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

// CausalityReport lists per-section denominator issues. Causal is false as
// soon as any section reports an issue, warnings included.
type CausalityReport struct {
	Causal          bool    `json:"causal" yaml:"causal"`
	SectionsChecked int     `json:"sections_checked" yaml:"sections_checked"`
	Issues          []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Causality checks every section's a0 against [sos.HardEpsilon] and
// [sos.SoftEpsilon].
func (v *Validator) Causality() CausalityReport {
	sections := v.cascade.Sections()
	rep := CausalityReport{Causal: true, SectionsChecked: len(sections)}

	for i, s := range sections {
		a0 := math.Abs(s.A0)

		switch {
		case a0 < sos.HardEpsilon:
			rep.Issues = append(rep.Issues, Issue{
				Section:  i + 1,
				A0:       s.A0,
				Severity: SeverityError,
				Message:  fmt.Sprintf("section %d: a0 is zero or too small (%g), section is not realizable", i+1, s.A0),
			})
		case a0 < sos.SoftEpsilon:
			rep.Issues = append(rep.Issues, Issue{
				Section:  i + 1,
				A0:       s.A0,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("section %d: a0 is numerically problematic (%g)", i+1, s.A0),
			})
		}
	}

	rep.Causal = len(rep.Issues) == 0

	return rep
}
