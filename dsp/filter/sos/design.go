package sos

import (
	"fmt"
	"strings"
)

// Band is the band type of a designed filter.
type Band int

const (
	Lowpass Band = iota
	Highpass
	Bandpass
	Bandstop
)

func (b Band) String() string {
	switch b {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Bandstop:
		return "bandstop"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// Edges returns the number of cutoff frequencies the band type needs.
func (b Band) Edges() int {
	if b == Bandpass || b == Bandstop {
		return 2
	}

	return 1
}

// ParseBand maps "lowpass", "highpass", "bandpass" or "bandstop" (and the
// short forms "lp", "hp", "bp", "bs") to a Band.
func ParseBand(name string) (Band, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lowpass", "lp":
		return Lowpass, nil
	case "highpass", "hp":
		return Highpass, nil
	case "bandpass", "bp":
		return Bandpass, nil
	case "bandstop", "bs", "notch":
		return Bandstop, nil
	default:
		return 0, fmt.Errorf("%w: unknown band type %q", ErrInvalidParameter, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Band) UnmarshalText(text []byte) error {
	v, err := ParseBand(string(text))
	if err != nil {
		return err
	}

	*b = v

	return nil
}

// Family is the classical approximation used by the synthesis step.
type Family int

const (
	Butterworth Family = iota
	Chebyshev1
	Chebyshev2
	Elliptic
	Bessel
)

func (f Family) String() string {
	switch f {
	case Butterworth:
		return "butterworth"
	case Chebyshev1:
		return "chebyshev1"
	case Chebyshev2:
		return "chebyshev2"
	case Elliptic:
		return "elliptic"
	case Bessel:
		return "bessel"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily maps an approximation name to a Family.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "butterworth", "butter":
		return Butterworth, nil
	case "chebyshev1", "cheby1":
		return Chebyshev1, nil
	case "chebyshev2", "cheby2":
		return Chebyshev2, nil
	case "elliptic", "ellip", "cauer":
		return Elliptic, nil
	case "bessel", "thomson":
		return Bessel, nil
	default:
		return 0, fmt.Errorf("%w: unknown filter family %q", ErrInvalidParameter, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	v, err := ParseFamily(string(text))
	if err != nil {
		return err
	}

	*f = v

	return nil
}

// Design is the metadata describing how a cascade was synthesized.
type Design struct {
	SampleRate float64   `json:"sample_rate" yaml:"sample_rate"`
	Band       Band      `json:"band" yaml:"band"`
	Family     Family    `json:"family" yaml:"family"`
	Cutoff     []float64 `json:"cutoff_hz" yaml:"cutoff_hz"`
	Order      int       `json:"order" yaml:"order"`
	RippleDB   float64   `json:"ripple_db,omitempty" yaml:"ripple_db,omitempty"`
	StopbandDB float64   `json:"stopband_db,omitempty" yaml:"stopband_db,omitempty"`
}

// Nyquist returns half the sample rate.
func (d Design) Nyquist() float64 {
	return d.SampleRate / 2
}

// Sections returns ceil(Order/2), the section count the synthesis step is
// expected to produce.
func (d Design) Sections() int {
	return (d.Order + 1) / 2
}

// Validate checks sample rate, order and band edges. Every violation wraps
// [ErrInvalidParameter].
func (d Design) Validate() error {
	if !(d.SampleRate > 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidParameter, d.SampleRate)
	}

	if d.Order <= 0 {
		return fmt.Errorf("%w: order must be > 0: %d", ErrInvalidParameter, d.Order)
	}

	if d.Band < Lowpass || d.Band > Bandstop {
		return fmt.Errorf("%w: unknown band type %v", ErrInvalidParameter, d.Band)
	}

	if d.Family < Butterworth || d.Family > Bessel {
		return fmt.Errorf("%w: unknown filter family %v", ErrInvalidParameter, d.Family)
	}

	if len(d.Cutoff) != d.Band.Edges() {
		return fmt.Errorf("%w: %v needs %d cutoff frequencies, got %d",
			ErrInvalidParameter, d.Band, d.Band.Edges(), len(d.Cutoff))
	}

	nyq := d.Nyquist()
	for _, f := range d.Cutoff {
		if !(f > 0) || f >= nyq {
			return fmt.Errorf("%w: cutoff %v Hz must be in (0, %v)", ErrInvalidParameter, f, nyq)
		}
	}

	if len(d.Cutoff) == 2 && d.Cutoff[0] >= d.Cutoff[1] {
		return fmt.Errorf("%w: low edge %v Hz must be below high edge %v Hz",
			ErrInvalidParameter, d.Cutoff[0], d.Cutoff[1])
	}

	return nil
}

func (d Design) clone() Design {
	d.Cutoff = append([]float64(nil), d.Cutoff...)
	return d
}
