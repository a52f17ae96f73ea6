package cmsis

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

type exportConfig struct {
	layout         Layout
	normalize      bool
	negateFeedback bool
	postShift      int
}

// ExportOption configures Export and RenderHeader.
type ExportOption func(*exportConfig)

func applyExportOptions(opts []ExportOption) exportConfig {
	cfg := exportConfig{layout: Full6, normalize: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// WithLayout selects the DF1 layout. The default is [Full6].
func WithLayout(l Layout) ExportOption {
	return func(cfg *exportConfig) {
		cfg.layout = l
	}
}

// WithoutNormalization emits coefficients as stored. The caller must
// ensure every a0 is already 1.
func WithoutNormalization() ExportOption {
	return func(cfg *exportConfig) {
		cfg.normalize = false
	}
}

// WithNegatedFeedback flips the sign of a1 and a2, matching kernels that
// add rather than subtract the feedback terms.
func WithNegatedFeedback() ExportOption {
	return func(cfg *exportConfig) {
		cfg.negateFeedback = true
	}
}

// WithPostShift divides every coefficient by 2^shift before quantization so
// that values outside [-1, 1) survive; the kernel restores the gain with
// its postShift argument. Negative shifts are ignored.
func WithPostShift(shift int) ExportOption {
	return func(cfg *exportConfig) {
		if shift >= 0 {
			cfg.postShift = shift
		}
	}
}

func prepared(c *sos.Cascade, normalize bool) ([]sos.Section, error) {
	if c == nil || c.Empty() {
		return nil, ErrNoCoefficients
	}

	if !normalize {
		return c.Sections(), nil
	}

	return c.Normalized()
}

// ToDF2T returns the flat DF2T sequence, five values per section.
func ToDF2T(c *sos.Cascade, normalize bool) ([]float64, error) {
	sections, err := prepared(c, normalize)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, 5*len(sections))
	for _, s := range sections {
		out = append(out, s.B0, s.B1, s.B2, s.A1, s.A2)
	}

	return out, nil
}

// ToDF1 returns the flat DF1 sequence in the given layout. With Full6 the
// fourth value of each section is a0 (1 after normalization).
func ToDF1(c *sos.Cascade, layout Layout, normalize bool) ([]float64, error) {
	if layout != Compact5 && layout != Full6 {
		return nil, fmt.Errorf("%w: unknown DF1 layout %v", ErrUnsupportedForm, layout)
	}

	sections, err := prepared(c, normalize)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, layout.PerSection()*len(sections))
	for _, s := range sections {
		if layout == Full6 {
			out = append(out, s.B0, s.B1, s.B2, s.A0, s.A1, s.A2)
		} else {
			out = append(out, s.B0, s.B1, s.B2, s.A1, s.A2)
		}
	}

	return out, nil
}

// QuantizeSequence quantizes every value with [sos.Quantize].
func QuantizeSequence(seq []float64, enc sos.Encoding) ([]int32, error) {
	if len(seq) == 0 {
		return nil, ErrNoCoefficients
	}

	out := make([]int32, len(seq))
	for i, v := range seq {
		q, err := sos.Quantize(v, enc)
		if err != nil {
			return nil, fmt.Errorf("coefficient %d: %w", i, err)
		}

		out[i] = q
	}

	return out, nil
}

// Exported is one flat coefficient blob ready for a CMSIS kernel.
type Exported struct {
	Form     Form
	Encoding sos.Encoding
	// Layout is meaningful for DF1 only.
	Layout Layout
	// Values holds the coefficients after normalization, feedback sign
	// and post-shift scaling, before quantization.
	Values []float64
	// Fixed holds the quantized values for Q15 and Q31.
	Fixed []int32

	NumSections      int
	CoeffsPerSection int
	StateSize        int
	PostShift        int
	// NegatedFeedback is set when a1 and a2 carry flipped signs.
	NegatedFeedback bool
	// Clipped counts values that quantization clamped.
	Clipped int
}

// NumCoeffs returns NumSections * CoeffsPerSection.
func (e Exported) NumCoeffs() int {
	return e.NumSections * e.CoeffsPerSection
}

// Export builds the flat sequence for form and enc.
func Export(c *sos.Cascade, form Form, enc sos.Encoding, opts ...ExportOption) (Exported, error) {
	if !form.valid() {
		return Exported{}, fmt.Errorf("%w: %v", ErrUnsupportedForm, form)
	}

	if enc != sos.Float32 && !enc.Fixed() {
		return Exported{}, fmt.Errorf("%w: %v", sos.ErrUnsupportedEncoding, enc)
	}

	cfg := applyExportOptions(opts)

	var (
		values []float64
		per    int
		err    error
	)

	if form == DF2T {
		values, err = ToDF2T(c, cfg.normalize)
		per = 5
	} else {
		values, err = ToDF1(c, cfg.layout, cfg.normalize)
		per = cfg.layout.PerSection()
	}

	if err != nil {
		return Exported{}, err
	}

	// Offsets of a1 and a2 within one section.
	a1 := per - 2
	scale := math.Ldexp(1, -cfg.postShift)
	for i := range values {
		k := i % per
		if cfg.negateFeedback && k >= a1 {
			values[i] = -values[i]
		}

		values[i] *= scale
	}

	exp := Exported{
		Form:             form,
		Encoding:         enc,
		Layout:           cfg.layout,
		Values:           values,
		NumSections:      c.NumSections(),
		CoeffsPerSection: per,
		StateSize:        c.NumSections() * form.StatePerSection(),
		PostShift:        cfg.postShift,
		NegatedFeedback:  cfg.negateFeedback,
	}

	if form == DF2T {
		exp.Layout = Compact5
	}

	if enc.Fixed() {
		exp.Fixed, err = QuantizeSequence(values, enc)
		if err != nil {
			return Exported{}, err
		}

		for _, v := range values {
			if sos.Clips(v) {
				exp.Clipped++
			}
		}
	}

	return exp, nil
}
