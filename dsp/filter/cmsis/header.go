package cmsis

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

//go:embed header.tmpl
var headerSource string

var headerTemplate = template.Must(template.New("header").Parse(headerSource))

const (
	DefaultHeaderName = "iir_filter_coeffs.h"
	DefaultPrefix     = "IIR"
)

// HeaderTarget names the generated header.
type HeaderTarget struct {
	// FileName determines the include guard.
	FileName string
	// Prefix starts every #define.
	Prefix string
}

type kernelUsage struct {
	Supported bool
	// Note explains how the array differs from what the kernel expects.
	Note         string
	Instance     string
	Init         string
	Process      string
	PostShiftArg bool
}

type headerData struct {
	Guard        string
	Prefix       string
	Design       sos.Design
	Cutoff       string
	Form         Form
	LayoutNote   string
	CType        string
	NumSections  int
	NumCoeffs    int
	StateSize    int
	PostShift    int
	Clipped      int
	Coefficients string
	Usage        kernelUsage
}

// RenderHeader generates a self-contained C header declaring the
// coefficient array for form and enc, the section count, the total
// coefficient count and the state buffer size.
func RenderHeader(c *sos.Cascade, form Form, enc sos.Encoding, target HeaderTarget, opts ...ExportOption) ([]byte, error) {
	exp, err := Export(c, form, enc, opts...)
	if err != nil {
		return nil, err
	}

	text, err := exp.Text(DefaultPrecision)
	if err != nil {
		return nil, err
	}

	name := target.FileName
	if name == "" {
		name = DefaultHeaderName
	}

	prefix := target.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	d := c.Design()
	cutoff := make([]string, len(d.Cutoff))
	for i, f := range d.Cutoff {
		cutoff[i] = fmt.Sprintf("%g", f)
	}

	data := headerData{
		Guard:        includeGuard(name),
		Prefix:       identifier(prefix),
		Design:       d,
		Cutoff:       strings.Join(cutoff, "-"),
		Form:         form,
		LayoutNote:   layoutNote(exp),
		CType:        enc.CType(),
		NumSections:  exp.NumSections,
		NumCoeffs:    exp.NumCoeffs(),
		StateSize:    exp.StateSize,
		PostShift:    exp.PostShift,
		Clipped:      exp.Clipped,
		Coefficients: strings.ReplaceAll(text, "\n", "\n    "),
		Usage:        usageFor(exp),
	}

	var buf bytes.Buffer
	if err := headerTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("cmsis: rendering header: %w", err)
	}

	return buf.Bytes(), nil
}

func layoutNote(e Exported) string {
	if e.CoeffsPerSection == 6 {
		return "{b0, b1, b2, a0, a1, a2} per section"
	}

	return "{b0, b1, b2, a1, a2} per section"
}

func usageFor(e Exported) kernelUsage {
	form, enc := e.Form, e.Encoding
	suffix := map[sos.Encoding]string{sos.Float32: "f32", sos.Q15: "q15", sos.Q31: "q31"}[enc]
	kernel := "arm_biquad_cascade_" + form.symbol()

	if form == DF2T {
		if enc != sos.Float32 {
			return kernelUsage{}
		}

		return kernelUsage{
			Supported: true,
			Note:      kernelNote(e),
			Instance:  kernel + "_instance_" + suffix,
			Init:      kernel + "_init_" + suffix,
			Process:   kernel + "_" + suffix,
		}
	}

	return kernelUsage{
		Supported:    true,
		Note:         kernelNote(e),
		Instance:     "arm_biquad_casd_df1_inst_" + suffix,
		Init:         kernel + "_init_" + suffix,
		Process:      kernel + "_" + suffix,
		PostShiftArg: enc.Fixed(),
	}
}

// kernelNote describes the conversion the stock CMSIS-DSP kernels need.
// They add the feedback terms, so they expect -a1 and -a2.
func kernelNote(e Exported) string {
	switch {
	case e.Form == DF1 && e.Encoding == sos.Q15:
		return "arm_biquad_cascade_df1_q15 expects {b0, 0, b1, b2, -a1, -a2} per stage;\n" +
			" * rearrange this array before passing it to the init function."
	case e.Form == DF1 && (e.Layout != Compact5 || !e.NegatedFeedback):
		return "The stock kernel expects {b0, b1, b2, -a1, -a2} per stage; export with\n" +
			" * WithLayout(Compact5) and WithNegatedFeedback() (iirdesign -df1-layout compact5\n" +
			" * -negate-feedback) before passing this array to the init function."
	case e.Form == DF2T && !e.NegatedFeedback:
		return "The stock kernel expects {b0, b1, b2, -a1, -a2} per stage; export with\n" +
			" * WithNegatedFeedback() (iirdesign -negate-feedback) before passing this\n" +
			" * array to the init function."
	default:
		return ""
	}
}

// includeGuard turns a file name such as "coeffs/iir.h" into "IIR_H".
func includeGuard(name string) string {
	return identifier(filepath.Base(name))
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}

	return out
}
