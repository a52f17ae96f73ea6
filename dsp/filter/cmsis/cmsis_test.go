package cmsis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
	"github.com/cwbudde/algo-iir/dsp/filter/synth"
)

func design() sos.Design {
	return sos.Design{SampleRate: 1000, Band: sos.Lowpass, Family: sos.Butterworth, Cutoff: []float64{100}, Order: 4}
}

func twoSections(t *testing.T) *sos.Cascade {
	t.Helper()

	c, err := sos.FromRows([][]float64{
		{0.2, 0.4, 0.2, 2, -0.5, 0.25},
		{0.1, -0.2, 0.1, 1, 0.3, 0.04},
	}, design())
	require.NoError(t, err)

	return c
}

func empty(t *testing.T) *sos.Cascade {
	t.Helper()

	c, err := sos.NewCascade(nil, design())
	require.NoError(t, err)

	return c
}

func TestToDF2T(t *testing.T) {
	seq, err := ToDF2T(twoSections(t), true)
	require.NoError(t, err)

	want := []float64{0.1, 0.2, 0.1, -0.25, 0.125, 0.1, -0.2, 0.1, 0.3, 0.04}
	require.Len(t, seq, 10)
	for i := range want {
		assert.InDelta(t, want[i], seq[i], 1e-15, "index %d", i)
	}

	raw, err := ToDF2T(twoSections(t), false)
	require.NoError(t, err)
	assert.Equal(t, 0.2, raw[0])
	assert.Equal(t, -0.5, raw[3])
}

func TestToDF1Layouts(t *testing.T) {
	c := twoSections(t)

	full, err := ToDF1(c, Full6, true)
	require.NoError(t, err)
	require.Len(t, full, 12)
	assert.Equal(t, 1.0, full[3])
	assert.Equal(t, 1.0, full[9])
	assert.InDelta(t, -0.25, full[4], 1e-15)

	compact, err := ToDF1(c, Compact5, true)
	require.NoError(t, err)
	require.Len(t, compact, 10)

	df2t, err := ToDF2T(c, true)
	require.NoError(t, err)
	assert.Equal(t, df2t, compact)

	_, err = ToDF1(c, Layout(7), true)
	assert.ErrorIs(t, err, ErrUnsupportedForm)
}

func TestEmptyCascadeEveryOperation(t *testing.T) {
	c := empty(t)

	_, err := ToDF2T(c, true)
	assert.ErrorIs(t, err, ErrNoCoefficients)
	assert.ErrorIs(t, err, sos.ErrNotDesigned)

	_, err = ToDF1(c, Full6, true)
	assert.ErrorIs(t, err, ErrNoCoefficients)

	_, err = ToDF1(c, Compact5, true)
	assert.ErrorIs(t, err, ErrNoCoefficients)

	for _, form := range []Form{DF1, DF2T} {
		for _, enc := range []sos.Encoding{sos.Float32, sos.Q15, sos.Q31} {
			_, err = Export(c, form, enc)
			assert.ErrorIs(t, err, ErrNoCoefficients)

			_, err = RenderHeader(c, form, enc, HeaderTarget{})
			assert.ErrorIs(t, err, ErrNoCoefficients)
		}
	}

	_, err = RenderText(nil, sos.Float32, 6, 5)
	assert.ErrorIs(t, err, ErrNoCoefficients)

	for _, enc := range []sos.Encoding{sos.Q15, sos.Q31} {
		_, err = QuantizeSequence(nil, enc)
		assert.ErrorIs(t, err, ErrNoCoefficients)

		_, err = QuantizeSequence([]float64{}, enc)
		assert.ErrorIs(t, err, sos.ErrNotDesigned)
	}

	err = RenderBinary(&bytes.Buffer{}, Exported{}, binary.LittleEndian)
	assert.ErrorIs(t, err, ErrNoCoefficients)
}

func TestExportLengthsAndState(t *testing.T) {
	c := twoSections(t)

	tests := []struct {
		form   Form
		opts   []ExportOption
		length int
		per    int
		state  int
	}{
		{DF2T, nil, 10, 5, 4},
		{DF1, nil, 12, 6, 8},
		{DF1, []ExportOption{WithLayout(Compact5)}, 10, 5, 8},
	}

	for _, tt := range tests {
		exp, err := Export(c, tt.form, sos.Float32, tt.opts...)
		require.NoError(t, err)
		assert.Len(t, exp.Values, tt.length, tt.form.String())
		assert.Equal(t, tt.per, exp.CoeffsPerSection)
		assert.Equal(t, tt.state, exp.StateSize)
		assert.Equal(t, tt.length, exp.NumCoeffs())
		assert.Nil(t, exp.Fixed)
	}
}

func TestExportButterworthRoundTrip(t *testing.T) {
	c, err := synth.Design(design())
	require.NoError(t, err)
	require.Equal(t, 2, c.NumSections())

	stable, err := c.IsStable()
	require.NoError(t, err)
	require.True(t, stable)

	exp, err := Export(c, DF2T, sos.Float32)
	require.NoError(t, err)
	assert.Len(t, exp.Values, 10)
}

func TestExportQuantized(t *testing.T) {
	exp, err := Export(twoSections(t), DF2T, sos.Q15)
	require.NoError(t, err)
	require.Len(t, exp.Fixed, 10)

	assert.Equal(t, int32(3276), exp.Fixed[0])  // 0.1
	assert.Equal(t, int32(-8192), exp.Fixed[3]) // -0.25
	assert.Equal(t, int32(4096), exp.Fixed[4])  // 0.125
	assert.Equal(t, int32(-6553), exp.Fixed[6]) // -0.2
	assert.Equal(t, 0, exp.Clipped)

	big, err := sos.FromRows([][]float64{{1, 2, 1, 1, -1.5, 0.7}}, design())
	require.NoError(t, err)

	exp, err = Export(big, DF2T, sos.Q31)
	require.NoError(t, err)
	assert.Equal(t, 4, exp.Clipped)
	assert.Equal(t, int32(2147483433), exp.Fixed[1])
	assert.Equal(t, int32(-2147483433), exp.Fixed[3])
}

func TestExportPostShiftAndNegation(t *testing.T) {
	big, err := sos.FromRows([][]float64{{1, 2, 1, 1, -1.5, 0.7}}, design())
	require.NoError(t, err)

	exp, err := Export(big, DF1, sos.Q15, WithLayout(Compact5), WithPostShift(1), WithNegatedFeedback())
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 0.5, 0.75, -0.35}, exp.Values)
	assert.Equal(t, 1, exp.PostShift)
	assert.Equal(t, 1, exp.Clipped)
	assert.Equal(t, int32(32767), exp.Fixed[1])
}

func TestExportUnsupported(t *testing.T) {
	_, err := Export(twoSections(t), Form(9), sos.Float32)
	assert.ErrorIs(t, err, ErrUnsupportedForm)

	_, err = Export(twoSections(t), DF2T, sos.Encoding(9))
	assert.ErrorIs(t, err, sos.ErrUnsupportedEncoding)

	_, err = ParseForm("DF3")
	assert.ErrorIs(t, err, ErrUnsupportedForm)

	f, err := ParseForm("df2t")
	require.NoError(t, err)
	assert.Equal(t, DF2T, f)
}

func TestQuantizeSequence(t *testing.T) {
	q, err := QuantizeSequence([]float64{0.5, -0.5, 1.2}, sos.Q15)
	require.NoError(t, err)
	assert.Equal(t, []int32{16384, -16384, 32767}, q)

	_, err = QuantizeSequence([]float64{0.1}, sos.Float32)
	assert.True(t, errors.Is(err, sos.ErrUnsupportedEncoding))
}

func TestRenderText(t *testing.T) {
	s, err := RenderText([]float64{0.5, -0.25, 1, 0, 0.125, 0.75}, sos.Float32, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, "0.5000f, -0.2500f, 1.0000f, 0.0000f, 0.1250f,\n0.7500f", s)

	s, err = RenderText([]float64{0.5, -0.5}, sos.Q15, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "0x4000, 0xC000", s)

	s, err = RenderText([]float64{0.5, -0.5}, sos.Q31, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "0x40000000, 0xC0000000", s)

	s, err = RenderText([]float64{-1.5}, sos.Q15, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "0x8001", s)
}

func TestExportedText(t *testing.T) {
	exp, err := Export(twoSections(t), DF2T, sos.Q15)
	require.NoError(t, err)

	text, err := exp.Text(DefaultPrecision)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "0x0CCC, "))
}

func TestRenderBinary(t *testing.T) {
	c := twoSections(t)

	exp, err := Export(c, DF2T, sos.Q15)
	require.NoError(t, err)

	var le bytes.Buffer
	require.NoError(t, RenderBinary(&le, exp, binary.LittleEndian))
	require.Equal(t, 20, le.Len())
	assert.Equal(t, uint16(0x0CCC), binary.LittleEndian.Uint16(le.Bytes()[0:2]))
	assert.Equal(t, uint16(0xE000), binary.LittleEndian.Uint16(le.Bytes()[6:8]))

	exp, err = Export(c, DF1, sos.Q31)
	require.NoError(t, err)

	var be bytes.Buffer
	require.NoError(t, RenderBinary(&be, exp, binary.BigEndian))
	require.Equal(t, 48, be.Len())
	assert.Equal(t, uint32(exp.Fixed[0]), binary.BigEndian.Uint32(be.Bytes()[0:4]))

	exp, err = Export(c, DF2T, sos.Float32)
	require.NoError(t, err)

	var fb bytes.Buffer
	require.NoError(t, RenderBinary(&fb, exp, binary.LittleEndian))
	require.Equal(t, 40, fb.Len())
	assert.Equal(t, float32(0.1), math.Float32frombits(binary.LittleEndian.Uint32(fb.Bytes()[0:4])))
}

func TestRenderHeaderDF2T(t *testing.T) {
	c, err := synth.Design(design())
	require.NoError(t, err)

	h, err := RenderHeader(c, DF2T, sos.Float32, HeaderTarget{FileName: "out/my-filter.h"})
	require.NoError(t, err)

	s := string(h)
	assert.Contains(t, s, "#ifndef MY_FILTER_H")
	assert.Contains(t, s, "#endif /* MY_FILTER_H */")
	assert.Contains(t, s, `#include "arm_math.h"`)
	assert.Contains(t, s, "#define IIR_NUM_SECTIONS    2")
	assert.Contains(t, s, "#define IIR_NUM_COEFFS      10")
	assert.Contains(t, s, "#define IIR_STATE_SIZE      4")
	assert.Contains(t, s, "static const float32_t iirCoeffs_DF2T[IIR_NUM_COEFFS] = {")
	assert.Contains(t, s, "arm_biquad_cascade_df2T_init_f32")
	assert.Equal(t, 10, strings.Count(s, "f,")+strings.Count(s, "f\n"))
}

func TestRenderHeaderDF1Q31(t *testing.T) {
	c, err := synth.Design(design())
	require.NoError(t, err)

	h, err := RenderHeader(c, DF1, sos.Q31, HeaderTarget{Prefix: "lp"}, WithPostShift(1))
	require.NoError(t, err)

	s := string(h)
	assert.Contains(t, s, "#ifndef IIR_FILTER_COEFFS_H")
	assert.Contains(t, s, "#define LP_NUM_COEFFS      12")
	assert.Contains(t, s, "#define LP_STATE_SIZE      8")
	assert.Contains(t, s, "static const q31_t iirCoeffs_DF1[LP_NUM_COEFFS]")
	assert.Contains(t, s, "arm_biquad_cascade_df1_init_q31")
	assert.Contains(t, s, "iirState, 1);")
	assert.Contains(t, s, "postShift = 1")
}

func TestRenderHeaderDF2TFixedPointNote(t *testing.T) {
	h, err := RenderHeader(twoSections(t), DF2T, sos.Q15, HeaderTarget{})
	require.NoError(t, err)
	assert.Contains(t, string(h), "No DF2T q15_t cascade kernel exists")
}

func TestRenderHeaderKernelNote(t *testing.T) {
	c := twoSections(t)

	tests := []struct {
		name string
		form Form
		enc  sos.Encoding
		opts []ExportOption
		note string
	}{
		{"df1 full6", DF1, sos.Float32, nil, "WithLayout(Compact5) and WithNegatedFeedback()"},
		{"df1 compact5 unnegated", DF1, sos.Q31, []ExportOption{WithLayout(Compact5)}, "-negate-feedback"},
		{"df1 stock", DF1, sos.Q31, []ExportOption{WithLayout(Compact5), WithNegatedFeedback()}, ""},
		{"df1 q15", DF1, sos.Q15, []ExportOption{WithLayout(Compact5), WithNegatedFeedback()}, "{b0, 0, b1, b2, -a1, -a2}"},
		{"df2t unnegated", DF2T, sos.Float32, nil, "WithNegatedFeedback() (iirdesign -negate-feedback)"},
		{"df2t stock", DF2T, sos.Float32, []ExportOption{WithNegatedFeedback()}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := RenderHeader(c, tt.form, tt.enc, HeaderTarget{}, tt.opts...)
			require.NoError(t, err)

			s := string(h)
			if tt.note == "" {
				assert.NotContains(t, s, "expects")
				return
			}

			assert.Contains(t, s, tt.note)
			assert.Contains(t, s, " * Usage:\n *\n * ")
		})
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout(" Compact5 ")
	require.NoError(t, err)
	assert.Equal(t, Compact5, l)

	l, err = ParseLayout("6")
	require.NoError(t, err)
	assert.Equal(t, Full6, l)

	_, err = ParseLayout("df1")
	assert.ErrorIs(t, err, ErrUnsupportedForm)
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "IIR_FILTER_COEFFS_H", includeGuard("iir_filter_coeffs.h"))
	assert.Equal(t, "_2ND_H", includeGuard("dir/2nd.h"))
}

func ExampleExport() {
	design := sos.Design{SampleRate: 1000, Band: sos.Lowpass, Cutoff: []float64{100}, Order: 2}
	c, _ := sos.FromRows([][]float64{{0.5, 1, 0.5, 2, -0.5, 0.25}}, design)

	exp, _ := Export(c, DF2T, sos.Q15)
	text, _ := exp.Text(0)
	fmt.Println(exp.NumCoeffs(), exp.StateSize)
	fmt.Println(text)
	// Output:
	// 5 2
	// 0x2000, 0x4000, 0x2000, 0xE000, 0x1000
}
