package sos

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		enc  Encoding
		want int32
	}{
		{"q15 half", 0.5, Q15, 16384},
		{"q15 negative half", -0.5, Q15, -16384},
		{"q15 zero", 0, Q15, 0},
		{"q15 clamps positive", 1.5, Q15, 32767},
		{"q15 clamps negative", -1.5, Q15, -32767},
		{"q15 truncates toward zero", -0.00002, Q15, 0},
		{"q31 half", 0.5, Q31, 1 << 30},
		{"q31 clamps positive", 2, Q31, 2147483433},
		{"q31 clamps negative", -2, Q31, -2147483433},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quantize(tt.v, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantizeNeverOverflows(t *testing.T) {
	for _, v := range []float64{1, -1, 0.99999999, math.Inf(1), math.Inf(-1)} {
		q15, err := Quantize(v, Q15)
		require.NoError(t, err)
		assert.LessOrEqual(t, q15, int32(math.MaxInt16))
		assert.GreaterOrEqual(t, q15, int32(-math.MaxInt16))

		_, err = Quantize(v, Q31)
		require.NoError(t, err)
	}
}

func TestQuantizeErrors(t *testing.T) {
	_, err := Quantize(0.1, Float32)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))

	_, err = Quantize(math.NaN(), Q15)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = Dequantize(1, Float32)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
}

func TestQuantizeRoundTrip(t *testing.T) {
	values := []float64{0.123456, -0.987654, 0.5, -0.25, 0.0001}

	for _, enc := range []Encoding{Q15, Q31} {
		step := math.Ldexp(1, -(enc.Bits() - 1))
		for _, v := range values {
			q, err := Quantize(v, enc)
			require.NoError(t, err)

			back, err := Dequantize(q, enc)
			require.NoError(t, err)
			assert.InDelta(t, v, back, step, "%v round trip of %v", enc, v)
		}
	}
}

func TestClips(t *testing.T) {
	assert.False(t, Clips(0.5))
	assert.False(t, Clips(QuantizeLimit))
	assert.True(t, Clips(1))
	assert.True(t, Clips(-1.2))
}

func TestParseEncoding(t *testing.T) {
	for name, want := range map[string]Encoding{
		"float32": Float32, "F32": Float32, "float32_t": Float32,
		"q15": Q15, "Q15_T": Q15, " q31 ": Q31,
	} {
		got, err := ParseEncoding(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseEncoding("q7")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestEncodingProperties(t *testing.T) {
	assert.Equal(t, "q15_t", Q15.CType())
	assert.Equal(t, "float32_t", Float32.CType())
	assert.Equal(t, 16, Q15.Bits())
	assert.Equal(t, 32, Q31.Bits())
	assert.True(t, Q31.Fixed())
	assert.False(t, Float32.Fixed())
}
