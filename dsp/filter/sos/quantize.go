package sos

import (
	"fmt"
	"math"
	"strings"
)

// Encoding is the numeric representation of exported coefficients.
type Encoding int

const (
	// Float32 is IEEE-754 single precision (CMSIS float32_t).
	Float32 Encoding = iota
	// Q15 is 1.15 signed fixed point (CMSIS q15_t).
	Q15
	// Q31 is 1.31 signed fixed point (CMSIS q31_t).
	Q31
)

// QuantizeLimit bounds values before fixed-point scaling so that the scaled
// result never reaches the positive overflow boundary.
const QuantizeLimit = 0.9999999

// String returns the CMSIS data-type name ("float32", "q15", "q31").
func (e Encoding) String() string {
	switch e {
	case Float32:
		return "float32"
	case Q15:
		return "q15"
	case Q31:
		return "q31"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// CType returns the C element type used by CMSIS-DSP for the encoding.
func (e Encoding) CType() string {
	switch e {
	case Float32:
		return "float32_t"
	case Q15:
		return "q15_t"
	case Q31:
		return "q31_t"
	default:
		return ""
	}
}

// Fixed reports whether the encoding is a fixed-point format.
func (e Encoding) Fixed() bool {
	return e == Q15 || e == Q31
}

// Bits returns the storage width of one encoded element.
func (e Encoding) Bits() int {
	switch e {
	case Float32, Q31:
		return 32
	case Q15:
		return 16
	default:
		return 0
	}
}

// ParseEncoding maps a name such as "float32", "f32", "q15" or "q31" to an
// Encoding. Matching is case-insensitive.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "float32", "f32", "float32_t":
		return Float32, nil
	case "q15", "q15_t":
		return Q15, nil
	case "q31", "q31_t":
		return Q31, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

func fixedScale(enc Encoding) (float64, error) {
	switch enc {
	case Q15:
		return 1 << 15, nil
	case Q31:
		return 1 << 31, nil
	default:
		return 0, fmt.Errorf("%w: %v is not a fixed-point encoding", ErrUnsupportedEncoding, enc)
	}
}

// Quantize converts v to the Q15 or Q31 integer representation.
//
// The value is clamped to ±[QuantizeLimit] first and only then scaled by
// 2^15 or 2^31 and truncated toward zero.
func Quantize(v float64, enc Encoding) (int32, error) {
	scale, err := fixedScale(enc)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: cannot quantize NaN", ErrInvalidParameter)
	}

	clamped := math.Max(-QuantizeLimit, math.Min(QuantizeLimit, v))

	return int32(math.Trunc(clamped * scale)), nil
}

// Dequantize converts a Q15 or Q31 integer back to a float.
func Dequantize(q int32, enc Encoding) (float64, error) {
	scale, err := fixedScale(enc)
	if err != nil {
		return 0, err
	}

	return float64(q) / scale, nil
}

// Clips reports whether Quantize would clamp v.
func Clips(v float64) bool {
	return math.Abs(v) > QuantizeLimit
}
