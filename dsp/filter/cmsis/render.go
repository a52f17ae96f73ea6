package cmsis

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// DefaultPrecision is the number of decimals used for float literals.
const DefaultPrecision = 10

// FormatValue renders one coefficient. Floats use fixed precision with an
// f suffix; Q15 and Q31 render the two's complement bit pattern as 4 or 8
// hex digits.
func FormatValue(v float64, enc sos.Encoding, precision int) (string, error) {
	switch enc {
	case sos.Float32:
		return fmt.Sprintf("%.*ff", precision, v), nil
	case sos.Q15, sos.Q31:
		q, err := sos.Quantize(v, enc)
		if err != nil {
			return "", err
		}

		return formatFixed(q, enc), nil
	default:
		return "", fmt.Errorf("%w: %v", sos.ErrUnsupportedEncoding, enc)
	}
}

func formatFixed(q int32, enc sos.Encoding) string {
	if enc == sos.Q15 {
		return fmt.Sprintf("0x%04X", uint16(int16(q)))
	}

	return fmt.Sprintf("0x%08X", uint32(q))
}

// RenderText renders seq as comma-separated literals. When perSection is
// positive, a line break follows every perSection values.
func RenderText(seq []float64, enc sos.Encoding, precision, perSection int) (string, error) {
	if len(seq) == 0 {
		return "", ErrNoCoefficients
	}

	if precision < 0 {
		precision = DefaultPrecision
	}

	var b strings.Builder
	for i, v := range seq {
		lit, err := FormatValue(v, enc, precision)
		if err != nil {
			return "", fmt.Errorf("coefficient %d: %w", i, err)
		}

		if i > 0 {
			if perSection > 0 && i%perSection == 0 {
				b.WriteString(",\n")
			} else {
				b.WriteString(", ")
			}
		}

		b.WriteString(lit)
	}

	return b.String(), nil
}

// Text renders the exported values, one section per line.
func (e Exported) Text(precision int) (string, error) {
	if e.Encoding.Fixed() {
		var b strings.Builder
		for i, q := range e.Fixed {
			if i > 0 {
				if i%e.CoeffsPerSection == 0 {
					b.WriteString(",\n")
				} else {
					b.WriteString(", ")
				}
			}

			b.WriteString(formatFixed(q, e.Encoding))
		}

		if b.Len() == 0 {
			return "", ErrNoCoefficients
		}

		return b.String(), nil
	}

	return RenderText(e.Values, e.Encoding, precision, e.CoeffsPerSection)
}

// RenderBinary writes the packed coefficient stream: float32 for Float32,
// int16 for Q15, int32 for Q31.
func RenderBinary(w io.Writer, e Exported, order binary.ByteOrder) error {
	if e.NumCoeffs() == 0 {
		return ErrNoCoefficients
	}

	switch e.Encoding {
	case sos.Float32:
		buf := make([]float32, len(e.Values))
		for i, v := range e.Values {
			buf[i] = float32(v)
		}

		return binary.Write(w, order, buf)
	case sos.Q15:
		buf := make([]int16, len(e.Fixed))
		for i, q := range e.Fixed {
			buf[i] = int16(q)
		}

		return binary.Write(w, order, buf)
	case sos.Q31:
		return binary.Write(w, order, e.Fixed)
	default:
		return fmt.Errorf("%w: %v", sos.ErrUnsupportedEncoding, e.Encoding)
	}
}
