package cmsis

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

var (
	// ErrNoCoefficients is returned when exporting a cascade without
	// sections. It matches [sos.ErrNotDesigned] as well.
	ErrNoCoefficients = fmt.Errorf("cmsis: no coefficients to export: %w", sos.ErrNotDesigned)

	// ErrUnsupportedForm is returned for unknown form or layout values.
	ErrUnsupportedForm = errors.New("cmsis: unsupported filter form")
)
