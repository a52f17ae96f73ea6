package sos

import "errors"

var (
	// ErrNotDesigned is returned by analyses and exports on a cascade
	// without sections.
	ErrNotDesigned = errors.New("sos: no filter designed")

	// ErrDivisionByZero is returned when |a0| is below [HardEpsilon] and
	// the section cannot be normalized.
	ErrDivisionByZero = errors.New("sos: a0 too small to normalize")

	// ErrInvalidParameter is returned for invalid design metadata or
	// analysis arguments.
	ErrInvalidParameter = errors.New("sos: invalid parameter")

	// ErrUnsupportedEncoding is returned for numeric encodings that a
	// conversion does not handle.
	ErrUnsupportedEncoding = errors.New("sos: unsupported encoding")
)
