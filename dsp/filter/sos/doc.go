// Package sos provides second-order-section (biquad) cascade primitives for
// filter design tooling.
//
// A [Section] stores all six transfer-function coefficients, including a0,
// exactly as a synthesis routine produced them:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (A0 + A1 z^-1 + A2 z^-2)
//
// Sections are values and are never modified in place; [Section.Normalize]
// returns a new section scaled so that A0 = 1.
//
// A [Cascade] is an ordered, immutable list of sections plus the [Design]
// metadata that produced it. It derives pole/zero sets, stability and the
// combined frequency response, and can run the cascade offline over a test
// signal in Direct Form I or Direct Form II Transposed.
//
// Fixed-point helpers ([Quantize], [Dequantize]) implement the Q15/Q31
// conversion used by CMSIS-DSP style runtimes.
package sos
