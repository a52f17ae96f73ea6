// Package cmsis converts biquad cascades into the coefficient layouts that
// CMSIS-DSP cascade biquad kernels consume.
//
// Two forms are supported. Direct Form II Transposed emits five values per
// section, [b0, b1, b2, a1, a2], and needs two state words per section.
// Direct Form I exists in two named layouts that downstream consumers
// disagree on: [Compact5] emits the same five values, [Full6] emits
// [b0, b1, b2, 1, a1, a2]. DF1 needs four state words per section.
//
// Values may be emitted as float32 or quantized to Q15/Q31 with
// [sos.Quantize]; text, C header and packed binary renderings are provided.
package cmsis
