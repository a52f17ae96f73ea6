// Package synth produces biquad cascades from filter design parameters.
//
// Lowpass and highpass designs for every [sos.Family] are delegated to the
// published algo-dsp pass designers. Bandpass and bandstop designs are
// built here for the Butterworth and Chebyshev type I families: the analog
// lowpass prototype is transformed to the band, mapped with a prewarped
// bilinear transform and grouped into conjugate pole pairs.
//
// For bandpass and bandstop the order is the total filter order and must be
// even; the prototype has half of it, so every design yields ceil(order/2)
// sections.
package synth
