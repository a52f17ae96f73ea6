// Package validate derives diagnostic reports from a biquad cascade.
//
// A [Validator] reads an immutable [sos.Cascade] and produces independent
// sub-reports: pole stability, causality of the section denominators,
// frequency-domain diagnostics (magnitude, unwrapped phase, group delay,
// -3 dB point), Monte-Carlo sensitivity to coefficient perturbation, and
// compliance with the requested design. [Validator.Validate] bundles all of
// them into a [Report].
//
// Sensitivity analysis is the only randomized operation. It draws from an
// injected math/rand/v2 source so results are reproducible for a fixed seed,
// regardless of how many workers evaluate the trials.
package validate
