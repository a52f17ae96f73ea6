// Package probe runs a designed cascade over deterministic test signals and
// measures what comes out: impulse and step responses, tone gains, noise
// rejection and an FFT cross-check against the analytic response.
package probe
