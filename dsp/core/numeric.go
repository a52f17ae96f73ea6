package core

import "math"

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Values below floor are raised to floor first, so a positive floor keeps
// the result finite.
func LinearToDB(linear, floor float64) float64 {
	return 20 * math.Log10(math.Max(linear, floor))
}

// PowerToDB converts a power ratio to dB (10*log10 convention) with the
// same flooring as LinearToDB.
func PowerToDB(power, floor float64) float64 {
	return 10 * math.Log10(math.Max(power, floor))
}
