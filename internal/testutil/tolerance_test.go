package testutil

import (
	"math"
	"testing"
)

func TestRequireSliceNearlyEqualPasses(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1 + 1e-10, 2}, 1e-9)
}

func TestRequireFinitePasses(t *testing.T) {
	RequireFinite(t, []float64{0, -1, math.MaxFloat64})
}
