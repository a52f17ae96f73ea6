package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{2, 1, 0, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Fatalf("Clamp(%v,%v,%v)=%v want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestDBConversions(t *testing.T) {
	if got := LinearToDB(10, 1e-10); math.Abs(got-20) > 1e-12 {
		t.Fatalf("LinearToDB(10)=%v want 20", got)
	}
	if got := LinearToDB(0, 1e-10); math.Abs(got+200) > 1e-9 {
		t.Fatalf("LinearToDB(0)=%v want -200", got)
	}
	if got := PowerToDB(100, 1e-10); math.Abs(got-20) > 1e-12 {
		t.Fatalf("PowerToDB(100)=%v want 20", got)
	}
	if got := DBToLinear(-6.020599913279624); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("DBToLinear(-6.02)=%v want 0.5", got)
	}
}
