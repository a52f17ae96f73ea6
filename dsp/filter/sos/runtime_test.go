package sos

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-iir/internal/testutil"
)

func TestImpulseResponseKnownValues(t *testing.T) {
	c, err := FromRows([][]float64{{0.25, 0.5, 0.25, 1, -0.2, 0.04}}, testDesign())
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	got, err := c.ImpulseResponse(6)
	if err != nil {
		t.Fatalf("ImpulseResponse: %v", err)
	}

	want := []float64{0.25, 0.55, 0.35, 0.048, -0.0044, -0.0028}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestFilterStructuresAgree(t *testing.T) {
	c, err := FromRows([][]float64{
		{0.4, 0.8, 0.4, 2, -0.6, 0.3},
		{1, -1, 0, 1, -0.5, 0},
	}, testDesign())
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	x := testutil.DeterministicNoise(7, 1, 256)
	orig := append([]float64(nil), x...)

	df2t, err := c.Filter(x, DirectForm2Transposed)
	if err != nil {
		t.Fatalf("DF2T: %v", err)
	}

	df1, err := c.Filter(x, DirectForm1)
	if err != nil {
		t.Fatalf("DF1: %v", err)
	}

	testutil.RequireFinite(t, df1)
	testutil.RequireSliceNearlyEqual(t, df1, df2t, 1e-9)

	testutil.RequireSliceNearlyEqual(t, x, orig, 0)
}

func TestBiquadsAreNormalized(t *testing.T) {
	c, err := FromRows([][]float64{
		{0.4, 0.8, 0.4, 2, -0.6, 0.3},
		{1, -1, 0, 1, -0.5, 0},
	}, testDesign())
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	got, err := c.Biquads()
	if err != nil {
		t.Fatalf("Biquads: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	first := []float64{got[0].B0, got[0].B1, got[0].B2, got[0].A1, got[0].A2}
	testutil.RequireSliceNearlyEqual(t, first, []float64{0.2, 0.4, 0.2, -0.3, 0.15}, 1e-15)

	second := []float64{got[1].B0, got[1].B1, got[1].B2, got[1].A1, got[1].A2}
	testutil.RequireSliceNearlyEqual(t, second, []float64{1, -1, 0, -0.5, 0}, 0)

	empty, err := NewCascade(nil, testDesign())
	if err != nil {
		t.Fatalf("NewCascade: %v", err)
	}

	if _, err := empty.Biquads(); !errors.Is(err, ErrNotDesigned) {
		t.Fatalf("empty cascade: err = %v, want ErrNotDesigned", err)
	}
}

func TestStepResponseSettlesToDCGain(t *testing.T) {
	c, err := FromRows([][]float64{{1, 0, 0, 1, -1.5, 0.7}}, testDesign())
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	y, err := c.StepResponse(400)
	if err != nil {
		t.Fatalf("StepResponse: %v", err)
	}

	if math.Abs(y[len(y)-1]-5) > 1e-6 {
		t.Fatalf("step settled at %v, want 5", y[len(y)-1])
	}
}

func TestFilterErrors(t *testing.T) {
	c, err := FromRows([][]float64{{1, 0, 0, 1, 0, 0}}, testDesign())
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	if _, err := c.Filter([]float64{1}, Structure(9)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}

	if _, err := c.ImpulseResponse(0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestStructureStateSize(t *testing.T) {
	if DirectForm1.StatePerSection() != 4 || DirectForm2Transposed.StatePerSection() != 2 {
		t.Fatal("unexpected state sizes")
	}

	if DirectForm1.String() != "DF1" || DirectForm2Transposed.String() != "DF2T" {
		t.Fatal("unexpected structure names")
	}
}
