package metrics

import (
	"math"
	"testing"
)

func TestTDEV_ConstantSeriesIsZero(t *testing.T) {
	te := constantSeries(601, 5000)
	result := TDEV(te, 0.1, []float64{0.1, 1, 10})

	for _, tau := range []float64{0.1, 1, 10} {
		v := result.At(tau)
		if !v.Defined {
			t.Fatalf("TDEV(%gs) undefined, want defined", tau)
		}
		if math.Abs(v.Ns) > 1e-6 {
			t.Errorf("TDEV(%gs) = %g ns, want 0", tau, v.Ns)
		}
	}
}

func TestTDEV_LinearRampIsZero(t *testing.T) {
	// A pure ramp detrends to zero residual, so TDEV is zero too.
	te := make([]float64, 200)
	for i := range te {
		te[i] = 100 + 250*float64(i)*0.1
	}
	result := TDEV(te, 0.1, []float64{1})

	v := result.At(1)
	if !v.Defined {
		t.Fatal("TDEV(1s) undefined, want defined")
	}
	if math.Abs(v.Ns) > 1e-6 {
		t.Errorf("TDEV(1s) = %g ns, want ~0", v.Ns)
	}
}

func TestTDEV_WindowDoesNotFit(t *testing.T) {
	// n >= 2m+1 required: 5 samples at 10 Hz cannot support tau=30s (m=300).
	te := []float64{1, 2, 3, 4, 5}
	result := TDEV(te, 0.1, []float64{30})
	if result.At(30).Defined {
		t.Error("TDEV(30s) on a 5-sample series must be undefined")
	}

	// Boundary: n = 2m exactly is still insufficient.
	te = constantSeries(20, 0)
	result = TDEV(te, 1.0, []float64{10})
	if result.At(10).Defined {
		t.Error("TDEV with n == 2m must be undefined")
	}

	// n = 2m+1 gives exactly one second difference.
	te = constantSeries(21, 0)
	result = TDEV(te, 1.0, []float64{10})
	if !result.At(10).Defined {
		t.Error("TDEV with n == 2m+1 must be defined")
	}
}

func TestTDEV_KnownSecondDifference(t *testing.T) {
	// Hand-computed case with m=1. Second differences cancel any fitted
	// line, so they can be computed on the raw input: for an alternating
	// +a/-a series, d_i = x[i+2] - 2x[i+1] + x[i] alternates +/-4a,
	// mean(d^2) = 16a^2, TDEV = sqrt(16a^2/2) = a*sqrt(8).
	const a = 10.0
	te := []float64{a, -a, a, -a, a, -a, a, -a}
	result := TDEV(te, 1.0, []float64{1})

	v := result.At(1)
	if !v.Defined {
		t.Fatal("TDEV(1s) undefined")
	}
	want := a * math.Sqrt(8)
	if math.Abs(v.Ns-want) > 1e-9 {
		t.Errorf("TDEV(1s) = %g, want %g", v.Ns, want)
	}
}

func TestTDEV_NonNegative(t *testing.T) {
	te := []float64{3, -7, 2, 9, -1, 0, 4, -6, 8, 5}
	result := TDEV(te, 1.0, []float64{1, 2, 3, 4})
	for tau, v := range result {
		if v.Defined && v.Ns < 0 {
			t.Errorf("TDEV(%gs) = %g, must be >= 0", tau, v.Ns)
		}
	}
}
