package metrics

import (
	"math"
	"testing"

	"clocklab/internal/domain"
)

func TestADEV_ConstantFrequencyIsZero(t *testing.T) {
	freq := constantSeries(100, 1e-9)
	result := ADEV(freq, 1.0, []float64{1, 10})

	for _, tau := range []float64{1, 10} {
		v := result.At(tau)
		if !v.Defined {
			t.Fatalf("ADEV(%gs) undefined, want defined", tau)
		}
		if v.Ns != 0 {
			t.Errorf("ADEV(%gs) = %g, want 0", tau, v.Ns)
		}
	}
}

func TestADEV_FewerThanTwoBlocksUndefined(t *testing.T) {
	freq := constantSeries(10, 1e-9)

	// m = 10 leaves a single block; m = 6 leaves one full block.
	result := ADEV(freq, 1.0, []float64{10, 6})
	if result.At(10).Defined {
		t.Error("ADEV with m >= n must be undefined")
	}
	if result.At(6).Defined {
		t.Error("ADEV with fewer than 2 blocks must be undefined")
	}

	// m = 5 gives exactly two blocks.
	result = ADEV(freq, 1.0, []float64{5})
	if !result.At(5).Defined {
		t.Error("ADEV with exactly 2 blocks must be defined")
	}
}

func TestADEV_AlternatingBlocks(t *testing.T) {
	// Blocks of m=1 alternating between +f and -f:
	// successive differences are +/-2f, allan variance = (2f)^2/2 = 2f^2,
	// ADEV = f*sqrt(2).
	const f = 1e-8
	freq := make([]float64, 50)
	for i := range freq {
		if i%2 == 0 {
			freq[i] = f
		} else {
			freq[i] = -f
		}
	}

	result := ADEV(freq, 1.0, []float64{1})
	v := result.At(1)
	if !v.Defined {
		t.Fatal("ADEV(1s) undefined")
	}
	want := f * math.Sqrt2
	if math.Abs(v.Ns-want) > 1e-18 {
		t.Errorf("ADEV(1s) = %g, want %g", v.Ns, want)
	}
}

func TestADEV_NonNegative(t *testing.T) {
	freq := []float64{1e-9, -2e-9, 3e-9, 0, -1e-9, 2e-9, -3e-9, 1e-9}
	result := ADEV(freq, 1.0, []float64{1, 2, 3})
	for tau, v := range result {
		if v.Defined && v.Ns < 0 {
			t.Errorf("ADEV(%gs) = %g, must be >= 0", tau, v.Ns)
		}
	}
}

func TestFractionalFrequency_LinearRamp(t *testing.T) {
	// A linear TE ramp of b ns/s is a constant fractional frequency b/1e9.
	const (
		b  = 500.0 // ns/s
		dt = 0.1
	)
	samples := make([]domain.TimeErrorSample, 100)
	for i := range samples {
		samples[i] = domain.TimeErrorSample{
			TimestampNs: int64(i) * int64(dt*1e9),
			TENs:        b * float64(i) * dt,
		}
	}
	series, err := domain.NewTimeErrorSeriesWithRate(samples, 1/dt)
	if err != nil {
		t.Fatalf("NewTimeErrorSeriesWithRate: %v", err)
	}

	freq, err := FractionalFrequency(series)
	if err != nil {
		t.Fatalf("FractionalFrequency: %v", err)
	}
	if len(freq) != 99 {
		t.Fatalf("len(freq) = %d, want 99", len(freq))
	}

	want := b / 1e9
	for i, y := range freq {
		if math.Abs(y-want) > 1e-15 {
			t.Errorf("freq[%d] = %g, want %g", i, y, want)
		}
	}
}

func TestFractionalFrequency_InsufficientData(t *testing.T) {
	series, err := domain.NewTimeErrorSeries([]domain.TimeErrorSample{{TimestampNs: 1, TENs: 5}})
	if err != nil {
		t.Fatalf("NewTimeErrorSeries: %v", err)
	}

	if _, err := FractionalFrequency(series); err != ErrInsufficientData {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
