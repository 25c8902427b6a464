package metrics

import (
	"math"
	"math/rand"
	"testing"
)

// constantSeries returns n samples of value c.
func constantSeries(n int, c float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = c
	}
	return s
}

func TestMTIE_ConstantSeriesIsZero(t *testing.T) {
	// 601 samples at 10 Hz, constant TE = 5000 ns.
	te := constantSeries(601, 5000)
	result := MTIE(te, 0.1, []float64{1, 10, 30})

	for _, tau := range []float64{1, 10, 30} {
		v := result.At(tau)
		if !v.Defined {
			t.Fatalf("MTIE(%gs) undefined, want defined", tau)
		}
		if math.Abs(v.Ns) > 1e-6 {
			t.Errorf("MTIE(%gs) = %g ns, want 0", tau, v.Ns)
		}
	}
}

func TestMTIE_WindowDoesNotFit(t *testing.T) {
	// 5 samples at 10 Hz requesting tau=30s: k=300 >= n, undefined.
	te := []float64{1, 2, 3, 4, 5}
	result := MTIE(te, 0.1, []float64{30})

	if result.At(30).Defined {
		t.Error("MTIE(30s) on a 5-sample series must be undefined")
	}
}

func TestMTIE_SingleSpikeMatchesReferenceLoop(t *testing.T) {
	// Constant 5000 ns with a +50000 ns spike at index 300. MTIE(1s)
	// must capture the jump, and every value must match a direct O(n*k)
	// double loop over the detrended residual.
	te := constantSeries(601, 5000)
	te[300] += 50000
	const dt = 0.1
	taus := []float64{1, 10, 30}

	result := MTIE(te, dt, taus)

	for _, tau := range taus {
		want, ok := mtieReference(te, dt, tau)
		got := result.At(tau)
		if got.Defined != ok {
			t.Fatalf("MTIE(%gs) defined=%v, reference=%v", tau, got.Defined, ok)
		}
		if got.Ns != want {
			t.Errorf("MTIE(%gs) = %v ns, reference loop = %v ns", tau, got.Ns, want)
		}
	}

	// The 1 s window straddles the spike; the excursion is ~50000 ns
	// (slightly less after detrending).
	v := result.At(1)
	if v.Ns < 45000 || v.Ns > 55000 {
		t.Errorf("MTIE(1s) = %g ns, want ~50000 ns", v.Ns)
	}
}

func TestMTIE_MatchesReferenceOnNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	te := make([]float64, 400)
	for i := range te {
		te[i] = 2000 + 300*float64(i)*0.1 + rng.NormFloat64()*150
	}
	const dt = 0.1
	taus := []float64{0.1, 0.5, 1, 5, 10}

	result := MTIE(te, dt, taus)

	for _, tau := range taus {
		want, ok := mtieReference(te, dt, tau)
		got := result.At(tau)
		if got.Defined != ok {
			t.Fatalf("MTIE(%gs) defined=%v, reference=%v", tau, got.Defined, ok)
		}
		if ok && got.Ns != want {
			t.Errorf("MTIE(%gs) = %v, reference = %v", tau, got.Ns, want)
		}
	}
}

func TestMTIE_NonNegative(t *testing.T) {
	te := []float64{-100, 200, -300, 50, 75, -20, 10, 400}
	result := MTIE(te, 1.0, []float64{1, 2, 3})
	for tau, v := range result {
		if v.Defined && v.Ns < 0 {
			t.Errorf("MTIE(%gs) = %g, must be >= 0", tau, v.Ns)
		}
	}
}

// mtieReference is the direct O(n*k) definition: max over every start index
// and the full window, on the detrended residual.
func mtieReference(teNs []float64, dtS, tauS float64) (float64, bool) {
	r := Detrend(teNs, dtS).Residuals
	n := len(r)
	k := int(math.Round(tauS / dtS))
	if k < 1 {
		k = 1
	}
	if k >= n {
		return 0, false
	}
	maxDiff := 0.0
	for i := 0; i+k < n; i++ {
		d := math.Abs(r[i+k] - r[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, true
}
