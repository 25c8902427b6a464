// Package metrics implements the timing-stability metrics defined by
// ITU-T G.810/G.8260 and IEEE 1588-2019 Annex J: detrended TE statistics,
// MTIE, TDEV and overlapping Allan deviation. All functions are pure and
// operate on complete in-memory sequences; undefined observation windows
// are values, never errors.
package metrics

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"clocklab/internal/domain"
)

// ErrInsufficientData is returned when a computation requires more samples
// than the caller supplied (as opposed to a tau that merely does not fit,
// which yields an undefined metric value).
var ErrInsufficientData = errors.New("insufficient samples for computation")

const nsPerSecond = 1e9

// Detrend removes the ordinary-least-squares linear trend from y, sampled
// at dtS second intervals. The fit is the closed-form sum formulation
// (gonum stat.LinearRegression), O(n), so the residuals reproduce bit-for-bit
// across independent recomputations.
//
// Fewer than two samples, or a degenerate time axis (dtS <= 0), return the
// input unchanged with zero slope. Detrend never fails.
func Detrend(y []float64, dtS float64) domain.DetrendResult {
	n := len(y)
	if n < 2 || dtS <= 0 {
		residuals := make([]float64, n)
		copy(residuals, y)
		return domain.DetrendResult{Residuals: residuals, OffsetNs: 0, SlopePpm: 0}
	}

	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dtS
	}

	offset, slope := stat.LinearRegression(t, y, nil, false)

	residuals := make([]float64, n)
	for i := range y {
		residuals[i] = y[i] - (slope*t[i] + offset)
	}

	// Slope is ns/s on a nanosecond-valued input; ns/s / 1e9 is the
	// dimensionless frequency offset, scaled to ppm.
	return domain.DetrendResult{
		Residuals: residuals,
		OffsetNs:  offset,
		SlopePpm:  slope / nsPerSecond * 1e6,
	}
}
