// Package uncertainty builds GUM measurement-uncertainty budgets for timing
// measurements: Type A components from repeated observations, Type B
// components from specification bounds, combined by root-sum-square.
//
// The RSS combination assumes the sources are uncorrelated. That is an
// engineering simplification; correlated sources (e.g. a shared oscillator
// feeding both paths) need a covariance treatment this package does not
// attempt.
package uncertainty

import (
	"errors"
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"clocklab/internal/domain"
)

// CoverageFactor is the fixed expansion factor k. k=2 gives approximately
// 95 % coverage under a normal approximation.
const CoverageFactor = 2.0

var (
	// ErrInvalidComponent rejects malformed budget entries at Add time.
	ErrInvalidComponent = errors.New("invalid uncertainty component")
	// ErrInsufficientObservations is returned for Type A evaluation with
	// fewer than two observations.
	ErrInsufficientObservations = errors.New("type A evaluation needs at least 2 observations")
)

// Budget accumulates uncertainty components and summarizes them on demand.
// Not safe for concurrent mutation.
type Budget struct {
	components []domain.UncertaintyComponent
}

// NewBudget returns an empty budget.
func NewBudget() *Budget {
	return &Budget{}
}

// Add appends a component after basic validation. A zero sensitivity
// coefficient is rewritten to 1 so that spec-sheet entries can omit it.
func (b *Budget) Add(c domain.UncertaintyComponent) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidComponent)
	}
	if c.StandardUncertaintyNs < 0 || math.IsNaN(c.StandardUncertaintyNs) {
		return fmt.Errorf("%w: %s has standard uncertainty %g ns",
			ErrInvalidComponent, c.Name, c.StandardUncertaintyNs)
	}
	if c.DegreesOfFreedom != nil && *c.DegreesOfFreedom < 1 {
		return fmt.Errorf("%w: %s has %d degrees of freedom",
			ErrInvalidComponent, c.Name, *c.DegreesOfFreedom)
	}
	if c.SensitivityCoefficient == 0 {
		c.SensitivityCoefficient = 1
	}
	b.components = append(b.components, c)
	return nil
}

// Components returns a copy of the accumulated components in insertion order.
func (b *Budget) Components() []domain.UncertaintyComponent {
	out := make([]domain.UncertaintyComponent, len(b.components))
	copy(out, b.components)
	return out
}

// Combined returns the combined standard uncertainty u_c, the root-sum-square
// of all contributions.
func (b *Budget) Combined() float64 {
	var sumSq float64
	for _, c := range b.components {
		u := c.Contribution()
		sumSq += u * u
	}
	return math.Sqrt(sumSq)
}

// Summarize computes the combined and expanded uncertainty and the effective
// degrees of freedom via Welch-Satterthwaite:
//
//	nu_eff = u_c^4 / sum(contribution_i^4 / nu_i)
//
// Components without degrees of freedom (Type B, conventionally infinite)
// add nothing to the denominator; a zero denominator yields infinite nu_eff.
func (b *Budget) Summarize() domain.BudgetResult {
	combined := b.Combined()

	var denom float64
	for _, c := range b.components {
		if c.DegreesOfFreedom == nil {
			continue
		}
		u := c.Contribution()
		denom += math.Pow(u, 4) / float64(*c.DegreesOfFreedom)
	}

	effDOF := math.Inf(1)
	if denom > 0 {
		effDOF = math.Pow(combined, 4) / denom
	}

	return domain.BudgetResult{
		CombinedUncertaintyNs: combined,
		ExpandedUncertaintyNs: CoverageFactor * combined,
		CoverageFactor:        CoverageFactor,
		EffectiveDOF:          effDOF,
	}
}

// FromRectangular converts a rectangular (uniform) spec bound of the given
// half-width into a Type B component: u = half_width / sqrt(3).
func FromRectangular(name string, halfWidthNs float64, notes string) domain.UncertaintyComponent {
	return domain.UncertaintyComponent{
		Name:                   name,
		StandardUncertaintyNs:  halfWidthNs / math.Sqrt(3),
		Kind:                   domain.TypeB,
		Distribution:           domain.DistRectangular,
		SensitivityCoefficient: 1,
		Notes:                  notes,
	}
}

// FromTriangular converts a triangular spec bound of the given half-width
// into a Type B component: u = half_width / sqrt(6).
func FromTriangular(name string, halfWidthNs float64, notes string) domain.UncertaintyComponent {
	return domain.UncertaintyComponent{
		Name:                   name,
		StandardUncertaintyNs:  halfWidthNs / math.Sqrt(6),
		Kind:                   domain.TypeB,
		Distribution:           domain.DistTriangular,
		SensitivityCoefficient: 1,
		Notes:                  notes,
	}
}

// FromNormal converts an expanded normal uncertainty with a known coverage
// factor into a Type B component: u = value / k. A value quoted as a plain
// standard deviation uses k = 1.
func FromNormal(name string, valueNs, coverageFactor float64, notes string) domain.UncertaintyComponent {
	if coverageFactor <= 0 {
		coverageFactor = 1
	}
	return domain.UncertaintyComponent{
		Name:                   name,
		StandardUncertaintyNs:  valueNs / coverageFactor,
		Kind:                   domain.TypeB,
		Distribution:           domain.DistNormal,
		SensitivityCoefficient: 1,
		Notes:                  notes,
	}
}

// TypeAFromObservations evaluates a Type A component from repeated
// observations: u = s / sqrt(n) with n-1 degrees of freedom, where s is the
// sample standard deviation.
func TypeAFromObservations(name string, observationsNs []float64) (domain.UncertaintyComponent, error) {
	n := len(observationsNs)
	if n < 2 {
		return domain.UncertaintyComponent{}, ErrInsufficientObservations
	}

	s, err := mstats.StandardDeviationSample(mstats.Float64Data(observationsNs))
	if err != nil {
		return domain.UncertaintyComponent{}, fmt.Errorf("sample standard deviation: %w", err)
	}

	dof := n - 1
	return domain.UncertaintyComponent{
		Name:                   name,
		StandardUncertaintyNs:  s / math.Sqrt(float64(n)),
		Kind:                   domain.TypeA,
		Distribution:           domain.DistNormal,
		SensitivityCoefficient: 1,
		DegreesOfFreedom:       &dof,
	}, nil
}
