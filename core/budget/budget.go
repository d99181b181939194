// Package budget holds the uncertainty budget and combines its components.
//
// A Budget is a value: With and Without return new budgets and never touch
// the receiver's backing array, so a budget handed to a reader stays valid
// while a writer derives the next one.
package budget

import (
	"math"

	"mua-risk/core/types"
)

// Budget is an ordered list of components. Order is display-only.
type Budget struct {
	components []types.Component
}

// New creates a budget holding a copy of components
func New(components ...types.Component) Budget {
	return Budget{components: clone(components, 0)}
}

// Len returns the number of components
func (b Budget) Len() int {
	return len(b.components)
}

// IsEmpty reports whether the budget has no component
func (b Budget) IsEmpty() bool {
	return len(b.components) == 0
}

// Components returns a copy of the components in display order
func (b Budget) Components() []types.Component {
	return clone(b.components, 0)
}

// Find returns the component with the given ID
func (b Budget) Find(id string) (types.Component, bool) {
	for _, c := range b.components {
		if c.ID == id {
			return c, true
		}
	}
	return types.Component{}, false
}

// With returns a new budget with c appended
func (b Budget) With(c types.Component) Budget {
	out := clone(b.components, 1)
	return Budget{components: append(out, c)}
}

// Without returns a new budget lacking the component with the given ID.
// Locked components are never removed; ok is false when nothing was removed.
func (b Budget) Without(id string) (Budget, bool) {
	idx := -1
	for i, c := range b.components {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || b.components[idx].Locked {
		return b, false
	}

	out := make([]types.Component, 0, len(b.components)-1)
	out = append(out, b.components[:idx]...)
	out = append(out, b.components[idx+1:]...)
	return Budget{components: out}, true
}

// Combine returns the combined standard uncertainty and the effective
// degrees of freedom of the budget
func (b Budget) Combine() (uc, veff float64) {
	return Combine(b.components)
}

// Combine aggregates independent components.
//
//	uc   = √Σuᵢ²
//	veff = uc⁴ / Σ(uᵢ⁴/vᵢ)   over finite vᵢ only
//
// veff is +Inf when every component has infinite degrees of freedom and NaN
// (undefined) when uc is 0, which includes the empty budget.
func Combine(components []types.Component) (uc, veff float64) {
	var sumSq, den float64
	for _, c := range components {
		u2 := c.StandardUncertaintyPPM * c.StandardUncertaintyPPM
		sumSq += u2
		if v := c.DegreesOfFreedom; v > 0 && !math.IsInf(v, 1) {
			den += u2 * u2 / v
		}
	}

	uc = math.Sqrt(sumSq)
	if uc == 0 {
		return 0, math.NaN()
	}
	if den == 0 {
		return uc, math.Inf(1)
	}
	return uc, sumSq * sumSq / den
}

func clone(in []types.Component, extra int) []types.Component {
	out := make([]types.Component, len(in), len(in)+extra)
	copy(out, in)
	return out
}
