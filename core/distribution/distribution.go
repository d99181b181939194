// Package distribution reduces a stated bound under a declared probability
// distribution to a standard uncertainty.
package distribution

import (
	"math"

	"mua-risk/core/types"
	"mua-risk/core/units"
)

var (
	sqrt3 = math.Sqrt(3)
	sqrt6 = math.Sqrt(6)
)

// Reduce converts a bound into a standard uncertainty.
//
//	uniform:    u = bound / √3
//	triangular: u = bound / √6
//	normal:     u = bound / k
//
// ok is false when the bound is non-finite or non-positive, when k is
// non-finite or non-positive for a normal bound, or when the distribution is
// unknown. A failed reduction contributes no component at all.
func Reduce(dist types.Distribution, bound, k float64) (u float64, ok bool) {
	if !positiveFinite(bound) {
		return 0, false
	}

	switch dist {
	case types.DistributionUniform:
		return bound / sqrt3, true
	case types.DistributionTriangular:
		return bound / sqrt6, true
	case types.DistributionNormal:
		if !positiveFinite(k) {
			return 0, false
		}
		return bound / k, true
	default:
		return 0, false
	}
}

// BoundPPM returns the spec bound expressed in ppm of the nominal (NaN when
// the unit cannot be converted)
func BoundPPM(spec types.Spec, nominal types.Nominal) float64 {
	return units.ConvertToPPM(spec.Bound, spec.Unit, nominal)
}

// ReduceSpec converts a spec into a standard uncertainty in ppm
func ReduceSpec(spec types.Spec, nominal types.Nominal) (float64, bool) {
	return Reduce(spec.Distribution, BoundPPM(spec, nominal), spec.K())
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
