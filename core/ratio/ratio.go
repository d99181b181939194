// Package ratio computes the test adequacy ratios TUR and TAR.
package ratio

import (
	"math"

	"mua-risk/core/distribution"
	"mua-risk/core/types"
)

// TolSpan returns the full ± interval of a spec in ppm (2 × bound). The span
// is NaN when the spec is nil or its bound cannot be expressed in ppm.
func TolSpan(spec *types.Spec, nominal types.Nominal) float64 {
	if spec == nil {
		return math.NaN()
	}
	return 2 * distribution.BoundPPM(*spec, nominal)
}

// TUR is the test uncertainty ratio uutSpan / U, defined for U > 0 and a
// finite span
func TUR(uutSpan, expanded float64) float64 {
	if !finite(uutSpan) || !finite(expanded) || expanded <= 0 {
		return math.NaN()
	}
	return uutSpan / expanded
}

// TAR is the test acceptance ratio uutSpan / tmdeSpan, defined for finite
// spans and tmdeSpan > 0
func TAR(uutSpan, tmdeSpan float64) float64 {
	if !finite(uutSpan) || !finite(tmdeSpan) || tmdeSpan <= 0 {
		return math.NaN()
	}
	return uutSpan / tmdeSpan
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
