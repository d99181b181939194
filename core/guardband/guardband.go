// Package guardband sizes guard bands from a consumer-risk target and
// estimates the resulting false-accept and false-reject probabilities.
//
// Risk model: both PFA and PFR assume a centered (zero-bias) normal
// measurement distribution with standard deviation uc evaluated at the
// acceptance boundary. It is a boundary approximation, not an integral over
// a prior process distribution.
package guardband

import (
	"math"

	"mua-risk/core/stats"
)

const (
	// DefaultConsumerRisk is used when no usable risk target is given
	DefaultConsumerRisk = 0.02

	// MinConsumerRisk is the floor a non-positive target clamps to
	MinConsumerRisk = 1e-6

	// MaxConsumerRisk is the largest two-sided target accepted
	MaxConsumerRisk = 0.5
)

// Result is the guard-banded decision rule
type Result struct {
	// Risk is the clamped two-sided consumer-risk target actually used
	Risk float64

	Z               float64
	GuardBand       float64
	AcceptanceLimit float64
	PFA             float64
	PFR             float64
}

// ClampRisk brings a two-sided consumer-risk target into (0, 0.5]. NaN falls
// back to DefaultConsumerRisk.
func ClampRisk(risk float64) float64 {
	switch {
	case math.IsNaN(risk):
		return DefaultConsumerRisk
	case risk <= 0:
		return MinConsumerRisk
	case risk > MaxConsumerRisk:
		return MaxConsumerRisk
	default:
		return risk
	}
}

// Z returns the one-sided quantile for a two-sided risk split equally over
// both tails
func Z(risk float64) float64 {
	return stats.Quantile(1 - ClampRisk(risk)/2)
}

// Derive computes the guard band for a ± tolerance (ppm) and combined
// standard uncertainty uc (ppm).
//
//	g        = z·uc
//	accLimit = max(0, tolerance − g)
//	pfa      = 2·(1 − Φ(accLimit/uc))
//	pfr      = max(0, 2·(Φ((tolerance − accLimit)/uc) − 0.5))
//
// The acceptance limit is NaN when the tolerance is not finite; PFA and PFR
// are NaN unless uc > 0.
func Derive(tolerance, uc, risk float64) Result {
	r := Result{Risk: ClampRisk(risk)}
	r.Z = Z(r.Risk)
	r.GuardBand = r.Z * uc

	r.AcceptanceLimit = math.NaN()
	if finite(tolerance) && finite(r.GuardBand) {
		r.AcceptanceLimit = math.Max(0, tolerance-r.GuardBand)
	}

	r.PFA, r.PFR = math.NaN(), math.NaN()
	if uc > 0 && finite(r.AcceptanceLimit) {
		r.PFA = 2 * (1 - stats.CDF(r.AcceptanceLimit/uc))
		r.PFR = math.Max(0, 2*(stats.CDF((tolerance-r.AcceptanceLimit)/uc)-0.5))
	}
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
