// Package stats provides the standard normal primitives used for coverage
// and risk calculations.
package stats

import "math"

// Abramowitz-Stegun 7.1.26, max error about 1.5e-7
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911
)

// Erf approximates the error function
func Erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1
		x = -x
	}
	t := 1 / (1 + erfP*x)
	y := 1 - ((((erfA5*t+erfA4)*t+erfA3)*t+erfA2)*t+erfA1)*t*math.Exp(-x*x)
	return sign * y
}

// CDF is the standard normal cumulative distribution Φ(x)
func CDF(x float64) float64 {
	return 0.5 * (1 + Erf(x/math.Sqrt2))
}

// Acklam's rational approximation coefficients
var (
	acklamA = [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00,
	}
	acklamB = [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01,
	}
	acklamC = [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00,
	}
	acklamD = [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00,
	}
)

// Region boundaries of the approximation
const (
	pLow  = 0.02425
	pHigh = 1 - pLow
)

var sqrt2Pi = math.Sqrt(2 * math.Pi)

// Quantile is the inverse of CDF. It returns NaN for p <= 0, p >= 1 and NaN p.
func Quantile(p float64) float64 {
	if !(p > 0 && p < 1) {
		return math.NaN()
	}

	var x float64
	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		x = tail(q)
	case p > pHigh:
		q := math.Sqrt(-2 * math.Log(1-p))
		x = -tail(q)
	default:
		q := p - 0.5
		r := q * q
		a, b := acklamA, acklamB
		x = (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}

	// One Halley step against the exact complementary error function.
	e := 0.5*math.Erfc(-x/math.Sqrt2) - p
	u := e * sqrt2Pi * math.Exp(x*x/2)
	return x - u/(1+x*u/2)
}

func tail(q float64) float64 {
	c, d := acklamC, acklamD
	return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
		((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
}
