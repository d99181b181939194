// Package coverage resolves the coverage factor k applied to the combined
// standard uncertainty.
package coverage

import (
	"math"
	"sort"
)

const (
	// FixedK is the conventional coverage factor when Student-t is not used
	FixedK = 2.0

	// NormalK is the 95% two-sided normal limit, used beyond the t-table
	NormalK = 1.96
)

// point is one (degrees of freedom, k) pair of the t-table
type point struct {
	dof float64
	k   float64
}

// tTable95 holds two-sided 95% Student-t critical values, sorted by dof
var tTable95 = [...]point{
	{1, 12.71}, {2, 4.30}, {3, 3.18}, {4, 2.78}, {5, 2.57},
	{6, 2.45}, {7, 2.36}, {8, 2.31}, {9, 2.26}, {10, 2.23},
	{15, 2.13}, {20, 2.09}, {25, 2.06}, {30, 2.04}, {40, 2.02},
	{50, 2.01}, {60, 2.00}, {100, 1.98}, {120, 1.98},
}

// MaxTableDoF is the largest degrees of freedom in the t-table
var MaxTableDoF = tTable95[len(tTable95)-1].dof

// ResolveK returns the coverage factor for veff.
//
// Without Student-t the factor is FixedK. With Student-t the 95% t-table is
// consulted at round(veff); values past the table or non-finite values use
// NormalK, values between two keys are linearly interpolated, and values
// below the first key use the first entry.
func ResolveK(veff float64, useStudentT bool) float64 {
	if !useStudentT {
		return FixedK
	}
	if math.IsNaN(veff) || math.IsInf(veff, 0) || veff > MaxTableDoF {
		return NormalK
	}
	return T95(math.Round(veff))
}

// T95 looks up the t-table at dof, interpolating between bracketing keys
func T95(dof float64) float64 {
	first := tTable95[0]
	if dof <= first.dof {
		return first.k
	}

	i := sort.Search(len(tTable95), func(i int) bool {
		return tTable95[i].dof >= dof
	})
	if i == len(tTable95) {
		return NormalK
	}

	hi := tTable95[i]
	if hi.dof == dof {
		return hi.k
	}
	lo := tTable95[i-1]
	return lo.k + (dof-lo.dof)*(hi.k-lo.k)/(hi.dof-lo.dof)
}

// Expand returns the expanded uncertainty U = k·uc
func Expand(k, uc float64) float64 {
	return k * uc
}
