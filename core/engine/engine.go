// Package engine runs the uncertainty-budget pipeline.
// CLI and HTTP surfaces are thin wrappers around this package.
//
// Pipeline:
//
//	specs + manual entries → components (units, distribution)
//	components → uc, veff (budget)
//	veff → k, U (coverage)
//	U, spans → TUR, TAR (ratio)
//	uc, tolerance, risk → g, limits, PFA, PFR (guardband)
package engine

import (
	"fmt"
	"math"

	"mua-risk/core/budget"
	"mua-risk/core/coverage"
	"mua-risk/core/distribution"
	"mua-risk/core/guardband"
	"mua-risk/core/ratio"
	"mua-risk/core/types"
)

// Input is everything a budget result depends on
type Input struct {
	// Nominal relates absolute-unit bounds to ppm
	Nominal types.Nominal `json:"nominal"`

	// UUT is the unit-under-test specification
	UUT *types.Spec `json:"uut,omitempty"`

	// TMDE is the reference standard specification
	TMDE *types.Spec `json:"tmde,omitempty"`

	// Manual lists manually entered contributors in display order
	Manual []types.ManualEntry `json:"manual,omitempty"`

	// UseStudentT selects the t-table coverage factor instead of k=2
	UseStudentT bool `json:"use_student_t"`

	// Risk drives guard banding
	Risk types.RiskAssumptions `json:"risk"`
}

// Clone returns a deep copy of the input
func (in Input) Clone() Input {
	out := in
	out.UUT = cloneSpec(in.UUT)
	out.TMDE = cloneSpec(in.TMDE)
	if in.Manual != nil {
		out.Manual = make([]types.ManualEntry, len(in.Manual))
		for i, m := range in.Manual {
			out.Manual[i] = cloneEntry(m)
		}
	}
	return out
}

// Specs groups the UUT and TMDE specifications needed for ratios and limits
type Specs struct {
	UUT  *types.Spec
	TMDE *types.Spec
}

// Report is a computed result together with the budget it came from
type Report struct {
	Budget     budget.Budget
	Exclusions []budget.Exclusion
	Result     types.Result

	// Risk is the clamped consumer-risk target that was applied
	Risk float64
}

// ManualIDs returns a unique ID for every manual entry, in order.
//
// An explicit ID is kept unless it names a core component or an earlier
// entry already holds it. Every other entry gets the first free positional
// ID, starting at manual-N for the N-th entry.
func ManualIDs(manual []types.ManualEntry) []string {
	taken := map[string]bool{budget.UUTID: true, budget.TMDEID: true}
	ids := make([]string, len(manual))
	for i, entry := range manual {
		if entry.ID != "" && !taken[entry.ID] {
			ids[i] = entry.ID
			taken[entry.ID] = true
		}
	}
	for i := range manual {
		if ids[i] != "" {
			continue
		}
		for n := i + 1; ; n++ {
			id := fmt.Sprintf("manual-%d", n)
			if !taken[id] {
				ids[i] = id
				taken[id] = true
				break
			}
		}
	}
	return ids
}

// BuildBudget derives the budget from the input. The UUT and TMDE components
// come first, followed by manual entries in order. Inputs that yield no
// component are reported as exclusions.
func BuildBudget(in Input) (budget.Budget, []budget.Exclusion) {
	core, exclusions := budget.Core(in.UUT, in.TMDE, in.Nominal)
	b := budget.New(core...)

	ids := ManualIDs(in.Manual)
	for i, entry := range in.Manual {
		c, ex := budget.Manual(ids[i], entry, in.Nominal)
		if ex != nil {
			exclusions = append(exclusions, *ex)
			continue
		}
		b = b.With(c)
	}
	return b, exclusions
}

// ComputeBudgetResult derives the result for a budget. It is a pure function
// of its arguments.
func ComputeBudgetResult(b budget.Budget, risk types.RiskAssumptions, useStudentT bool, nominal types.Nominal, specs Specs) types.Result {
	var r types.Result

	r.UC, r.Veff = b.Combine()
	r.Empty = b.IsEmpty()

	// Undefined veff (empty budget) resolves k as for infinite dof.
	kDoF := r.Veff
	if math.IsNaN(kDoF) {
		kDoF = math.Inf(1)
	}
	r.K = coverage.ResolveK(kDoF, useStudentT)
	r.U = coverage.Expand(r.K, r.UC)

	uutSpan := ratio.TolSpan(specs.UUT, nominal)
	r.TUR = ratio.TUR(uutSpan, r.U)
	r.TAR = ratio.TAR(uutSpan, ratio.TolSpan(specs.TMDE, nominal))

	r.TolerancePPM = math.NaN()
	if specs.UUT != nil {
		r.TolerancePPM = distribution.BoundPPM(*specs.UUT, nominal)
	}

	gb := guardband.Derive(r.TolerancePPM, r.UC, risk.TargetConsumerRisk)
	r.Z = gb.Z
	r.GuardBand = gb.GuardBand
	r.AcceptanceLimit = gb.AcceptanceLimit
	r.PFA = gb.PFA
	r.PFR = gb.PFR

	return r
}

// Compute runs the whole pipeline for an input
func Compute(in Input) Report {
	b, exclusions := BuildBudget(in)
	return Report{
		Budget:     b,
		Exclusions: exclusions,
		Result:     ComputeBudgetResult(b, in.Risk, in.UseStudentT, in.Nominal, Specs{UUT: in.UUT, TMDE: in.TMDE}),
		Risk:       guardband.ClampRisk(in.Risk.TargetConsumerRisk),
	}
}

func cloneSpec(s *types.Spec) *types.Spec {
	if s == nil {
		return nil
	}
	out := *s
	out.CoverageFactor = cloneFloat(s.CoverageFactor)
	return &out
}

func cloneEntry(m types.ManualEntry) types.ManualEntry {
	m.CoverageFactor = cloneFloat(m.CoverageFactor)
	m.DegreesOfFreedom = cloneFloat(m.DegreesOfFreedom)
	return m
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
