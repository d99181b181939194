package engine

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mua-risk/core/budget"
	"mua-risk/core/types"
)

func ptr(v float64) *float64 { return &v }

// referenceInput is a UUT with a ±100 ppm uniform tolerance checked against a
// TMDE with a ±50 ppm (k=2) expanded uncertainty.
func referenceInput() Input {
	return Input{
		Nominal: types.Nominal{Value: 10, Unit: types.UnitVolt},
		UUT:     &types.Spec{Distribution: types.DistributionUniform, Bound: 100, Unit: types.UnitPPM},
		TMDE:    &types.Spec{Distribution: types.DistributionNormal, Bound: 50, Unit: types.UnitPPM, CoverageFactor: ptr(2)},
		Risk:    types.RiskAssumptions{TargetConsumerRisk: 0.02},
	}
}

func TestComputeReferenceScenario(t *testing.T) {
	report := Compute(referenceInput())
	r := report.Result

	components := report.Budget.Components()
	require.Len(t, components, 2)
	assert.InDelta(t, 100/math.Sqrt(3), components[0].StandardUncertaintyPPM, 1e-9)
	assert.Equal(t, 25.0, components[1].StandardUncertaintyPPM)
	assert.Empty(t, report.Exclusions)

	assert.InDelta(t, math.Sqrt(100*100/3.0+25*25), r.UC, 1e-9)
	assert.InDelta(t, 62.92, r.UC, 0.005)
	assert.True(t, math.IsInf(r.Veff, 1))
	assert.Equal(t, 2.0, r.K)
	assert.InDelta(t, 125.83, r.U, 0.005)
	assert.InDelta(t, 1.589, r.TUR, 0.001)
	assert.Equal(t, 2.0, r.TAR)
	assert.Equal(t, 100.0, r.TolerancePPM)
	assert.False(t, r.Empty)

	assert.InDelta(t, 2.326348, r.Z, 1e-5)
	assert.InDelta(t, r.Z*r.UC, r.GuardBand, 1e-9)
	assert.InDelta(t, 100-r.GuardBand, r.AcceptanceLimit, 1e-9)
	assert.True(t, r.PFA > 0 && r.PFA < 1)
	assert.True(t, r.PFR > 0 && r.PFR < 1)
	assert.Equal(t, 0.02, report.Risk)
}

func TestComputeStudentTWithInfiniteDoF(t *testing.T) {
	in := referenceInput()
	in.UseStudentT = true

	r := Compute(in).Result
	assert.Equal(t, 1.96, r.K)
	assert.InDelta(t, 1.96*r.UC, r.U, 1e-9)
}

func TestComputeSingleTypeAComponent(t *testing.T) {
	tests := []struct {
		name string
		dof  float64
		check func(t *testing.T, k float64)
	}{
		{"dof 10 uses table value", 10, func(t *testing.T, k float64) { assert.InDelta(t, 2.23, k, 1e-12) }},
		{"dof 12 interpolates", 12, func(t *testing.T, k float64) {
			assert.Less(t, k, 2.23)
			assert.Greater(t, k, 2.13)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				UseStudentT: true,
				Manual: []types.ManualEntry{{
					Name: "Repeatability", Kind: types.KindA, Unit: types.UnitPPM,
					StandardUncertainty: 4, DegreesOfFreedom: ptr(tt.dof),
				}},
			}
			r := Compute(in).Result
			assert.InDelta(t, tt.dof, r.Veff, 1e-9)
			tt.check(t, r.K)
		})
	}
}

func TestComputeEmptyBudget(t *testing.T) {
	for _, useT := range []bool{false, true} {
		r := Compute(Input{UseStudentT: useT}).Result

		assert.True(t, r.Empty)
		assert.Equal(t, 0.0, r.UC)
		assert.True(t, math.IsNaN(r.Veff), "veff is undefined")
		assert.False(t, math.IsNaN(r.K), "k must not inherit the undefined veff")
		assert.Equal(t, 0.0, r.U)
		assert.True(t, math.IsNaN(r.TUR))
		assert.True(t, math.IsNaN(r.TAR))
		assert.True(t, math.IsNaN(r.PFA))
		assert.True(t, math.IsNaN(r.PFR))
	}
}

func TestComputeUnitFamilyMismatchExcludesUUT(t *testing.T) {
	in := referenceInput()
	in.UUT = &types.Spec{Distribution: types.DistributionUniform, Bound: 1, Unit: types.UnitHertz}

	report := Compute(in)
	require.Len(t, report.Exclusions, 1)
	assert.Equal(t, budget.UUTName, report.Exclusions[0].Source)

	_, found := report.Budget.Find(budget.UUTID)
	assert.False(t, found)
	assert.Equal(t, 1, report.Budget.Len())

	// The remaining fields still compute.
	assert.Equal(t, 25.0, report.Result.UC)
	assert.True(t, math.IsNaN(report.Result.TUR))
	assert.True(t, math.IsNaN(report.Result.TAR))
	assert.True(t, math.IsNaN(report.Result.AcceptanceLimit))
	assert.False(t, math.IsNaN(report.Result.GuardBand))
}

func TestComputeManualEntriesFollowCoreComponents(t *testing.T) {
	in := referenceInput()
	in.Manual = []types.ManualEntry{
		{Name: "Resolution", Kind: types.KindB, Distribution: types.DistributionUniform, Bound: 1, Unit: types.UnitPPM},
		{Name: "Broken", Kind: types.KindB, Distribution: types.DistributionUniform, Bound: 0, Unit: types.UnitPPM},
		{ID: "rep", Name: "Repeatability", Kind: types.KindA, StandardUncertainty: 2, Unit: types.UnitPPM, DegreesOfFreedom: ptr(9)},
	}

	report := Compute(in)
	var ids []string
	for _, c := range report.Budget.Components() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{budget.UUTID, budget.TMDEID, "manual-1", "rep"}, ids)
	require.Len(t, report.Exclusions, 1)
	assert.Equal(t, "Broken", report.Exclusions[0].Source)
	assert.False(t, math.IsInf(report.Result.Veff, 1))
}

func TestComputeIsDeterministic(t *testing.T) {
	in := referenceInput()
	in.Manual = []types.ManualEntry{{Kind: types.KindA, StandardUncertainty: 3, Unit: types.UnitPPM, DegreesOfFreedom: ptr(4)}}

	first := Compute(in).Result
	second := Compute(in.Clone()).Result
	if diff := cmp.Diff(first, second, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestComputeRiskMonotonicity(t *testing.T) {
	in := referenceInput()
	prev := Compute(in).Result
	for _, risk := range []float64{0.05, 0.1, 0.2} {
		in.Risk.TargetConsumerRisk = risk
		r := Compute(in).Result
		assert.Less(t, r.GuardBand, prev.GuardBand)
		assert.Greater(t, r.AcceptanceLimit, prev.AcceptanceLimit)
		assert.Less(t, r.PFA, prev.PFA)
		prev = r
	}
}

func TestComputeClampsRiskTarget(t *testing.T) {
	in := referenceInput()
	in.Risk.TargetConsumerRisk = 0.8
	report := Compute(in)
	assert.Equal(t, 0.5, report.Risk)
	assert.False(t, math.IsNaN(report.Result.Z))
}

func TestCloneIsDeep(t *testing.T) {
	in := referenceInput()
	in.Manual = []types.ManualEntry{{Kind: types.KindA, StandardUncertainty: 1, DegreesOfFreedom: ptr(5)}}

	c := in.Clone()
	*c.TMDE.CoverageFactor = 3
	*c.Manual[0].DegreesOfFreedom = 50
	c.UUT.Bound = 1

	assert.Equal(t, 2.0, *in.TMDE.CoverageFactor)
	assert.Equal(t, 5.0, *in.Manual[0].DegreesOfFreedom)
	assert.Equal(t, 100.0, in.UUT.Bound)
}
