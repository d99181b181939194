package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mua-risk/core/budget"
	"mua-risk/core/types"
	"mua-risk/internal/errors"
)

func TestAnalysisRecomputesOnChange(t *testing.T) {
	a := NewAnalysis(referenceInput())
	require.NotEmpty(t, a.ID())

	before := a.Result()
	assert.Equal(t, 2.0, before.K)

	after := a.SetUseStudentT(true).Result
	assert.Equal(t, 1.96, after.K)
	assert.Equal(t, 1.96, a.Result().K)
}

func TestAnalysisMemoizesUnchangedInput(t *testing.T) {
	a := NewAnalysis(referenceInput())
	first := a.current.Load()

	a.SetUseStudentT(false)
	a.SetTargetConsumerRisk(0.02)
	a.SetNominal(types.Nominal{Value: 10, Unit: types.UnitVolt})

	assert.Same(t, first, a.current.Load(), "no-op updates must keep the memoized snapshot")
}

func TestAnalysisAddAndRemoveManual(t *testing.T) {
	a := NewAnalysis(referenceInput())
	ucBefore := a.Result().UC

	id, report, err := a.AddManual(types.ManualEntry{Name: "Drift", Kind: types.KindA, StandardUncertainty: 10, Unit: types.UnitPPM, DegreesOfFreedom: ptr(8)})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 3, report.Budget.Len())
	assert.Greater(t, report.Result.UC, ucBefore)

	c, ok := report.Budget.Find(id)
	require.True(t, ok)
	assert.Equal(t, "Drift", c.Name)

	report, ok = a.RemoveManual(id)
	require.True(t, ok)
	assert.Equal(t, 2, report.Budget.Len())
	assert.InDelta(t, ucBefore, report.Result.UC, 1e-12)
}

func TestAnalysisRefusesLockedRemoval(t *testing.T) {
	a := NewAnalysis(referenceInput())

	for _, id := range []string{budget.UUTID, budget.TMDEID, "missing"} {
		report, ok := a.RemoveManual(id)
		assert.False(t, ok, "removing %s", id)
		assert.Equal(t, 2, report.Budget.Len())
	}
}

func TestAnalysisPinsPositionalIDs(t *testing.T) {
	in := referenceInput()
	in.Manual = []types.ManualEntry{
		{Name: "first", Kind: types.KindA, StandardUncertainty: 1, Unit: types.UnitPPM},
		{Name: "second", Kind: types.KindA, StandardUncertainty: 2, Unit: types.UnitPPM},
	}
	a := NewAnalysis(in)

	_, ok := a.RemoveManual("manual-1")
	require.True(t, ok)

	// The second entry keeps its ID after the first is removed.
	c, ok := a.Report().Budget.Find("manual-2")
	require.True(t, ok)
	assert.Equal(t, "second", c.Name)
}

func TestAnalysisInputIsACopy(t *testing.T) {
	a := NewAnalysis(referenceInput())

	in := a.Input()
	in.UUT.Bound = 1
	*in.TMDE.CoverageFactor = 10

	assert.Equal(t, 100.0, a.Input().UUT.Bound)
	assert.Equal(t, 2.0, *a.Input().TMDE.CoverageFactor)
}

func TestAnalysisSpecChanges(t *testing.T) {
	a := NewAnalysis(referenceInput())

	report := a.SetUUT(nil)
	assert.Equal(t, 1, report.Budget.Len())

	report = a.SetUUT(&types.Spec{Distribution: types.DistributionTriangular, Bound: 60, Unit: types.UnitPPM})
	assert.Equal(t, 2, report.Budget.Len())
	assert.InDelta(t, 120.0/report.Result.U, report.Result.TUR, 1e-12)

	report = a.SetTMDE(&types.Spec{Distribution: types.DistributionNormal, Bound: 50, Unit: types.UnitPPM, CoverageFactor: ptr(-1)})
	assert.Equal(t, 1, report.Budget.Len())
	assert.Len(t, a.Exclusions(), 1)
}

func TestAnalysisConcurrentWriters(t *testing.T) {
	a := NewAnalysis(referenceInput())

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := a.AddManual(types.ManualEntry{Kind: types.KindB, Distribution: types.DistributionUniform, Bound: 1, Unit: types.UnitPPM})
			assert.NoError(t, err)
			_ = a.Result()
		}()
	}
	wg.Wait()

	assert.Len(t, a.Input().Manual, writers)
	assert.Equal(t, writers+2, len(a.Components()))
}

func componentIDs(r Report) []string {
	var ids []string
	for _, c := range r.Budget.Components() {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestAnalysisPositionalIDsSkipExplicitOnes(t *testing.T) {
	in := referenceInput()
	in.Manual = []types.ManualEntry{
		{ID: "manual-2", Kind: types.KindB, Distribution: types.DistributionUniform, Bound: 10, Unit: types.UnitPPM},
		{Kind: types.KindB, Distribution: types.DistributionUniform, Bound: 20, Unit: types.UnitPPM},
		{ID: "manual-2", Kind: types.KindB, Distribution: types.DistributionUniform, Bound: 30, Unit: types.UnitPPM},
		{ID: budget.UUTID, Kind: types.KindB, Distribution: types.DistributionUniform, Bound: 40, Unit: types.UnitPPM},
	}
	a := NewAnalysis(in)

	assert.Equal(t, []string{budget.UUTID, budget.TMDEID, "manual-2", "manual-3", "manual-4", "manual-5"}, componentIDs(a.Report()))

	report, ok := a.RemoveManual("manual-3")
	require.True(t, ok)
	assert.Equal(t, []string{budget.UUTID, budget.TMDEID, "manual-2", "manual-4", "manual-5"}, componentIDs(report))

	c, found := report.Budget.Find("manual-2")
	require.True(t, found)
	assert.InDelta(t, 10/math.Sqrt(3), c.StandardUncertaintyPPM, 1e-9)
}

func TestAnalysisAddManualRejectsTakenIDs(t *testing.T) {
	a := NewAnalysis(referenceInput())
	_, _, err := a.AddManual(types.ManualEntry{ID: "drift", Kind: types.KindA, StandardUncertainty: 1, Unit: types.UnitPPM})
	require.NoError(t, err)
	before := a.current.Load()

	for _, id := range []string{budget.UUTID, budget.TMDEID, "drift"} {
		t.Run(id, func(t *testing.T) {
			got, report, err := a.AddManual(types.ManualEntry{ID: id, Kind: types.KindA, StandardUncertainty: 5, Unit: types.UnitPPM})
			assert.True(t, errors.IsType(err, errors.TypeConflict))
			assert.Empty(t, got)
			assert.Equal(t, 3, report.Budget.Len())
			assert.Same(t, before, a.current.Load())
		})
	}
}

func TestAnalysisModifyPublishesOneSwap(t *testing.T) {
	a := NewAnalysis(referenceInput())

	stop := make(chan struct{})
	var torn int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			in := a.Input()
			if in.UseStudentT != (in.Risk.TargetConsumerRisk == 0.05) {
				torn++
			}
		}
	}()

	var writers sync.WaitGroup
	for i := 0; i < 8; i++ {
		writers.Add(1)
		go func() {
			defer writers.Done()
			_, _, err := a.AddManual(types.ManualEntry{Kind: types.KindA, StandardUncertainty: 1, Unit: types.UnitPPM})
			assert.NoError(t, err)
		}()
	}
	report := a.Modify(func(in *Input) {
		in.UseStudentT = true
		in.Risk.TargetConsumerRisk = 0.05
	})
	writers.Wait()
	close(stop)
	wg.Wait()

	assert.Zero(t, torn)
	assert.NotZero(t, report.Result.K)
	assert.Len(t, a.Input().Manual, 8)
	assert.True(t, a.Input().UseStudentT)
	assert.Equal(t, 0.05, a.Report().Risk)
}
