package distribution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mua-risk/core/types"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name  string
		dist  types.Distribution
		bound float64
		k     float64
		want  float64
	}{
		{"uniform", types.DistributionUniform, 100, 0, 100 / math.Sqrt(3)},
		{"triangular", types.DistributionTriangular, 60, 0, 60 / math.Sqrt(6)},
		{"normal k=2", types.DistributionNormal, 50, 2, 25},
		{"normal k=3", types.DistributionNormal, 30, 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Reduce(tt.dist, tt.bound, tt.k)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestReduceRejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name  string
		dist  types.Distribution
		bound float64
		k     float64
	}{
		{"zero bound", types.DistributionUniform, 0, 0},
		{"negative bound", types.DistributionTriangular, -5, 0},
		{"NaN bound", types.DistributionUniform, math.NaN(), 0},
		{"infinite bound", types.DistributionUniform, math.Inf(1), 0},
		{"zero k", types.DistributionNormal, 10, 0},
		{"negative k", types.DistributionNormal, 10, -2},
		{"NaN k", types.DistributionNormal, 10, math.NaN()},
		{"infinite k", types.DistributionNormal, 10, math.Inf(1)},
		{"unknown distribution", types.Distribution("lognormal"), 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Reduce(tt.dist, tt.bound, tt.k)
			assert.False(t, ok)
		})
	}
}

func TestReduceSpecNormalRoundTrip(t *testing.T) {
	k := 2.0
	spec := types.Spec{Distribution: types.DistributionNormal, Bound: 50, Unit: types.UnitPPM, CoverageFactor: &k}

	u, ok := ReduceSpec(spec, types.Nominal{})
	require.True(t, ok)
	assert.Equal(t, 25.0, u)
}

func TestReduceSpecDefaultsCoverageFactor(t *testing.T) {
	spec := types.Spec{Distribution: types.DistributionNormal, Bound: 0.005, Unit: types.UnitPercent}

	u, ok := ReduceSpec(spec, types.Nominal{})
	require.True(t, ok)
	assert.InDelta(t, 25.0, u, 1e-9)
}

func TestReduceSpecUnitMismatchExcluded(t *testing.T) {
	spec := types.Spec{Distribution: types.DistributionUniform, Bound: 1, Unit: types.UnitHertz}

	_, ok := ReduceSpec(spec, types.Nominal{Value: 10, Unit: types.UnitVolt})
	assert.False(t, ok)
	assert.True(t, math.IsNaN(BoundPPM(spec, types.Nominal{Value: 10, Unit: types.UnitVolt})))
}
