package output

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mua-risk/core/engine"
	"mua-risk/core/types"
	"mua-risk/internal/errors"
)

func ptr(v float64) *float64 { return &v }

func referenceResult() *AnalysisResult {
	in := engine.Input{
		Nominal: types.Nominal{Value: 10, Unit: types.UnitVolt},
		UUT:     &types.Spec{Distribution: types.DistributionUniform, Bound: 100, Unit: types.UnitPPM},
		TMDE:    &types.Spec{Distribution: types.DistributionNormal, Bound: 50, Unit: types.UnitPPM, CoverageFactor: ptr(2)},
		Risk:    types.RiskAssumptions{TargetConsumerRisk: 0.02},
	}
	return &AnalysisResult{
		Input:  in,
		Report: engine.Compute(in),
		Metadata: Metadata{
			AnalysisID: "a1",
			Source:     "bench.hcl",
			Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Version:    "test",
		},
	}
}

func emptyResult() *AnalysisResult {
	return &AnalysisResult{Report: engine.Compute(engine.Input{})}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   string
	}{
		{62.915286, 4, "62.9153"},
		{2, 3, "2.000"},
		{0.00125, 4, "0.0013"},
		{math.Inf(1), 2, "inf"},
		{math.Inf(-1), 2, "-inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.v, tt.places))
	}

	assert.Equal(t, "—", Display(math.NaN(), 2))
	assert.Equal(t, "∞", Display(math.Inf(1), 2))
	assert.Equal(t, "2.50%", Percent(0.025, 2))
	assert.Equal(t, "—", Percent(math.NaN(), 2))
}

func TestWireEncodesUndefinedAsNull(t *testing.T) {
	res := emptyResult()
	wire := NewWireReport(res.Input, res.Report, 4)

	data, err := json.Marshal(wire)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	result := decoded["result"].(map[string]interface{})

	assert.Nil(t, result["veff"])
	assert.Nil(t, result["tur"])
	assert.Nil(t, result["pfa"])
	assert.Equal(t, "0.0000", result["uc"])
	assert.Equal(t, "2.000", result["k"])
	assert.Equal(t, true, result["empty"])
	assert.Equal(t, []interface{}{}, decoded["components"])
	assert.Equal(t, []interface{}{}, decoded["exclusions"])
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(DefaultOptions()).Render(&buf, referenceResult()))

	var wire WireReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &wire))

	require.NotNil(t, wire.Metadata)
	assert.Equal(t, "bench.hcl", wire.Metadata.Source)
	require.Len(t, wire.Components, 2)
	assert.Equal(t, "uut", wire.Components[0].ID)
	assert.Equal(t, "inf", *wire.Components[0].DegreesOfFreedom)
	assert.Equal(t, "inf", *wire.Result.Veff)
	assert.Equal(t, "62.9153", *wire.Result.UC)
	assert.Equal(t, "0.020000", *wire.Risk)
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(DefaultOptions()).Render(&buf, referenceResult()))
	md := buf.String()

	assert.True(t, strings.HasPrefix(md, "# Measurement Uncertainty Analysis\n"))
	assert.Contains(t, md, "| Component | Kind | u (ppm) | dof |")
	assert.Contains(t, md, "| UUT | Type B (core) | 57.7350 | ∞ |")
	assert.Contains(t, md, "| Expanded uncertainty (U) | ± 125.8306 ppm |")
	assert.Contains(t, md, "| Test acceptance ratio (TAR) | 2.00 : 1 |")
	assert.NotContains(t, md, "Excluded inputs")
}

func TestMarkdownListsExclusions(t *testing.T) {
	res := referenceResult()
	res.Input.UUT.Unit = types.UnitHertz
	res.Report = engine.Compute(res.Input)

	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(DefaultOptions()).Render(&buf, res))
	assert.Contains(t, buf.String(), "## Excluded inputs")
	assert.Contains(t, buf.String(), "- **UUT**:")
	assert.Contains(t, buf.String(), "| Test uncertainty ratio (TUR) | — : 1 |")
}

func TestCLIFormatter(t *testing.T) {
	opts := DefaultOptions()
	opts.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(opts).Render(&buf, referenceResult()))
	out := buf.String()

	assert.Contains(t, out, "U = ± 125.8306 ppm")
	assert.Contains(t, out, "◐ TUR 1.59 : 1")
	assert.Contains(t, out, "Standard Instrument (TMDE)")
	assert.NotContains(t, out, "\033[")

	assert.Contains(t, out, "source bench.hcl")
	assert.Contains(t, out, "guard band consumes the whole tolerance")
	assert.NotContains(t, out, "uut uniform")

	buf.Reset()
	require.NoError(t, NewCLIFormatter(opts).Render(&buf, emptyResult()))
	assert.Contains(t, buf.String(), "budget has no components")
}

func TestCLIFormatterVerbosity(t *testing.T) {
	res := referenceResult()
	res.Input.UUT = &types.Spec{Distribution: types.DistributionTriangular, Bound: 1000, Unit: types.UnitPPM}
	res.Input.Manual = []types.ManualEntry{{Name: "Drift", Kind: types.KindB, Distribution: types.DistributionUniform, Bound: -1, Unit: types.UnitPPM}}
	res.Report = engine.Compute(res.Input)

	render := func(verbosity int) string {
		opts := DefaultOptions()
		opts.NoColor = true
		opts.Verbosity = verbosity
		var buf bytes.Buffer
		require.NoError(t, NewCLIFormatter(opts).Render(&buf, res))
		return buf.String()
	}

	quiet := render(0)
	assert.Contains(t, quiet, "⚠ 1 input(s) excluded from the budget")
	assert.NotContains(t, quiet, "ℹ")
	assert.Contains(t, quiet, "✓ accept readings within ± ")

	normal := render(1)
	assert.Contains(t, normal, "ℹ source bench.hcl")
	assert.Contains(t, normal, "ℹ Drift: ")
	assert.NotContains(t, normal, "uut uniform")

	verbose := render(2)
	assert.Contains(t, verbose, "uut triangular ± 1000 ppm")
	assert.Contains(t, verbose, "tmde normal ± 50 ppm (k=2)")
	assert.Contains(t, verbose, `manual "Drift" type B uniform ± -1 ppm`)
}

func TestPDFFormatter(t *testing.T) {
	for name, res := range map[string]*AnalysisResult{"reference": referenceResult(), "empty": emptyResult()} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewPDFFormatter(DefaultOptions()).Render(&buf, res))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
			assert.True(t, bytes.Contains(buf.Bytes(), []byte("%%EOF")))
		})
	}
}

func TestPrometheusFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrometheusFormatter(DefaultOptions()).Render(&buf, referenceResult()))

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)

	uc := families["mua_combined_uncertainty_ppm"]
	require.NotNil(t, uc)
	assert.InDelta(t, 62.9153, uc.GetMetric()[0].GetGauge().GetValue(), 1e-4)
	assert.Equal(t, "a1", uc.GetMetric()[0].GetLabel()[0].GetValue())

	veff := families["mua_effective_degrees_of_freedom"]
	require.NotNil(t, veff)
	assert.True(t, math.IsInf(veff.GetMetric()[0].GetGauge().GetValue(), 1))

	components := families["mua_component_standard_uncertainty_ppm"]
	require.NotNil(t, components)
	assert.Len(t, components.GetMetric(), 2)
}

func TestPrometheusOmitsUndefined(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrometheusFormatter(DefaultOptions()).Render(&buf, emptyResult()))

	out := buf.String()
	assert.Contains(t, out, "mua_coverage_factor 2")
	assert.NotContains(t, out, "mua_test_uncertainty_ratio")
	assert.NotContains(t, out, "mua_effective_degrees_of_freedom")
	assert.NotContains(t, out, "mua_component_standard_uncertainty_ppm")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	assert.Equal(t, []string{"cli", "json", "markdown", "pdf", "prometheus"}, r.Formats())

	f, err := r.Get("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f.Format())

	_, err = r.Get("html")
	assert.True(t, errors.IsType(err, errors.TypeNotSupported))
}
