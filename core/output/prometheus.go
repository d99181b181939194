package output

import (
	"io"
	"math"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// MetricPrefix namespaces every exported gauge
const MetricPrefix = "mua_"

// PrometheusFormatter renders a result in the Prometheus text exposition
// format, for textfile collectors and pushgateways.
type PrometheusFormatter struct {
	opts Options
}

// NewPrometheusFormatter creates a Prometheus formatter
func NewPrometheusFormatter(opts Options) *PrometheusFormatter {
	return &PrometheusFormatter{opts: opts}
}

// Format returns the format type
func (f *PrometheusFormatter) Format() Format {
	return FormatPrometheus
}

// Render writes one gauge family per figure. Undefined figures are omitted,
// infinite degrees of freedom are written as +Inf.
func (f *PrometheusFormatter) Render(w io.Writer, result *AnalysisResult) error {
	r := result.Report.Result
	var labels []*dto.LabelPair
	if result.Metadata.AnalysisID != "" {
		labels = append(labels, label("analysis", result.Metadata.AnalysisID))
	}

	var families []*dto.MetricFamily
	add := func(name, help string, v float64) {
		if math.IsNaN(v) {
			return
		}
		families = append(families, gaugeFamily(MetricPrefix+name, help, gauge(v, labels...)))
	}

	add("combined_uncertainty_ppm", "Combined standard uncertainty uc in ppm.", r.UC)
	add("effective_degrees_of_freedom", "Welch-Satterthwaite effective degrees of freedom.", r.Veff)
	add("coverage_factor", "Coverage factor k.", r.K)
	add("expanded_uncertainty_ppm", "Expanded uncertainty U in ppm.", r.U)
	add("test_uncertainty_ratio", "Test uncertainty ratio (UUT span / U).", r.TUR)
	add("test_acceptance_ratio", "Test acceptance ratio (UUT span / TMDE span).", r.TAR)
	add("guard_band_ppm", "Guard band g in ppm.", r.GuardBand)
	add("acceptance_limit_ppm", "Acceptance limit in ppm.", r.AcceptanceLimit)
	add("probability_false_accept", "Approximate probability of false accept.", r.PFA)
	add("probability_false_reject", "Approximate probability of false reject.", r.PFR)
	add("target_consumer_risk", "Target two-sided consumer risk.", result.Report.Risk)

	components := result.Report.Budget.Components()
	if len(components) > 0 {
		metrics := make([]*dto.Metric, 0, len(components))
		for _, c := range components {
			ls := append([]*dto.LabelPair{
				label("component", c.ID),
				label("kind", c.Kind.String()),
			}, labels...)
			metrics = append(metrics, gauge(c.StandardUncertaintyPPM, ls...))
		}
		families = append(families, gaugeFamily(MetricPrefix+"component_standard_uncertainty_ppm",
			"Standard uncertainty of each budget component in ppm.", metrics...))
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func gaugeFamily(name, help string, metrics ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: metrics,
	}
}

func gauge(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: &v},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: &name, Value: &value}
}
