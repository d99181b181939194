package output

import (
	"io"
	"math"

	"mua-risk/core/engine"
	"mua-risk/core/types"
	"mua-risk/core/ui"
)

// CLIFormatter renders a coloured terminal summary
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a terminal formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format returns the format type
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render writes the terminal summary
func (f *CLIFormatter) Render(w io.Writer, result *AnalysisResult) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	out.SetVerbosity(f.opts.Verbosity)
	r := result.Report.Result
	places := f.opts.Precision

	if src := result.Metadata.Source; src != "" {
		out.Info("source %s", src)
	}
	debugInputs(out, result.Input)

	summary := out.NewResultSummary()
	summary.Expanded = Display(r.U, places)
	summary.Combined = Display(r.UC, places)
	summary.Coverage = Display(r.K, 3) + "  (" + coverageMode(result.Input) + ")"
	summary.DoF = Display(r.Veff, 2)
	summary.TUR = r.TUR
	summary.TURText = Display(r.TUR, 2)
	summary.Render()

	if r.Empty {
		out.Println("")
		out.Warning("budget has no components")
	}

	if f.opts.ShowComponents && !result.Report.Budget.IsEmpty() {
		out.Header("Components")
		table := out.NewTable(componentHeaders...)
		for _, c := range result.Report.Budget.Components() {
			table.AddRow(componentCells(c, places)...)
		}
		table.Render()
	}

	if n := len(result.Report.Exclusions); n > 0 {
		out.Println("")
		out.Warning("%d input(s) excluded from the budget", n)
		out.SubHeader("Excluded")
		for _, ex := range result.Report.Exclusions {
			out.Info("%s: %s", ex.Source, ex.Reason)
		}
	}

	out.Header("Ratios")
	for _, row := range ratioRows(r) {
		out.KeyValue(row.Label, row.Value)
	}

	out.Header("Guard Band & Risk")
	for _, row := range riskRows(r, result.Report.Risk, places) {
		out.KeyValue(row.Label, row.Value)
	}
	out.Println("")

	switch {
	case math.IsNaN(r.AcceptanceLimit):
	case r.AcceptanceLimit == 0:
		out.Error("guard band consumes the whole tolerance, no reading can be accepted")
	default:
		out.Success("accept readings within ± %s ppm", Display(r.AcceptanceLimit, places))
	}
	return nil
}

// debugInputs lists the declared inputs at verbosity 2
func debugInputs(out *ui.Writer, in engine.Input) {
	if in.Nominal.Unit != "" {
		out.Debug("nominal %g %s", in.Nominal.Value, in.Nominal.Unit)
	}
	for _, s := range []struct {
		name string
		spec *types.Spec
	}{{"uut", in.UUT}, {"tmde", in.TMDE}} {
		if s.spec == nil {
			continue
		}
		if s.spec.Distribution == types.DistributionNormal {
			out.Debug("%s normal ± %g %s (k=%g)", s.name, s.spec.Bound, s.spec.Unit, s.spec.K())
			continue
		}
		out.Debug("%s %s ± %g %s", s.name, s.spec.Distribution, s.spec.Bound, s.spec.Unit)
	}
	for _, m := range in.Manual {
		if m.Kind == types.KindA {
			out.Debug("manual %q type A u=%g %s dof=%g", m.Name, m.StandardUncertainty, m.Unit, m.DoF())
			continue
		}
		out.Debug("manual %q type B %s ± %g %s", m.Name, m.Distribution, m.Bound, m.Unit)
	}
}
