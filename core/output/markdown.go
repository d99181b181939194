package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter renders a markdown report suitable for a calibration record
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{opts: opts}
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render writes the markdown report
func (f *MarkdownFormatter) Render(w io.Writer, result *AnalysisResult) error {
	var b strings.Builder
	r := result.Report.Result
	places := f.opts.Precision

	b.WriteString("# Measurement Uncertainty Analysis\n\n")
	if result.Metadata.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`  \n", result.Metadata.Source)
	}
	if !result.Metadata.Timestamp.IsZero() {
		fmt.Fprintf(&b, "Computed: %s  \n", result.Metadata.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&b, "Coverage: %s\n\n", coverageMode(result.Input))

	if f.opts.ShowComponents {
		b.WriteString("## Budget\n\n")
		if result.Report.Budget.IsEmpty() {
			b.WriteString("_No components._\n\n")
		} else {
			writeMarkdownRow(&b, componentHeaders)
			seps := make([]string, len(componentHeaders))
			for i := range seps {
				seps[i] = "---"
			}
			writeMarkdownRow(&b, seps)
			for _, c := range result.Report.Budget.Components() {
				writeMarkdownRow(&b, componentCells(c, places))
			}
			b.WriteString("\n")
		}
	}

	if len(result.Report.Exclusions) > 0 {
		b.WriteString("## Excluded inputs\n\n")
		for _, ex := range result.Report.Exclusions {
			fmt.Fprintf(&b, "- **%s**: %s\n", ex.Source, ex.Reason)
		}
		b.WriteString("\n")
	}

	writeMarkdownSection(&b, "Result", budgetRows(r, places))
	writeMarkdownSection(&b, "Ratios", ratioRows(r))
	writeMarkdownSection(&b, "Guard band and risk", riskRows(r, result.Report.Risk, places))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownSection(b *strings.Builder, title string, rows []row) {
	fmt.Fprintf(b, "## %s\n\n", title)
	writeMarkdownRow(b, []string{"Quantity", "Value"})
	writeMarkdownRow(b, []string{"---", "---:"})
	for _, r := range rows {
		writeMarkdownRow(b, []string{r.Label, r.Value})
	}
	b.WriteString("\n")
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(escaped, " | "))
}
