package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders the wire form of a report
type JSONFormatter struct {
	opts Options
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(opts Options) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes indented JSON
func (f *JSONFormatter) Render(w io.Writer, result *AnalysisResult) error {
	wire := NewWireReport(result.Input, result.Report, f.opts.Precision)
	meta := result.Metadata
	wire.Metadata = &meta

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wire)
}
