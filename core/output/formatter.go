// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"io"
	"sort"
	"strings"
	"time"

	"mua-risk/core/engine"
	"mua-risk/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI summary
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatPDF is a printable PDF budget report
	FormatPDF Format = "pdf"

	// FormatPrometheus is the Prometheus text exposition format
	FormatPrometheus Format = "prometheus"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *AnalysisResult) error
}

// Options control rendering
type Options struct {
	// Precision is the number of decimal places of ppm figures
	Precision int32

	// NoColor disables ANSI colours in the cli format
	NoColor bool

	// ShowComponents lists the budget components
	ShowComponents bool

	// Verbosity of the cli format: 0 quiet, 1 normal, 2 verbose
	Verbosity int
}

// DefaultOptions returns the rendering defaults
func DefaultOptions() Options {
	return Options{Precision: 4, ShowComponents: true, Verbosity: 1}
}

// AnalysisResult is everything a formatter needs to describe one analysis
type AnalysisResult struct {
	Input    engine.Input
	Report   engine.Report
	Metadata Metadata
}

// Metadata contains execution context
type Metadata struct {
	// AnalysisID identifies the analysis
	AnalysisID string `json:"analysis_id,omitempty"`

	// Source is the analysis file or "api"
	Source string `json:"source,omitempty"`

	// Timestamp is when the result was computed
	Timestamp time.Time `json:"timestamp"`

	// Version is the tool version
	Version string `json:"version,omitempty"`
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding every built-in formatter
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(NewCLIFormatter(opts))
	r.Register(NewJSONFormatter(opts))
	r.Register(NewMarkdownFormatter(opts))
	r.Register(NewPDFFormatter(opts))
	r.Register(NewPrometheusFormatter(opts))
	return r
}

// Register adds or replaces a formatter
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format name
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[Format(strings.ToLower(string(format)))]
	if !ok {
		return nil, errors.NotSupported("output format " + string(format)).
			WithContext("available", r.Formats())
	}
	return f, nil
}

// Formats lists the registered format names in sorted order
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
