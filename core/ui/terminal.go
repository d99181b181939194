// Package ui - Terminal user interface
// Rich CLI output with tables and colors.
package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Green, "✓ "), msg)
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Yellow, "⚠ "), msg)
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Red, "✗ "), msg)
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println("%s%s", w.color(Blue, "ℹ "), msg)
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println("%s", w.color(Dim, "  "+msg))
}

// KeyValue prints an aligned label/value pair
func (w *Writer) KeyValue(label, value string) {
	w.Println("  %s %s", w.color(Dim, pad(label+":", 22)), value)
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := utf8.RuneCountInString(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	t.w.Println("%s", t.w.color(Bold, t.line(t.headers)))

	sep := make([]string, len(t.widths))
	for i, w := range t.widths {
		sep[i] = strings.Repeat("─", w)
	}
	t.w.Println("%s", strings.Join(sep, "─┼─"))

	for _, row := range t.rows {
		t.w.Println("%s", t.line(row))
	}
}

func (t *Table) line(cells []string) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = pad(c, t.widths[i])
	}
	return strings.TrimRight(strings.Join(padded, " │ "), " ")
}

// pad right-pads s to width runes; fmt's %-*s counts bytes
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// ResultSummary renders the headline figures of an uncertainty budget
type ResultSummary struct {
	w        *Writer
	Expanded string
	Combined string
	Coverage string
	DoF      string

	// TUR drives the adequacy indicator; NaN hides it
	TUR     float64
	TURText string
}

// NewResultSummary creates a result summary
func (w *Writer) NewResultSummary() *ResultSummary {
	return &ResultSummary{w: w, TUR: math.NaN()}
}

// Render prints the result summary
func (s *ResultSummary) Render() {
	s.w.Header("Uncertainty Budget")

	s.w.Println("%s", s.w.color(Bold, "╭─────────────────────────────────────╮"))
	s.w.Println("%s%s%s", s.w.color(Bold, "│"), s.w.color(Green, pad("  U = ± "+s.Expanded+" ppm", 37)), s.w.color(Bold, "│"))
	s.w.Println("%s%s%s", s.w.color(Bold, "│"), s.w.color(Dim, pad("  uc = "+s.Combined+" ppm", 37)), s.w.color(Bold, "│"))
	s.w.Println("%s", s.w.color(Bold, "╰─────────────────────────────────────╯"))
	s.w.Println("")

	s.w.KeyValue("Coverage factor k", s.Coverage)
	s.w.KeyValue("Effective dof", s.DoF)

	if math.IsNaN(s.TUR) {
		return
	}
	// 4:1 is the customary adequacy threshold, below 1:1 the measurement
	// cannot resolve the tolerance.
	turColor, turIcon := Green, "●"
	if s.TUR < 4 {
		turColor, turIcon = Yellow, "◐"
	}
	if s.TUR < 1 {
		turColor, turIcon = Red, "○"
	}
	s.w.Println("%s", s.w.color(turColor, fmt.Sprintf("%s TUR %s : 1", turIcon, s.TURText)))
}
