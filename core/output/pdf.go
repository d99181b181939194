package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth    = 210.0 // A4 portrait, mm
	pdfPageHeight   = 297.0
	pdfMargin       = 15.0
	pdfContentWidth = pdfPageWidth - 2*pdfMargin
)

// PDFFormatter renders a printable uncertainty budget report
type PDFFormatter struct {
	opts Options
}

// NewPDFFormatter creates a PDF formatter
func NewPDFFormatter(opts Options) *PDFFormatter {
	return &PDFFormatter{opts: opts}
}

// Format returns the format type
func (f *PDFFormatter) Format() Format {
	return FormatPDF
}

// pdfStyler holds reusable styles and the flowing Y position
type pdfStyler struct {
	pdf        *gofpdf.Fpdf
	tr         func(string) string
	styles     map[string]func()
	lineHeight float64
	currentY   float64
	bottomY    float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:        pdf,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		styles:     make(map[string]func()),
		lineHeight: 6,
		currentY:   pdfMargin,
		bottomY:    pdfPageHeight - pdfMargin,
	}
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 12)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["muted"] = func() {
		s.pdf.SetFont("Arial", "I", 9)
		s.pdf.SetTextColor(90, 90, 90)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	return s
}

func (s *pdfStyler) applyStyle(name string) {
	if fn, ok := s.styles[name]; ok {
		fn()
		return
	}
	s.styles["normal"]()
}

func (s *pdfStyler) checkAddPage(needed float64) {
	if s.currentY+needed > s.bottomY {
		s.pdf.AddPage()
		s.currentY = pdfMargin
	}
}

func (s *pdfStyler) text(v string) string {
	// the core fonts are cp1252, which has no infinity sign
	return s.tr(strings.NewReplacer("∞", "inf", "≥", ">=").Replace(v))
}

func (s *pdfStyler) writeParagraph(text, style, align string) {
	s.applyStyle(style)
	s.checkAddPage(s.lineHeight)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.text(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// table draws a bordered table; widths are fractions of the content width
func (s *pdfStyler) table(headers []string, widths []float64, rows [][]string) {
	abs := make([]float64, len(widths))
	for i, w := range widths {
		abs[i] = w * pdfContentWidth
	}

	s.checkAddPage(s.lineHeight * 2)
	s.applyStyle("tableHeader")
	x := pdfMargin
	for i, h := range headers {
		s.pdf.SetXY(x, s.currentY)
		s.pdf.CellFormat(abs[i], s.lineHeight, s.text(h), "1", 0, "C", true, 0, "")
		x += abs[i]
	}
	s.currentY += s.lineHeight

	s.applyStyle("tableCell")
	for _, row := range rows {
		s.checkAddPage(s.lineHeight)
		x = pdfMargin
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(abs[i], s.lineHeight, s.text(cell), "1", 0, align, false, 0, "")
			x += abs[i]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) section(title string, rows []row) {
	s.writeParagraph(title, "h2", "L")
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Label, r.Value}
	}
	s.table([]string{"Quantity", "Value"}, []float64{0.6, 0.4}, cells)
	s.addSpacer(5)
}

// Render writes the PDF document
func (f *PDFFormatter) Render(w io.Writer, result *AnalysisResult) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle("Measurement Uncertainty Analysis", true)
	if result.Metadata.Version != "" {
		pdf.SetCreator("mua-risk "+result.Metadata.Version, true)
	}
	if !result.Metadata.Timestamp.IsZero() {
		pdf.SetCreationDate(result.Metadata.Timestamp)
	}
	pdf.AddPage()

	s := newPDFStyler(pdf)
	r := result.Report.Result
	places := f.opts.Precision

	s.writeParagraph("Measurement Uncertainty Analysis", "h1", "C")
	if result.Metadata.Source != "" {
		s.writeParagraph("Source: "+result.Metadata.Source, "muted", "C")
	}
	s.writeParagraph("Coverage: "+coverageMode(result.Input), "muted", "C")
	s.addSpacer(4)

	s.writeParagraph(fmt.Sprintf("U = ± %s ppm (k = %s)", Display(r.U, places), Display(r.K, 3)), "h2", "C")
	s.addSpacer(4)

	if f.opts.ShowComponents {
		s.writeParagraph("Uncertainty Budget", "h2", "L")
		if result.Report.Budget.IsEmpty() {
			s.writeParagraph("No components.", "normal", "L")
		} else {
			var rows [][]string
			for _, c := range result.Report.Budget.Components() {
				rows = append(rows, componentCells(c, places))
			}
			s.table(componentHeaders, []float64{0.4, 0.2, 0.2, 0.2}, rows)
		}
		s.addSpacer(5)
	}

	if len(result.Report.Exclusions) > 0 {
		s.writeParagraph("Excluded inputs", "h2", "L")
		for _, ex := range result.Report.Exclusions {
			s.writeParagraph(ex.Source+": "+ex.Reason, "normal", "L")
		}
		s.addSpacer(5)
	}

	s.section("Result", budgetRows(r, places))
	s.section("Ratios", ratioRows(r))
	s.section("Guard Band & Risk", riskRows(r, result.Report.Risk, places))
	s.writeParagraph("PFA and PFR assume a measured value centered at the acceptance limit; they are approximations.", "muted", "L")

	return pdf.Output(w)
}
