package results

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry of the PDF report, in millimetres.
const (
	pdfMarginX     = 20.0
	pdfTextX       = 25.0
	pdfRuleEndX    = 180.0
	pdfTopY        = 20.0
	pdfLineAdvance = 6.0
	pdfBlockGap    = 10.0
	pdfFooterY     = 285.0
	// pdfBreakY is the lowest a block's rule may sit, one line above the footer.
	pdfBreakY      = pdfFooterY - pdfLineAdvance
	pdfBlockLines  = 6
	pdfBlockHeight = pdfBlockLines * pdfLineAdvance
)

// pdfPlacement is where a record block starts: its page (1-based) and the
// baseline of its first line.
type pdfPlacement struct {
	Page int
	Y    float64
}

// layoutPDF places n record blocks. A block that would put its rule below
// pdfBreakY starts a new page instead, so no page ends up empty.
func layoutPDF(n int) []pdfPlacement {
	out := make([]pdfPlacement, 0, n)
	page, y := 1, pdfTopY+22
	for i := 0; i < n; i++ {
		if y+pdfBlockHeight > pdfBreakY {
			page++
			y = pdfTopY
		}
		out = append(out, pdfPlacement{Page: page, Y: y})
		y += pdfBlockHeight + pdfBlockGap
	}
	return out
}

// BuildPDF lays out one text block per record, separated by rules, with the
// report footer on every page.
func BuildPDF(records []Record) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(150, 150, 150)
		pdf.Text(pdfMarginX, pdfFooterY, tr(ReportFooter))
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(pdfMarginX, pdfTopY+10, tr(ReportTitle))

	for i, place := range layoutPDF(len(records)) {
		if place.Page > pdf.PageNo() {
			pdf.AddPage()
		}
		y := place.Y
		pdf.SetFont("Helvetica", "", 12)
		for _, line := range pdfLines(records[i]) {
			pdf.Text(pdfTextX, y, tr(line))
			y += pdfLineAdvance
		}
		pdf.SetDrawColor(180, 180, 180)
		pdf.Line(pdfMarginX, y, pdfRuleEndX, y)
	}
	return pdf
}

func WritePDF(w io.Writer, records []Record) error {
	pdf := BuildPDF(records)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func pdfLines(rec Record) []string {
	return []string{
		fmt.Sprintf(" Nome: %s", rec.Name),
		fmt.Sprintf(" Mês/Ano: %s/%s", rec.Month, rec.Year),
		fmt.Sprintf(" Score: %s", rec.ScoreText()),
		fmt.Sprintf(" Assumidos: %d", rec.Assumed),
		fmt.Sprintf(" Finalizados: %d", rec.Completed),
		fmt.Sprintf(" Notas: %d, %d, %d", rec.Note1, rec.Note2, rec.Note3),
	}
}
