package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/htaso/evaluator/internal/model"
)

// Header palette.
var (
	detailHeaderRGB  = [3]int{29, 53, 87}   // #1D3557
	sectionHeaderRGB = [3]int{42, 157, 143} // #2A9D8F
)

// WritePDF renders the evaluation report as a PDF document.
func WritePDF(w io.Writer, e *model.Evaluation) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Title.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, reportTitle, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Prepared on "+time.Now().Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Details table.
	pdf.SetFont("Helvetica", "B", 10)
	for _, d := range details(e) {
		pdf.SetFillColor(detailHeaderRGB[0], detailHeaderRGB[1], detailHeaderRGB[2])
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 7, d.Label, "1", 0, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, d.Value, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Section scores table.
	if rows := sectionRows(e.Summary); len(rows) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Section Scores", "", 1, "L", false, 0, "")

		pdf.SetFillColor(sectionHeaderRGB[0], sectionHeaderRGB[1], sectionHeaderRGB[2])
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 7, "Section", "1", 0, "L", true, 0, "")
		pdf.CellFormat(35, 7, "HTASO Avg", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 7, "Rank", "1", 0, "L", true, 0, "")
		pdf.CellFormat(0, 7, "Percentage", "1", 1, "L", true, 0, "")

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range rows {
			pdf.CellFormat(80, 7, row.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 7, row.Average, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, row.Rank, "1", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, row.Percentage, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(6)
	}

	// Overall line.
	pdf.SetFont("Helvetica", "", 10)
	if avg, ok := e.Summary.Overall.RawAverage(); ok {
		rank, _ := e.Summary.Overall.Rank()
		pdf.CellFormat(0, 6, fmt.Sprintf("Overall HTASO Average: %.2f | Rank: %d", avg, rank), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Overall Score: N/A", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Ratings grouped by section and subsection.
	for _, group := range groupRatings(e.Ratings) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, group.Section, "", 1, "L", false, 0, "")
		for _, sub := range group.Subsections {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, sub.Name, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			for _, r := range sub.Ratings {
				line := fmt.Sprintf("- %s (%s)", r.Prompt, selectionOrNotRated(r))
				pdf.MultiCell(0, 5, line, "", "L", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(2)
	}

	// Recommendation.
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Overall Recommendation", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, recommendationOrNotSelected(e.Recommendation), "", "L", false)
	pdf.Ln(4)

	// Comments.
	blocks := commentBlocks(e.Comments)
	hasComments := false
	for _, b := range blocks {
		if b.Value != "" {
			hasComments = true
			break
		}
	}
	if hasComments {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Evaluator Comments", "", 1, "L", false, 0, "")
		for _, b := range blocks {
			if b.Value == "" {
				continue
			}
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, b.Label, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, b.Value, "", "L", false)
			pdf.Ln(2)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write PDF: %w", err)
	}
	return nil
}
