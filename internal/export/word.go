package export

import (
	"fmt"
	"io"
	"time"

	docx "github.com/fumiama/go-docx"

	"github.com/htaso/evaluator/internal/model"
)

// Run sizes are half-points.
const (
	wordTitleSize   = "36"
	wordHeadingSize = "28"
	wordBodySize    = "22"
)

// WriteWord renders the evaluation report as a Word document.
func WriteWord(w io.Writer, e *model.Evaluation) error {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph().Justification("center")
	title.AddText(reportTitle).Size(wordTitleSize).Bold()

	doc.AddParagraph().AddText("Prepared on " + time.Now().Format("January 2, 2006")).Size(wordBodySize)
	doc.AddParagraph()

	for _, d := range details(e) {
		p := doc.AddParagraph()
		p.AddText(d.Label + ": ").Size(wordBodySize).Bold()
		p.AddText(d.Value).Size(wordBodySize)
	}
	doc.AddParagraph()

	if rows := sectionRows(e.Summary); len(rows) > 0 {
		doc.AddParagraph().AddText("Section Scores").Size(wordHeadingSize).Bold()
		for _, row := range rows {
			line := fmt.Sprintf("%s — HTASO Avg %s | Rank %s | %s",
				row.Name, row.Average, row.Rank, row.Percentage)
			doc.AddParagraph().AddText(line).Size(wordBodySize)
		}
		doc.AddParagraph()
	}

	doc.AddParagraph().AddText("Evaluation Summary").Size(wordHeadingSize).Bold()
	if avg, ok := e.Summary.Overall.RawAverage(); ok {
		rank, _ := e.Summary.Overall.Rank()
		doc.AddParagraph().AddText(fmt.Sprintf("Overall HTASO Average: %.2f | Rank: %d", avg, rank)).Size(wordBodySize)
	} else {
		doc.AddParagraph().AddText("Overall Score: N/A").Size(wordBodySize)
	}

	for _, group := range groupRatings(e.Ratings) {
		doc.AddParagraph().AddText(group.Section).Size(wordHeadingSize).Bold()
		for _, sub := range group.Subsections {
			doc.AddParagraph().AddText(sub.Name).Size(wordBodySize).Bold()
			for _, r := range sub.Ratings {
				doc.AddParagraph().AddText(fmt.Sprintf("• %s (%s)", r.Prompt, selectionOrNotRated(r))).Size(wordBodySize)
			}
		}
	}

	doc.AddParagraph().AddText("Overall Recommendation").Size(wordHeadingSize).Bold()
	doc.AddParagraph().AddText(recommendationOrNotSelected(e.Recommendation)).Size(wordBodySize)

	doc.AddParagraph().AddText("Evaluator Comments").Size(wordHeadingSize).Bold()
	for _, b := range commentBlocks(e.Comments) {
		doc.AddParagraph().AddText(b.Label).Size(wordBodySize).Bold()
		text := b.Value
		if text == "" {
			text = "None provided."
		}
		doc.AddParagraph().AddText(text).Size(wordBodySize)
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write Word document: %w", err)
	}
	return nil
}
