// Package export renders stored or in-flight evaluations as PDF, Word,
// and JSON documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/htaso/evaluator/internal/model"
	"github.com/htaso/evaluator/internal/score"
)

const reportTitle = "HTASO Umpire Evaluation Report"

// detail is one label/value row of the report header table.
type detail struct {
	Label string
	Value string
}

// details builds the header rows shared by the PDF and Word renderers.
func details(e *model.Evaluation) []detail {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	rows := []detail{
		{"Evaluator Name", orNA(e.EvaluatorName)},
		{"Trainer Name", orNA(e.TrainerName)},
		{"Training Date", orNA(e.TrainingDate)},
		{"Observation Date", orNA(e.ObservationDate)},
		{"Location", orNA(e.Location)},
		{"Type of Evaluation", orNA(e.EvalType)},
		{"Submission Date", orNA(e.SubmissionDate)},
		{"Rated Items", fmt.Sprintf("%d", e.Summary.Overall.RatedCount)},
	}

	overall := e.Summary.Overall
	if avg, ok := overall.RawAverage(); ok {
		rank, _ := overall.Rank()
		rows = append(rows,
			detail{"HTASO Average", fmt.Sprintf("%.2f", avg)},
			detail{"Rank", fmt.Sprintf("%d", rank)},
			detail{"Percentage", fmt.Sprintf("%d%%", overall.Percentage())},
		)
	} else {
		rows = append(rows, detail{"HTASO Average", "N/A"})
	}
	return rows
}

// sectionRow is one line of the section scores table.
type sectionRow struct {
	Name       string
	Average    string
	Rank       string
	Percentage string
}

func sectionRows(summary score.Summary) []sectionRow {
	var rows []sectionRow
	for _, ss := range summary.Sections {
		name := ss.Section
		if ss.Subsection != "" && ss.Subsection != "Criteria" {
			name = ss.Section + " / " + ss.Subsection
		}
		row := sectionRow{Name: name, Average: "—", Rank: "—", Percentage: "N/A"}
		if avg, ok := ss.RawAverage(); ok {
			rank, _ := ss.Rank()
			row.Average = fmt.Sprintf("%.2f", avg)
			row.Rank = fmt.Sprintf("%d", rank)
			row.Percentage = fmt.Sprintf("%d%%", ss.Percentage())
		}
		rows = append(rows, row)
	}
	return rows
}

// ratingGroup is a section's ratings bucketed by subsection, preserving
// template order.
type ratingGroup struct {
	Section     string
	Subsections []subsectionGroup
}

type subsectionGroup struct {
	Name    string
	Ratings []score.Rating
}

func groupRatings(ratings []score.Rating) []ratingGroup {
	var groups []ratingGroup
	secIndex := make(map[string]int)

	for _, r := range ratings {
		section := r.Section
		if section == "" {
			section = "General"
		}
		subsection := r.Subsection
		if subsection == "" {
			subsection = "Criteria"
		}

		si, ok := secIndex[section]
		if !ok {
			si = len(groups)
			secIndex[section] = si
			groups = append(groups, ratingGroup{Section: section})
		}

		subs := groups[si].Subsections
		ti := -1
		for i := range subs {
			if subs[i].Name == subsection {
				ti = i
				break
			}
		}
		if ti < 0 {
			groups[si].Subsections = append(groups[si].Subsections, subsectionGroup{Name: subsection})
			ti = len(groups[si].Subsections) - 1
		}
		groups[si].Subsections[ti].Ratings = append(groups[si].Subsections[ti].Ratings, r)
	}
	return groups
}

func selectionOrNotRated(r score.Rating) string {
	sel := strings.TrimSpace(r.Selection)
	if sel == "" || sel == score.Placeholder {
		return "Not Rated"
	}
	return sel
}

// commentBlocks pairs comment headings with their text in report order.
func commentBlocks(c model.Comments) []detail {
	return []detail{
		{"Strengths Observed", c.Strengths},
		{"Areas for Improvement", c.Improvement},
		{"Development Recommendations", c.Development},
		{"Overall Assessment Comments", c.Overall},
	}
}

func recommendationOrNotSelected(s string) string {
	if s == "" {
		return "Not Selected"
	}
	return s
}

// Filename builds the standard sanitized export filename,
// e.g. HTASO_Evaluation_Pat_Jones_20260115.pdf.
func Filename(evaluatorName, ext string) string {
	return filenameAt(evaluatorName, ext, time.Now())
}

func filenameAt(evaluatorName, ext string, now time.Time) string {
	var b strings.Builder
	for _, r := range evaluatorName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" {
		safe = "Evaluation"
	}
	safe = strings.ReplaceAll(safe, " ", "_")
	return fmt.Sprintf("HTASO_Evaluation_%s_%s.%s", safe, now.Format("20060102"), ext)
}
