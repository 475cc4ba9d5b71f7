package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/htaso/evaluator/internal/model"
	"github.com/htaso/evaluator/internal/score"
)

func sampleEvaluation() *model.Evaluation {
	e := &model.Evaluation{
		EvaluatorName:  "Pat Jones",
		TrainerName:    "Sam Lee",
		TrainingDate:   "2026-01-15",
		Recommendation: "Approved for Independent Evaluation",
		Ratings: []score.Rating{
			{Key: "a", Section: "Plate Work", Subsection: "Stance", Prompt: "Works the slot", Selection: "1 - Outstanding"},
			{Key: "b", Section: "Plate Work", Subsection: "Stance", Prompt: "Tracks the pitch", Selection: "2 - Above Standard"},
			{Key: "c", Section: "Base Work", Subsection: "Positioning", Prompt: "Starting position", Selection: score.NotObserved},
		},
		Comments:       model.Comments{Strengths: "Calm presence behind the plate."},
		SubmissionDate: "01/15/2026 10:30 AM",
	}
	e.Recompute()
	return e
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name, ext, want string
	}{
		{"Pat Jones", "pdf", "HTASO_Evaluation_Pat_Jones_20260115.pdf"},
		{"A/B\\C:D", "docx", "HTASO_Evaluation_ABCD_20260115.docx"},
		{"///", "pdf", "HTASO_Evaluation_Evaluation_20260115.pdf"},
		{"", "json", "HTASO_Evaluation_Evaluation_20260115.json"},
	}
	for _, tt := range tests {
		if got := filenameAt(tt.name, tt.ext, at); got != tt.want {
			t.Errorf("filenameAt(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDetails(t *testing.T) {
	e := sampleEvaluation()
	rows := details(e)

	find := func(label string) string {
		t.Helper()
		for _, d := range rows {
			if d.Label == label {
				return d.Value
			}
		}
		t.Fatalf("detail %q missing", label)
		return ""
	}

	if got := find("Evaluator Name"); got != "Pat Jones" {
		t.Errorf("evaluator = %q", got)
	}
	if got := find("Observation Date"); got != "N/A" {
		t.Errorf("empty observation date = %q, want N/A", got)
	}
	if got := find("Rated Items"); got != "2" {
		t.Errorf("rated items = %q, want 2", got)
	}
	// Raw digits 1 and 2: HTASO average 1.50, rank 2.
	if got := find("HTASO Average"); got != "1.50" {
		t.Errorf("average = %q, want 1.50", got)
	}
	if got := find("Rank"); got != "2" {
		t.Errorf("rank = %q, want 2", got)
	}
	// Internal 5+4 of 10 -> 90%.
	if got := find("Percentage"); got != "90%" {
		t.Errorf("percentage = %q, want 90%%", got)
	}
}

func TestDetailsUnrated(t *testing.T) {
	e := &model.Evaluation{EvaluatorName: "Pat"}
	e.Recompute()
	rows := details(e)

	last := rows[len(rows)-1]
	if last.Label != "HTASO Average" || last.Value != "N/A" {
		t.Errorf("unrated report must end with HTASO Average N/A, got %+v", last)
	}
	for _, d := range rows {
		if d.Label == "Rank" {
			t.Error("rank row present for unrated evaluation")
		}
	}
}

func TestSectionRows(t *testing.T) {
	e := sampleEvaluation()
	rows := sectionRows(e.Summary)
	if len(rows) != 2 {
		t.Fatalf("expected 2 section rows, got %d", len(rows))
	}
	if rows[0].Name != "Plate Work / Stance" {
		t.Errorf("row name = %q", rows[0].Name)
	}
	if rows[0].Average != "1.50" || rows[0].Percentage != "90%" {
		t.Errorf("row = %+v", rows[0])
	}
	// The Not Observed-only group renders placeholders, never zeros.
	if rows[1].Average != "—" || rows[1].Rank != "—" || rows[1].Percentage != "N/A" {
		t.Errorf("unrated row = %+v", rows[1])
	}
}

func TestGroupRatings(t *testing.T) {
	e := sampleEvaluation()
	groups := groupRatings(e.Ratings)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Section != "Plate Work" || len(groups[0].Subsections) != 1 {
		t.Errorf("first group = %+v", groups[0])
	}
	if len(groups[0].Subsections[0].Ratings) != 2 {
		t.Errorf("stance ratings = %d, want 2", len(groups[0].Subsections[0].Ratings))
	}

	// Ratings without labels fall into the General/Criteria bucket.
	groups = groupRatings([]score.Rating{{Key: "x", Selection: "3 - Meets Standard"}})
	if groups[0].Section != "General" || groups[0].Subsections[0].Name != "Criteria" {
		t.Errorf("fallback group = %+v", groups[0])
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleEvaluation()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with PDF magic: %q", buf.Bytes()[:8])
	}
}

func TestWriteWord(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWord(&buf, sampleEvaluation()); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty Word output")
	}
	// docx files are zip archives.
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("output is not a zip archive: %q", buf.Bytes()[:4])
	}
}

func TestSelectionOrNotRated(t *testing.T) {
	tests := []struct {
		selection, want string
	}{
		{"", "Not Rated"},
		{score.Placeholder, "Not Rated"},
		{score.NotObserved, score.NotObserved},
		{"3 - Meets Standard", "3 - Meets Standard"},
	}
	for _, tt := range tests {
		r := score.Rating{Selection: tt.selection}
		if got := selectionOrNotRated(r); got != tt.want {
			t.Errorf("selectionOrNotRated(%q) = %q, want %q", tt.selection, got, tt.want)
		}
	}
}
