package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/htaso/evaluator/internal/form"
	"github.com/htaso/evaluator/internal/model"
	"github.com/htaso/evaluator/internal/score"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"options":         form.Options,
	"recColor":        form.RecommendationColor,
	"recommendations": func() any { return form.Recommendations },
	"overallAverage":  overallAverage,
	"ratio":           func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"percent":         func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
}

// overallAverage formats the mean raw rank, or N/A when nothing was rated.
func overallAverage(o score.Overall) string {
	avg, ok := o.RawAverage()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", avg)
}

// Each page template defines a "content" block rendered inside layout.html.
var pageTemplates = parseTemplates()

func parseTemplates() map[string]*template.Template {
	pages := []string{"form", "login", "dashboard", "detail", "password"}
	out := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		out[name] = template.Must(template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// page carries the fields every view shares.
type page struct {
	Title     string
	BasePath  string
	CSRFToken string
	Flash     string
	Error     string
	User      *model.User
}

func (h *Handler) newPage(r *http.Request, title string) page {
	return page{
		Title:     title,
		BasePath:  h.config.BasePath,
		CSRFToken: model.CSRFTokenFromContext(r.Context()),
		User:      model.UserFromContext(r.Context()),
	}
}

type formPage struct {
	page
	Form *form.Template
}

type loginPage struct {
	page
}

type passwordPage struct {
	page
}

type dashboardPage struct {
	page
	Stats       model.Stats
	Trainers    []string
	Trainer     string
	Filter      model.SearchFilter
	Searched    bool
	Evaluations []model.EvaluationListItem
}

// sectionScoreView is a section summary row with display strings
// precomputed, since templates cannot unpack two-value returns.
type sectionScoreView struct {
	Name       string
	Average    string
	Rank       string
	Percentage string
	Color      string
}

type detailPage struct {
	page
	Evaluation *model.Evaluation
	Sections   []sectionScoreView
}

func sectionScores(summary score.Summary) []sectionScoreView {
	views := make([]sectionScoreView, 0, len(summary.Sections))
	for _, ss := range summary.Sections {
		name := ss.Section
		if ss.Subsection != "" && ss.Subsection != "Criteria" {
			name += " / " + ss.Subsection
		}
		v := sectionScoreView{
			Name:       name,
			Average:    ss.AverageDisplay(),
			Rank:       "—",
			Percentage: "N/A",
			Color:      ss.Tier().Color(),
		}
		if rank, ok := ss.Rank(); ok {
			v.Rank = fmt.Sprintf("%d", rank)
			v.Percentage = fmt.Sprintf("%d%%", ss.Percentage())
		}
		views = append(views, v)
	}
	return views
}

func render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates[name].ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("render error", "template", name, "error", err)
	}
}
