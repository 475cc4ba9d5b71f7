package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/htaso/evaluator/internal/export"
	"github.com/htaso/evaluator/internal/model"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trainer := q.Get("trainer")
	filter := model.SearchFilter{
		Evaluator: q.Get("evaluator"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	searched := filter.Evaluator != "" || filter.StartDate != "" || filter.EndDate != ""

	var (
		items []model.EvaluationListItem
		err   error
	)
	if searched {
		if trainer != "" && trainer != "all" {
			filter.Trainer = trainer
		}
		items, err = h.store.SearchEvaluations(filter)
	} else {
		items, err = h.store.ListEvaluations(trainer)
	}
	if err != nil {
		slog.Error("failed to list evaluations", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := h.store.Stats()
	if err != nil {
		slog.Error("failed to load stats", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	trainers, err := h.store.Trainers()
	if err != nil {
		slog.Error("failed to list trainers", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render(w, "dashboard", dashboardPage{
		page:        h.newPage(r, "Dashboard"),
		Stats:       stats,
		Trainers:    trainers,
		Trainer:     trainer,
		Filter:      filter,
		Searched:    searched,
		Evaluations: items,
	})
}

// loadEvaluation resolves the evalID URL parameter, writing the error
// response itself when the evaluation cannot be served.
func (h *Handler) loadEvaluation(w http.ResponseWriter, r *http.Request) *model.Evaluation {
	id, err := strconv.ParseInt(chi.URLParam(r, "evalID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid evaluation ID", http.StatusBadRequest)
		return nil
	}
	e, err := h.store.GetEvaluation(id)
	if err != nil {
		slog.Error("failed to load evaluation", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	if e == nil {
		http.NotFound(w, r)
		return nil
	}
	return e
}

func (h *Handler) handleEvaluationDetail(w http.ResponseWriter, r *http.Request) {
	e := h.loadEvaluation(w, r)
	if e == nil {
		return
	}
	render(w, "detail", detailPage{
		page:       h.newPage(r, "Evaluation of "+e.TrainerName),
		Evaluation: e,
		Sections:   sectionScores(e.Summary),
	})
}

func (h *Handler) handleDeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "evalID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid evaluation ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.store.DeleteEvaluation(id)
	if err != nil {
		slog.Error("failed to delete evaluation", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.NotFound(w, r)
		return
	}

	slog.Info("evaluation deleted", "id", id, "by", model.UserFromContext(r.Context()).Username)
	http.Redirect(w, r, h.path("/admin"), http.StatusSeeOther)
}

func (h *Handler) handleExportStoredPDF(w http.ResponseWriter, r *http.Request) {
	if e := h.loadEvaluation(w, r); e != nil {
		h.writeExport(w, e, "pdf")
	}
}

func (h *Handler) handleExportStoredWord(w http.ResponseWriter, r *http.Request) {
	if e := h.loadEvaluation(w, r); e != nil {
		h.writeExport(w, e, "docx")
	}
}

func (h *Handler) handleExportStoredJSON(w http.ResponseWriter, r *http.Request) {
	e := h.loadEvaluation(w, r)
	if e == nil {
		return
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		slog.Error("failed to marshal evaluation", "id", e.ID, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(e.EvaluatorName, "json")+`"`)
	_, _ = w.Write(data)
}

func (h *Handler) handleExportAllJSON(w http.ResponseWriter, r *http.Request) {
	evals, err := h.store.ExportAll()
	if err != nil {
		slog.Error("failed to export evaluations", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	bundle := model.ExportBundle{
		GeneratedAt: time.Now().UTC(),
		Count:       len(evals),
		Evaluations: evals,
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		slog.Error("failed to marshal export bundle", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename("All", "json")+`"`)
	_, _ = w.Write(data)
}
