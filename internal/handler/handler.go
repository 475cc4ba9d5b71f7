package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/htaso/evaluator/internal/export"
	"github.com/htaso/evaluator/internal/form"
	appI18n "github.com/htaso/evaluator/internal/i18n"
	"github.com/htaso/evaluator/internal/model"
	"github.com/htaso/evaluator/internal/store"
)

const (
	pdfContentType  = "application/pdf"
	wordContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	template *form.Template
	config   model.ServerConfig
}

// New creates a new Handler.
func New(s *store.Store, t *form.Template, cfg model.ServerConfig) (*Handler, error) {
	return &Handler{store: s, template: t, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleFormPage)
		r.Post("/submit", h.handleSubmit)
		r.Post("/export/pdf", h.handleExportCurrentPDF)
		r.Post("/export/word", h.handleExportCurrentWord)

		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Use(requireRole(model.UserRoleAdmin))

			r.Get("/", h.handleDashboard)
			r.Get("/export/json", h.handleExportAllJSON)
			r.Get("/change-password", h.handleChangePasswordPage)
			r.Post("/change-password", h.handleChangePassword)

			r.Route("/evaluations/{evalID}", func(r chi.Router) {
				r.Get("/", h.handleEvaluationDetail)
				r.Post("/delete", h.handleDeleteEvaluation)
				r.Get("/export/pdf", h.handleExportStoredPDF)
				r.Get("/export/word", h.handleExportStoredWord)
				r.Get("/export/json", h.handleExportStoredJSON)
			})
		})
	})
}

// BasePathMiddleware stores the configured URL prefix in the request
// context so views can build absolute links under sub-path deployments.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// path prefixes p with the configured base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) handleFormPage(w http.ResponseWriter, r *http.Request) {
	data := formPage{page: h.newPage(r, "Evaluation Form"), Form: h.template}
	if r.URL.Query().Get("submitted") == "1" {
		data.Flash = appI18n.T(r.Context(), "SubmitSuccess")
	}
	render(w, "form", data)
}

// parseSubmission builds an evaluation from the posted form values.
// Rating selects are named rating_<key>; anything missing or malformed
// simply counts as not rated.
func (h *Handler) parseSubmission(r *http.Request) model.Evaluation {
	e := model.Evaluation{
		EvaluatorName:   strings.TrimSpace(r.FormValue("evaluator_name")),
		TrainerName:     strings.TrimSpace(r.FormValue("trainer_name")),
		TrainingDate:    strings.TrimSpace(r.FormValue("training_date")),
		ObservationDate: strings.TrimSpace(r.FormValue("observation_date")),
		Location:        strings.TrimSpace(r.FormValue("training_location")),
		EvalType:        strings.TrimSpace(r.FormValue("eval_type")),
		Recommendation:  strings.TrimSpace(r.FormValue("recommendation")),
		Comments: model.Comments{
			Strengths:   strings.TrimSpace(r.FormValue("strengths")),
			Improvement: strings.TrimSpace(r.FormValue("improvement")),
			Development: strings.TrimSpace(r.FormValue("development")),
			Overall:     strings.TrimSpace(r.FormValue("overall_comments")),
		},
		SubmissionDate: time.Now().Format("01/02/2006 03:04 PM"),
	}
	e.Ratings = h.template.Ratings(func(key string) string {
		return r.FormValue("rating_" + key)
	})
	e.Recompute()
	return e
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	e := h.parseSubmission(r)

	if e.EvaluatorName == "" || e.TrainerName == "" || e.TrainingDate == "" {
		h.renderFormError(w, r, appI18n.T(r.Context(), "SubmitMissingFields"))
		return
	}
	if !form.ValidRecommendation(e.Recommendation) {
		h.renderFormError(w, r, appI18n.T(r.Context(), "SubmitInvalidRecommendation"))
		return
	}

	id, err := h.store.InsertEvaluation(e)
	if err != nil {
		slog.Error("failed to save evaluation", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("evaluation submitted",
		"id", id,
		"trainer", e.TrainerName,
		"evaluator", e.EvaluatorName,
		"rated_items", e.Summary.Overall.RatedCount,
	)
	http.Redirect(w, r, h.path("/?submitted=1"), http.StatusSeeOther)
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, msg string) {
	data := formPage{page: h.newPage(r, "Evaluation Form"), Form: h.template}
	data.Error = msg
	w.WriteHeader(http.StatusBadRequest)
	render(w, "form", data)
}

// handleExportCurrentPDF renders the form as a PDF without saving it,
// so evaluators can keep a copy of work in progress.
func (h *Handler) handleExportCurrentPDF(w http.ResponseWriter, r *http.Request) {
	e := h.parseSubmission(r)
	h.writeExport(w, &e, "pdf")
}

func (h *Handler) handleExportCurrentWord(w http.ResponseWriter, r *http.Request) {
	e := h.parseSubmission(r)
	h.writeExport(w, &e, "docx")
}

// writeExport renders e into a buffer first so a mid-render failure
// never leaks a truncated download.
func (h *Handler) writeExport(w http.ResponseWriter, e *model.Evaluation, ext string) {
	var buf bytes.Buffer
	var err error
	contentType := pdfContentType
	switch ext {
	case "docx":
		contentType = wordContentType
		err = export.WriteWord(&buf, e)
	default:
		err = export.WritePDF(&buf, e)
	}
	if err != nil {
		slog.Error("export failed", "format", ext, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(e.EvaluatorName, ext)+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to send export", "format", ext, "error", err)
	}
}
