package model

import (
	"context"
	"time"

	"github.com/htaso/evaluator/internal/score"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleAdmin can browse, export, and delete evaluations.
	UserRoleAdmin UserRole = "admin"
	// UserRoleEvaluator can only submit evaluations (the public form).
	UserRoleEvaluator UserRole = "evaluator"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// Comments holds the free-form evaluator comment blocks.
type Comments struct {
	Strengths   string `json:"strengths"`
	Improvement string `json:"improvement"`
	Development string `json:"development"`
	Overall     string `json:"overall"`
}

// Evaluation is one submitted assessment of a trainer. Ratings are the
// raw per-criterion selections; Summary is recomputed from them whenever
// the evaluation is loaded, so the stored copy can never drift from the
// ratings it was derived from.
type Evaluation struct {
	ID              int64          `json:"id"`
	EvaluatorName   string         `json:"evaluator_name"`
	TrainerName     string         `json:"trainer_name"`
	TrainingDate    string         `json:"training_date"`
	ObservationDate string         `json:"observation_date,omitempty"`
	Location        string         `json:"training_location,omitempty"`
	EvalType        string         `json:"eval_type,omitempty"`
	Recommendation  string         `json:"recommendation"`
	Ratings         []score.Rating `json:"ratings"`
	Summary         score.Summary  `json:"summary"`
	Comments        Comments       `json:"comments"`
	SubmissionDate  string         `json:"submission_date"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Recompute refreshes the stored summary from the ratings.
func (e *Evaluation) Recompute() {
	e.Summary = score.Aggregate(e.Ratings)
}

// EvaluationListItem is the dashboard row view of an evaluation.
type EvaluationListItem struct {
	ID             int64     `json:"id"`
	TrainerName    string    `json:"trainer"`
	EvaluatorName  string    `json:"evaluator"`
	TrainingDate   string    `json:"training_date"`
	SubmissionDate string    `json:"submission_date"`
	AverageScore   float64   `json:"average"`
	TotalScore     float64   `json:"total_score"`
	TotalPossible  float64   `json:"total_possible"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
}

// SearchFilter narrows the admin evaluation listing.
// Zero-value fields are ignored.
type SearchFilter struct {
	Evaluator string // substring match
	Trainer   string // exact match
	StartDate string // training date lower bound (inclusive)
	EndDate   string // training date upper bound (inclusive)
}

// Stats summarizes the whole evaluation database for the admin dashboard.
type Stats struct {
	TotalEvaluations int     `json:"total_evaluations"`
	TotalTrainers    int     `json:"total_trainers"`
	TotalEvaluators  int     `json:"total_evaluators"`
	AverageScore     float64 `json:"average_score"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	CriteriaPath  string // path to the criteria template (.xlsx or .json)
	BasePath      string // URL prefix for sub-path deployments
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
}
