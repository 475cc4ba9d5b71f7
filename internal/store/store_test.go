package store

import (
	"testing"
	"time"

	"github.com/htaso/evaluator/internal/model"
	"github.com/htaso/evaluator/internal/score"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEvaluation(evaluator, trainer, date string, selections ...string) model.Evaluation {
	var ratings []score.Rating
	for i, sel := range selections {
		ratings = append(ratings, score.Rating{
			Key:        "plate_work_stance_0" + string(rune('1'+i)),
			Section:    "Plate Work",
			Subsection: "Stance",
			Prompt:     "Criterion",
			Selection:  sel,
		})
	}
	return model.Evaluation{
		EvaluatorName:  evaluator,
		TrainerName:    trainer,
		TrainingDate:   date,
		Recommendation: "Approved for Independent Evaluation",
		Ratings:        ratings,
		Comments:       model.Comments{Strengths: "strong plate presence"},
		SubmissionDate: "01/15/2026 10:30 AM",
	}
}

func insertTestEvaluation(t *testing.T, s *Store, evaluator, trainer, date string, selections ...string) int64 {
	t.Helper()
	id, err := s.InsertEvaluation(testEvaluation(evaluator, trainer, date, selections...))
	if err != nil {
		t.Fatalf("insertTestEvaluation: %v", err)
	}
	return id
}

func TestEvaluationRoundTrip(t *testing.T) {
	s := newTestStore(t)

	id := insertTestEvaluation(t, s, "Pat Jones", "Sam Lee", "2026-01-15",
		"1 - Outstanding", "1 - Outstanding", "1 - Outstanding")

	e, err := s.GetEvaluation(id)
	if err != nil {
		t.Fatalf("GetEvaluation: %v", err)
	}
	if e == nil {
		t.Fatal("expected evaluation, got nil")
	}
	if e.EvaluatorName != "Pat Jones" || e.TrainerName != "Sam Lee" {
		t.Errorf("names = %q / %q", e.EvaluatorName, e.TrainerName)
	}
	if len(e.Ratings) != 3 {
		t.Fatalf("expected 3 ratings, got %d", len(e.Ratings))
	}
	if e.Comments.Strengths != "strong plate presence" {
		t.Errorf("comments lost: %+v", e.Comments)
	}

	// Summary is rederived from the stored ratings on load.
	if e.Summary.Overall.TotalScore() != 15 || e.Summary.Overall.TotalPossible() != 15 {
		t.Errorf("overall = %v/%v, want 15/15",
			e.Summary.Overall.TotalScore(), e.Summary.Overall.TotalPossible())
	}
	if got := e.Summary.Section("Plate Work", "Stance").Percentage(); got != 100 {
		t.Errorf("section percentage = %d, want 100", got)
	}

	// Not found.
	missing, err := s.GetEvaluation(9999)
	if err != nil {
		t.Fatalf("GetEvaluation missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing evaluation, got %+v", missing)
	}
}

func TestListEvaluations(t *testing.T) {
	s := newTestStore(t)
	insertTestEvaluation(t, s, "Pat", "Trainer A", "2026-01-01", "2 - Above Standard")
	insertTestEvaluation(t, s, "Kim", "Trainer B", "2026-01-02", "4 - Below Standard")
	insertTestEvaluation(t, s, "Lou", "Trainer A", "2026-01-03", "3 - Meets Standard")

	all, err := s.ListEvaluations("")
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
	// Newest first.
	if all[0].EvaluatorName != "Lou" {
		t.Errorf("expected newest first, got %q", all[0].EvaluatorName)
	}

	filtered, err := s.ListEvaluations("Trainer A")
	if err != nil {
		t.Fatalf("ListEvaluations filtered: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("expected 2 rows for Trainer A, got %d", len(filtered))
	}

	everybody, err := s.ListEvaluations("all")
	if err != nil {
		t.Fatalf("ListEvaluations all: %v", err)
	}
	if len(everybody) != 3 {
		t.Errorf("literal 'all' must not filter, got %d rows", len(everybody))
	}
}

func TestSearchEvaluations(t *testing.T) {
	s := newTestStore(t)
	insertTestEvaluation(t, s, "Pat Jones", "Trainer A", "2026-01-01", "1 - Outstanding")
	insertTestEvaluation(t, s, "Patricia Smith", "Trainer B", "2026-02-01", "2 - Above Standard")
	insertTestEvaluation(t, s, "Kim Park", "Trainer A", "2026-03-01", "3 - Meets Standard")

	tests := []struct {
		name   string
		filter model.SearchFilter
		want   int
	}{
		{"no filter", model.SearchFilter{}, 3},
		{"evaluator substring", model.SearchFilter{Evaluator: "Pat"}, 2},
		{"trainer exact", model.SearchFilter{Trainer: "Trainer A"}, 2},
		{"date lower bound", model.SearchFilter{StartDate: "2026-02-01"}, 2},
		{"date range", model.SearchFilter{StartDate: "2026-01-15", EndDate: "2026-02-15"}, 1},
		{"combined", model.SearchFilter{Evaluator: "Pat", Trainer: "Trainer B"}, 1},
		{"no match", model.SearchFilter{Evaluator: "Nobody"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.SearchEvaluations(tt.filter)
			if err != nil {
				t.Fatalf("SearchEvaluations: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("got %d rows, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestDeleteEvaluation(t *testing.T) {
	s := newTestStore(t)
	id := insertTestEvaluation(t, s, "Pat", "Trainer A", "2026-01-01", "1 - Outstanding")

	ok, err := s.DeleteEvaluation(id)
	if err != nil {
		t.Fatalf("DeleteEvaluation: %v", err)
	}
	if !ok {
		t.Fatal("expected delete to report success")
	}

	e, err := s.GetEvaluation(id)
	if err != nil {
		t.Fatalf("GetEvaluation after delete: %v", err)
	}
	if e != nil {
		t.Error("evaluation still present after delete")
	}

	ok, err = s.DeleteEvaluation(id)
	if err != nil {
		t.Fatalf("DeleteEvaluation again: %v", err)
	}
	if ok {
		t.Error("second delete must report no match")
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalEvaluations != 0 {
		t.Errorf("stats still count deleted evaluation: %+v", st)
	}
}

func TestTrainersAndStats(t *testing.T) {
	s := newTestStore(t)
	insertTestEvaluation(t, s, "Pat", "Trainer B", "2026-01-01", "1 - Outstanding")
	insertTestEvaluation(t, s, "Kim", "Trainer A", "2026-01-02", "5 - Unsatisfactory")
	insertTestEvaluation(t, s, "Pat", "Trainer A", "2026-01-03", "3 - Meets Standard")

	trainers, err := s.Trainers()
	if err != nil {
		t.Fatalf("Trainers: %v", err)
	}
	if len(trainers) != 2 || trainers[0] != "Trainer A" || trainers[1] != "Trainer B" {
		t.Errorf("trainers = %v", trainers)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalEvaluations != 3 || st.TotalTrainers != 2 || st.TotalEvaluators != 2 {
		t.Errorf("stats = %+v", st)
	}
	// Averages: 1.0, 0.2, 0.6 -> mean 0.6.
	if st.AverageScore < 0.59 || st.AverageScore > 0.61 {
		t.Errorf("average score = %v, want 0.6", st.AverageScore)
	}
}

func TestExportAll(t *testing.T) {
	s := newTestStore(t)
	first := insertTestEvaluation(t, s, "Pat", "Trainer A", "2026-01-01", "2 - Above Standard")
	insertTestEvaluation(t, s, "Kim", "Trainer B", "2026-01-02", "3 - Meets Standard")

	evals, err := s.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(evals) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(evals))
	}
	if evals[0].ID != first {
		t.Errorf("export must be oldest first, got id %d", evals[0].ID)
	}
	if evals[0].Summary.Overall.RatedCount != 1 {
		t.Errorf("export did not carry summaries: %+v", evals[0].Summary.Overall)
	}
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.UserCount()
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id, err := s.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: "hash",
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id || u.Role != model.UserRoleAdmin {
		t.Errorf("user = %+v", u)
	}

	missing, err := s.GetUserByUsername("ghost")
	if err != nil {
		t.Fatalf("GetUserByUsername missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}
}

func TestUpdateUserPasswordInvalidatesSessions(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateUser(model.User{Username: "admin", PasswordHash: "old", Role: model.UserRoleAdmin, Active: true})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	if err := s.UpdateUserPassword(id, "new"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	u, err := s.GetUserByID(id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.PasswordHash != "new" {
		t.Errorf("password hash = %q, want new", u.PasswordHash)
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess != nil {
		t.Error("sessions must be invalidated on password change")
	}
}

func TestAuthSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	id, err := s.CreateUser(model.User{Username: "admin", PasswordHash: "h", Role: model.UserRoleAdmin, Active: true})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("empty session token")
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("session = %+v", sess)
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Error("fresh session already expired")
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Error("session survived delete")
	}

	// Unknown token.
	sess, err = s.GetAuthSession("nope")
	if err != nil {
		t.Fatalf("GetAuthSession unknown: %v", err)
	}
	if sess != nil {
		t.Error("unknown token returned a session")
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value for missing key, got %q", v)
	}

	if err := s.SetCriteriaFileHash("criteria.xlsx", "abc123"); err != nil {
		t.Fatalf("SetCriteriaFileHash: %v", err)
	}
	h, err := s.GetCriteriaFileHash("criteria.xlsx")
	if err != nil {
		t.Fatalf("GetCriteriaFileHash: %v", err)
	}
	if h != "abc123" {
		t.Errorf("hash = %q", h)
	}

	// Upsert.
	if err := s.SetCriteriaFileHash("criteria.xlsx", "def456"); err != nil {
		t.Fatalf("SetCriteriaFileHash update: %v", err)
	}
	h, _ = s.GetCriteriaFileHash("criteria.xlsx")
	if h != "def456" {
		t.Errorf("hash after update = %q", h)
	}
}
