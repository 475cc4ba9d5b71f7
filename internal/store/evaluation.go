package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/htaso/evaluator/internal/model"
)

// InsertEvaluation stores a submitted evaluation. The summary is
// recomputed from the ratings before persisting so stored figures can
// never disagree with the rating set.
func (s *Store) InsertEvaluation(e model.Evaluation) (int64, error) {
	e.Recompute()

	ratings, err := json.Marshal(e.Ratings)
	if err != nil {
		return 0, fmt.Errorf("marshal ratings: %w", err)
	}
	summary, err := json.Marshal(e.Summary)
	if err != nil {
		return 0, fmt.Errorf("marshal summary: %w", err)
	}
	comments, err := json.Marshal(e.Comments)
	if err != nil {
		return 0, fmt.Errorf("marshal comments: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO evaluations (
			evaluator_name, trainer_name, training_date, observation_date,
			location, eval_type, recommendation, ratings, summary, comments,
			average_score, total_score, total_possible, submission_date, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EvaluatorName, e.TrainerName, e.TrainingDate, e.ObservationDate,
		e.Location, e.EvalType, e.Recommendation, string(ratings), string(summary), string(comments),
		e.Summary.Overall.AverageScore(), e.Summary.Overall.TotalScore(), e.Summary.Overall.TotalPossible(),
		e.SubmissionDate, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetEvaluation returns an evaluation by ID, or nil if not found.
// The summary is recomputed from the stored ratings on load.
func (s *Store) GetEvaluation(id int64) (*model.Evaluation, error) {
	var e model.Evaluation
	var ratings, summary, comments string
	err := s.db.QueryRow(
		`SELECT id, evaluator_name, trainer_name, training_date, observation_date,
		        location, eval_type, recommendation, ratings, summary, comments,
		        submission_date, created_at
		 FROM evaluations WHERE id = ?`, id,
	).Scan(
		&e.ID, &e.EvaluatorName, &e.TrainerName, &e.TrainingDate, &e.ObservationDate,
		&e.Location, &e.EvalType, &e.Recommendation, &ratings, &summary, &comments,
		&e.SubmissionDate, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(ratings), &e.Ratings); err != nil {
		return nil, fmt.Errorf("unmarshal ratings for evaluation %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(comments), &e.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments for evaluation %d: %w", id, err)
	}
	// The stored summary column exists for ad-hoc SQL inspection; the
	// authoritative value is always rederived from the ratings.
	_ = summary
	e.Recompute()
	return &e, nil
}

// ListEvaluations returns dashboard rows, newest first. An empty trainer
// (or the literal "all") returns every evaluation.
func (s *Store) ListEvaluations(trainer string) ([]model.EvaluationListItem, error) {
	query := `SELECT id, trainer_name, evaluator_name, training_date, submission_date,
	                 average_score, total_score, total_possible, recommendation, created_at
	          FROM evaluations`
	var args []any
	if trainer != "" && trainer != "all" {
		query += ` WHERE trainer_name = ?`
		args = append(args, trainer)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return s.queryListItems(query, args...)
}

// SearchEvaluations returns dashboard rows matching the filter, newest first.
func (s *Store) SearchEvaluations(f model.SearchFilter) ([]model.EvaluationListItem, error) {
	query := `SELECT id, trainer_name, evaluator_name, training_date, submission_date,
	                 average_score, total_score, total_possible, recommendation, created_at
	          FROM evaluations WHERE 1=1`
	var args []any
	if f.Evaluator != "" {
		query += ` AND evaluator_name LIKE ?`
		args = append(args, "%"+f.Evaluator+"%")
	}
	if f.Trainer != "" && f.Trainer != "all" {
		query += ` AND trainer_name = ?`
		args = append(args, f.Trainer)
	}
	if f.StartDate != "" {
		query += ` AND training_date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += ` AND training_date <= ?`
		args = append(args, f.EndDate)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return s.queryListItems(query, args...)
}

func (s *Store) queryListItems(query string, args ...any) ([]model.EvaluationListItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.EvaluationListItem
	for rows.Next() {
		var it model.EvaluationListItem
		if err := rows.Scan(
			&it.ID, &it.TrainerName, &it.EvaluatorName, &it.TrainingDate, &it.SubmissionDate,
			&it.AverageScore, &it.TotalScore, &it.TotalPossible, &it.Recommendation, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteEvaluation removes an evaluation. Returns false when no row
// matched the ID.
func (s *Store) DeleteEvaluation(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM evaluations WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Trainers returns the distinct trainer names, sorted, for the dashboard
// filter dropdown.
func (s *Store) Trainers() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT trainer_name FROM evaluations ORDER BY trainer_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trainers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		trainers = append(trainers, t)
	}
	return trainers, rows.Err()
}

// Stats returns whole-database statistics for the dashboard header.
func (s *Store) Stats() (model.Stats, error) {
	var st model.Stats
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COUNT(DISTINCT trainer_name),
		        COUNT(DISTINCT evaluator_name),
		        COALESCE(AVG(average_score), 0)
		 FROM evaluations`,
	).Scan(&st.TotalEvaluations, &st.TotalTrainers, &st.TotalEvaluators, &st.AverageScore)
	return st, err
}

// EvaluationCount returns the number of stored evaluations.
func (s *Store) EvaluationCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM evaluations`).Scan(&count)
	return count, err
}

// ExportAll loads every evaluation in full, oldest first, for the JSON
// export subcommand.
func (s *Store) ExportAll() ([]model.Evaluation, error) {
	rows, err := s.db.Query(`SELECT id FROM evaluations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var evals []model.Evaluation
	for _, id := range ids {
		e, err := s.GetEvaluation(id)
		if err != nil {
			return nil, fmt.Errorf("load evaluation %d: %w", id, err)
		}
		if e != nil {
			evals = append(evals, *e)
		}
	}
	return evals, nil
}
