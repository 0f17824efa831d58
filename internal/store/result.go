package store

import (
	"database/sql"
	"errors"
	"time"
)

// WorkoutResult represents a completed workout session summary.
// RepDetails holds the rep-by-rep data as a JSON array.
type WorkoutResult struct {
	ID               string
	UserID           string
	ExerciseType     string
	TotalReps        int
	AverageFormScore float64
	SessionDuration  int
	RepDetails       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResultRepository provides CRUD operations for workout results.
type ResultRepository struct {
	db *sql.DB
}

// Results returns the workout result repository for this store.
func (s *Store) Results() *ResultRepository {
	return &ResultRepository{db: s.db}
}

// Create inserts a new workout result into the database.
func (r *ResultRepository) Create(res *WorkoutResult) error {
	now := time.Now()
	res.CreatedAt = now
	res.UpdatedAt = now

	if res.RepDetails == "" {
		res.RepDetails = "[]"
	}

	_, err := r.db.Exec(
		`INSERT INTO workout_results
		 (id, user_id, exercise_type, total_reps, average_form_score, session_duration, rep_details, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.UserID, res.ExerciseType, res.TotalReps, res.AverageFormScore,
		res.SessionDuration, res.RepDetails, res.CreatedAt, res.UpdatedAt,
	)
	return err
}

// GetByID retrieves a workout result by ID.
func (r *ResultRepository) GetByID(id string) (*WorkoutResult, error) {
	res := &WorkoutResult{}

	err := r.db.QueryRow(
		`SELECT id, user_id, exercise_type, total_reps, average_form_score, session_duration, rep_details, created_at, updated_at
		 FROM workout_results WHERE id = ?`,
		id,
	).Scan(&res.ID, &res.UserID, &res.ExerciseType, &res.TotalReps, &res.AverageFormScore,
		&res.SessionDuration, &res.RepDetails, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

// ListByUser retrieves all workout results for a user, newest first.
func (r *ResultRepository) ListByUser(userID string) ([]*WorkoutResult, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, exercise_type, total_reps, average_form_score, session_duration, rep_details, created_at, updated_at
		 FROM workout_results WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*WorkoutResult
	for rows.Next() {
		res := &WorkoutResult{}
		err := rows.Scan(&res.ID, &res.UserID, &res.ExerciseType, &res.TotalReps, &res.AverageFormScore,
			&res.SessionDuration, &res.RepDetails, &res.CreatedAt, &res.UpdatedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Delete removes a workout result by ID.
func (r *ResultRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM workout_results WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
