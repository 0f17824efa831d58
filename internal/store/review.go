package store

import (
	"database/sql"
	"errors"
	"time"
)

// Review represents user feedback on the coaching service.
type Review struct {
	ID        string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewRepository provides CRUD operations for reviews.
type ReviewRepository struct {
	db *sql.DB
}

// Reviews returns the review repository for this store.
func (s *Store) Reviews() *ReviewRepository {
	return &ReviewRepository{db: s.db}
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(rev *Review) error {
	now := time.Now()
	rev.CreatedAt = now
	rev.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO reviews (id, user_id, rating, comment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.UserID, rev.Rating, rev.Comment, rev.CreatedAt, rev.UpdatedAt,
	)
	return err
}

// GetByID retrieves a review by ID.
func (r *ReviewRepository) GetByID(id string) (*Review, error) {
	rev := &Review{}

	err := r.db.QueryRow(
		`SELECT id, user_id, rating, comment, created_at, updated_at
		 FROM reviews WHERE id = ?`,
		id,
	).Scan(&rev.ID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt, &rev.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return rev, nil
}

// List retrieves all reviews, newest first.
func (r *ReviewRepository) List() ([]*Review, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, rating, comment, created_at, updated_at
		 FROM reviews ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		rev := &Review{}
		err := rows.Scan(&rev.ID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt, &rev.UpdatedAt)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

// Delete removes a review by ID.
func (r *ReviewRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM reviews WHERE id = ?`, id)
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
