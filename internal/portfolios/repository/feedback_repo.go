package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FeedbackRepository reads the completed-feedback counters maintained by
// the feedback subsystem
type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) CompletedCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT completed_count FROM feedback_counts WHERE user_id = $1`, userID,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get feedback count: %w", err)
	}
	return n, nil
}
