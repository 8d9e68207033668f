package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRepository_CompletedCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewFeedbackRepository(db)

	t.Run("stored count", func(t *testing.T) {
		mock.ExpectQuery(`SELECT completed_count FROM feedback_counts`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"completed_count"}).AddRow(7))

		n, err := repo.CompletedCount(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	})

	t.Run("no row means zero", func(t *testing.T) {
		mock.ExpectQuery(`SELECT completed_count FROM feedback_counts`).
			WithArgs("u2").
			WillReturnError(sql.ErrNoRows)

		n, err := repo.CompletedCount(context.Background(), "u2")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("driver error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT completed_count FROM feedback_counts`).
			WithArgs("u3").
			WillReturnError(errors.New("conn reset"))

		_, err := repo.CompletedCount(context.Background(), "u3")
		assert.Error(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
