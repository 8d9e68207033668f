package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepository(db)

	t.Run("defaults when row missing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT weekly_publish_limit, publish_strategy`).
			WithArgs(settingsRowID).
			WillReturnError(sql.ErrNoRows)

		s, err := repo.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultSettings(), s)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reads stored row", func(t *testing.T) {
		updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT weekly_publish_limit, publish_strategy`).
			WithArgs(settingsRowID).
			WillReturnRows(sqlmock.NewRows([]string{"weekly_publish_limit", "publish_strategy", "updated_at"}).
				AddRow(12, "newest_first", updated))

		s, err := repo.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 12, s.WeeklyPublishLimit)
		assert.Equal(t, domain.StrategyNewestFirst, s.PublishStrategy)
		assert.Equal(t, updated, s.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSettingsRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepository(db)

	updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO admin_settings`).
		WithArgs(settingsRowID, 3, "manual").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	s := &domain.AdminSettings{WeeklyPublishLimit: 3, PublishStrategy: domain.StrategyManual}
	require.NoError(t, repo.Save(context.Background(), s))
	assert.Equal(t, updated, s.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
