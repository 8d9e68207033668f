package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/folio-review/folio-backend/internal/portfolios/domain"
)

// settingsRowID is the primary key of the singleton admin_settings row
const settingsRowID = 1

// SettingsRepository handles the admin_settings singleton
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings, or the defaults when the row is missing
func (r *SettingsRepository) Get(ctx context.Context) (domain.AdminSettings, error) {
	query := `
		SELECT weekly_publish_limit, publish_strategy, updated_at
		FROM admin_settings
		WHERE id = $1`

	var s domain.AdminSettings
	var strategy string
	err := r.db.QueryRowContext(ctx, query, settingsRowID).Scan(&s.WeeklyPublishLimit, &strategy, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.AdminSettings{}, fmt.Errorf("failed to get admin settings: %w", err)
	}
	s.PublishStrategy = domain.PublishStrategy(strategy)
	return s, nil
}

// Save upserts the singleton row and stamps UpdatedAt
func (r *SettingsRepository) Save(ctx context.Context, s *domain.AdminSettings) error {
	query := `
		INSERT INTO admin_settings (id, weekly_publish_limit, publish_strategy, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			weekly_publish_limit = EXCLUDED.weekly_publish_limit,
			publish_strategy = EXCLUDED.publish_strategy,
			updated_at = NOW()
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, settingsRowID, s.WeeklyPublishLimit, string(s.PublishStrategy)).
		Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save admin settings: %w", err)
	}
	return nil
}
