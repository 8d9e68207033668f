package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const portfolioColumns = `id, user_id, title, description, website_url, images, tags, tools, styles,
		status, approved, published, is_visible, published_at, declined_reason,
		created_at, updated_at, deleted_at, deleted_by`

// PortfolioRepository handles PostgreSQL operations for portfolios
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// lockUser serializes portfolio creation and restore for one owner until
// the transaction ends.
func lockUser(ctx context.Context, tx *sql.Tx, userID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("failed to lock user portfolios: %w", err)
	}
	return nil
}

func scanPortfolio(row rowScanner) (*domain.Portfolio, error) {
	var p domain.Portfolio
	var publishedAt, deletedAt sql.NullTime
	var declinedReason, deletedBy sql.NullString

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Description,
		&p.WebsiteURL,
		pq.Array(&p.Images),
		pq.Array(&p.Tags),
		pq.Array(&p.Tools),
		pq.Array(&p.Styles),
		&p.Status,
		&p.Approved,
		&p.Published,
		&p.IsVisible,
		&publishedAt,
		&declinedReason,
		&p.CreatedAt,
		&p.UpdatedAt,
		&deletedAt,
		&deletedBy,
	)
	if err != nil {
		return nil, err
	}

	// Handle nullable fields
	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}
	if declinedReason.Valid {
		p.DeclinedReason = &declinedReason.String
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		p.DeletedBy = &deletedBy.String
	}

	return &p, nil
}

// GetByID retrieves a portfolio by id, including soft-deleted ones
func (r *PortfolioRepository) GetByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + `
		FROM portfolios
		WHERE id = $1`

	p, err := scanPortfolio(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return p, nil
}

// GetLiveByUser retrieves the user's non-deleted portfolio
func (r *PortfolioRepository) GetLiveByUser(ctx context.Context, userID string) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + `
		FROM portfolios
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	p, err := scanPortfolio(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio for user: %w", err)
	}
	return p, nil
}

// Create inserts a new portfolio. With enforceSingle the insert is refused
// when the user already owns a live portfolio.
func (r *PortfolioRepository) Create(ctx context.Context, p *domain.Portfolio, enforceSingle bool) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if enforceSingle {
		if err := lockUser(ctx, tx, p.UserID); err != nil {
			return err
		}

		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM portfolios WHERE user_id = $1 AND deleted_at IS NULL)`,
			p.UserID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check existing portfolio: %w", err)
		}
		if exists {
			return domain.ErrPortfolioExists
		}
	}

	query := `
		INSERT INTO portfolios (` + portfolioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err = tx.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.Title,
		p.Description,
		p.WebsiteURL,
		pq.Array(p.Images),
		pq.Array(p.Tags),
		pq.Array(p.Tools),
		pq.Array(p.Styles),
		p.Status,
		p.Approved,
		p.Published,
		p.IsVisible,
		p.PublishedAt,
		p.DeclinedReason,
		p.CreatedAt,
		p.UpdatedAt,
		p.DeletedAt,
		p.DeletedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit portfolio: %w", err)
	}
	return nil
}

// Update writes every mutable column in one statement, guarded by the
// updated_at value the caller read. A miss on an existing row is a conflict.
func (r *PortfolioRepository) Update(ctx context.Context, p *domain.Portfolio, prevUpdatedAt time.Time) error {
	return update(ctx, r.db, p, prevUpdatedAt)
}

// Restore writes a restored portfolio like Update, but refuses when its
// owner already has another live portfolio. Admin owners are exempt.
func (r *PortfolioRepository) Restore(ctx context.Context, p *domain.Portfolio, prevUpdatedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockUser(ctx, tx, p.UserID); err != nil {
		return err
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM portfolios
			WHERE user_id = $1 AND id <> $2 AND deleted_at IS NULL
		) AND NOT EXISTS (
			SELECT 1 FROM users WHERE id = $1 AND role = 'admin'
		)`,
		p.UserID, p.ID,
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check live portfolio: %w", err)
	}
	if taken {
		return domain.ErrPortfolioExists
	}

	if err := update(ctx, tx, p, prevUpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore: %w", err)
	}
	return nil
}

func update(ctx context.Context, q execer, p *domain.Portfolio, prevUpdatedAt time.Time) error {
	query := `
		UPDATE portfolios
		SET title = $3, description = $4, website_url = $5,
		    images = $6, tags = $7, tools = $8, styles = $9,
		    status = $10, approved = $11, published = $12, is_visible = $13,
		    published_at = $14, declined_reason = $15,
		    deleted_at = $16, deleted_by = $17, updated_at = $18
		WHERE id = $1 AND updated_at = $2`

	result, err := q.ExecContext(ctx, query,
		p.ID,
		prevUpdatedAt,
		p.Title,
		p.Description,
		p.WebsiteURL,
		pq.Array(p.Images),
		pq.Array(p.Tags),
		pq.Array(p.Tools),
		pq.Array(p.Styles),
		p.Status,
		p.Approved,
		p.Published,
		p.IsVisible,
		p.PublishedAt,
		p.DeclinedReason,
		p.DeletedAt,
		p.DeletedBy,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM portfolios WHERE id = $1)`, p.ID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check portfolio: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// ListApprovedQueued returns approved, unpublished, live portfolios
// ordered by updated_at ascending
func (r *PortfolioRepository) ListApprovedQueued(ctx context.Context) ([]domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + `
		FROM portfolios
		WHERE status = $1 AND approved AND NOT published AND deleted_at IS NULL
		ORDER BY updated_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, domain.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued portfolios: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Portfolio, 0, 16)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
