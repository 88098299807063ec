package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/repository"
)

type ChangeControlRepository struct {
	pool *pgxpool.Pool
}

func NewChangeControlRepository(pool *pgxpool.Pool) *ChangeControlRepository {
	return &ChangeControlRepository{pool: pool}
}

const changeColumns = `id, title, description, status, requested_by,
	COALESCE(reviewed_by::text, ''), review_comment, reviewed_at, created_at, updated_at`

func scanChange(row pgx.Row) (*entity.ChangeControl, error) {
	c := &entity.ChangeControl{}
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Status, &c.RequestedBy,
		&c.ReviewedBy, &c.ReviewComment, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, rowErr(err)
	}
	return c, nil
}

func (r *ChangeControlRepository) Create(ctx context.Context, c *entity.ChangeControl) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO change_controls (title, description, status, requested_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, c.Title, c.Description, c.Status, c.RequestedBy)

	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ChangeControlRepository) GetByID(ctx context.Context, id string) (*entity.ChangeControl, error) {
	return scanChange(r.pool.QueryRow(ctx, `SELECT `+changeColumns+` FROM change_controls WHERE id = $1`, id))
}

func (r *ChangeControlRepository) List(ctx context.Context, status entity.ChangeStatus, limit, offset int) ([]entity.ChangeControl, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+changeColumns+`
		FROM change_controls
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.ChangeControl, 0, limit)
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ChangeControlRepository) RecordReview(ctx context.Context, review *entity.ChangeReview, target entity.ChangeStatus) (*entity.ChangeControl, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updated, err := scanChange(tx.QueryRow(ctx, `
		UPDATE change_controls
		SET status = $1, reviewed_by = $2, review_comment = $3, reviewed_at = now(), updated_at = now()
		WHERE id = $4 AND status = $5
		RETURNING `+changeColumns,
		target, review.ReviewerID, review.Comment, review.ChangeID, entity.ChangePendingReview))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("update change: %w", err)
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO change_control_reviews (change_id, reviewer_id, decision, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, review.ChangeID, review.ReviewerID, review.Decision, review.Comment).Scan(&review.ID, &review.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

var _ repository.ChangeControlRepository = (*ChangeControlRepository)(nil)
