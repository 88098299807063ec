package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/repository"
)

type ActorRepository struct {
	pool *pgxpool.Pool
}

func NewActorRepository(pool *pgxpool.Pool) *ActorRepository {
	return &ActorRepository{pool: pool}
}

const actorColumns = `id, email, password_hash, name, avatar_url, is_verified, created_at, updated_at`

func scanActor(row pgx.Row) (*entity.Actor, error) {
	a := &entity.Actor{}
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.Name, &a.AvatarURL, &a.IsVerified,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, rowErr(err)
	}
	return a, nil
}

func (r *ActorRepository) Create(ctx context.Context, a *entity.Actor) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, a.Email, a.Password, a.Name, a.AvatarURL)

	return row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *ActorRepository) GetByID(ctx context.Context, id string) (*entity.Actor, error) {
	return scanActor(r.pool.QueryRow(ctx, `SELECT `+actorColumns+` FROM users WHERE id = $1`, id))
}

func (r *ActorRepository) GetByEmail(ctx context.Context, email string) (*entity.Actor, error) {
	return scanActor(r.pool.QueryRow(ctx, `SELECT `+actorColumns+` FROM users WHERE email = $1`, email))
}

func (r *ActorRepository) Update(ctx context.Context, a *entity.Actor) error {
	a.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, avatar_url = $4, updated_at = $5
		WHERE id = $6
	`, a.Email, a.Password, a.Name, a.AvatarURL, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ repository.ActorRepository = (*ActorRepository)(nil)
