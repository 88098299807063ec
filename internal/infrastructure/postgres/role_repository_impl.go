package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/repository"
)

// RoleRepository reads role memberships from user_roles and evaluates the
// is_privileged database function.
type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) IsPrivileged(ctx context.Context, actorID string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT is_privileged($1::uuid)`, actorID).Scan(&ok); err != nil {
		return false, fmt.Errorf("is_privileged: %w", err)
	}
	return ok, nil
}

func (r *RoleRepository) ListRoles(ctx context.Context, actorID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list roles: scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return names, nil
}

func (r *RoleRepository) AssignRole(ctx context.Context, actorID string, role entity.Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, actorID, string(role))
	return err
}

// EnsureRoles upserts the role catalogue.
func (r *RoleRepository) EnsureRoles(ctx context.Context, roles []entity.Role) error {
	batch := &pgx.Batch{}
	for _, role := range roles {
		batch.Queue(`
			INSERT INTO roles (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET updated_at = now()
		`, string(role))
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
