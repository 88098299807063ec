package repository

import (
	"context"

	"github.com/oksasatya/qms-core/internal/domain/entity"
)

// RoleLookup is the read side used by the authorization gate.
// Both calls are independent reads keyed only by the actor id.
type RoleLookup interface {
	// IsPrivileged evaluates the backend privilege check for the actor.
	IsPrivileged(ctx context.Context, actorID string) (bool, error)
	// ListRoles returns the raw role names assigned to the actor.
	ListRoles(ctx context.Context, actorID string) ([]string, error)
}

// RoleRepository adds membership management on top of RoleLookup.
type RoleRepository interface {
	RoleLookup
	AssignRole(ctx context.Context, actorID string, role entity.Role) error
}
