package repository

import (
	"context"

	"github.com/oksasatya/qms-core/internal/domain/entity"
)

// ActorRepository defines the interface for actor-related database operations.
type ActorRepository interface {
	Create(ctx context.Context, a *entity.Actor) error
	GetByID(ctx context.Context, id string) (*entity.Actor, error)
	GetByEmail(ctx context.Context, email string) (*entity.Actor, error)
	Update(ctx context.Context, a *entity.Actor) error
}
