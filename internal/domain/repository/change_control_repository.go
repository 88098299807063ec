package repository

import (
	"context"

	"github.com/oksasatya/qms-core/internal/domain/entity"
)

type ChangeControlRepository interface {
	Create(ctx context.Context, c *entity.ChangeControl) error
	GetByID(ctx context.Context, id string) (*entity.ChangeControl, error)
	List(ctx context.Context, status entity.ChangeStatus, limit, offset int) ([]entity.ChangeControl, error)
	// RecordReview stores the decision on the change row and appends the review audit row atomically.
	// It returns ErrConflict when the change is no longer pending.
	RecordReview(ctx context.Context, review *entity.ChangeReview, target entity.ChangeStatus) (*entity.ChangeControl, error)
}
