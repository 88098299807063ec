package repository

import (
	"context"

	"github.com/oksasatya/qms-core/internal/domain/entity"
)

type ComplaintFilter struct {
	Status   entity.ComplaintStatus
	Severity entity.Severity
	Limit    int
	Offset   int
}

type ComplaintRepository interface {
	Create(ctx context.Context, c *entity.Complaint) error
	GetByID(ctx context.Context, id string) (*entity.Complaint, error)
	List(ctx context.Context, f ComplaintFilter) ([]entity.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status entity.ComplaintStatus) (*entity.Complaint, error)
	SetAttachment(ctx context.Context, id, url string) error
}
