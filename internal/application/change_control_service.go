package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/qms-core/config"
	"github.com/oksasatya/qms-core/internal/domain/entity"
	repo "github.com/oksasatya/qms-core/internal/domain/repository"
	"github.com/oksasatya/qms-core/pkg/helpers"
	"github.com/oksasatya/qms-core/pkg/mailer"
	"github.com/oksasatya/qms-core/pkg/mailer/templates"
)

// Publisher puts a JSON job on the notification queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// PermissionChecker answers the review-permission question for an actor.
type PermissionChecker interface {
	CheckReviewPermission(ctx context.Context, actorID string) (entity.ReviewPermission, error)
}

type CreateChangeInput struct {
	Title       string
	Description string
	Draft       bool // keep as Draft instead of submitting for review
}

type ChangeControlService struct {
	Repo      repo.ChangeControlRepository
	Actors    repo.ActorRepository
	Gate      PermissionChecker
	Publisher Publisher
	Cfg       *config.Config
	Logger    *logrus.Logger
}

func NewChangeControlService(r repo.ChangeControlRepository, actors repo.ActorRepository, gate PermissionChecker, pub Publisher, cfg *config.Config, logger *logrus.Logger) *ChangeControlService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &ChangeControlService{Repo: r, Actors: actors, Gate: gate, Publisher: pub, Cfg: cfg, Logger: logger}
}

func (s *ChangeControlService) Create(ctx context.Context, actorID string, in CreateChangeInput) (*entity.ChangeControl, error) {
	c := &entity.ChangeControl{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      entity.ChangePendingReview,
		RequestedBy: actorID,
	}
	if in.Draft {
		c.Status = entity.ChangeDraft
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ChangeControlService) Get(ctx context.Context, id string) (*entity.ChangeControl, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChangeNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *ChangeControlService) List(ctx context.Context, status entity.ChangeStatus, limit, offset int) ([]entity.ChangeControl, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, status, limit, offset)
}

// Review records an approve/reject decision on a pending change.
//
// The reviewer must pass the authorization gate; a lookup failure is treated as a
// denial and the returned error matches both ErrReviewForbidden and ErrLookup.
func (s *ChangeControlService) Review(ctx context.Context, actorID, changeID string, decision entity.ReviewDecision, comment string) (*entity.ChangeControl, error) {
	target, ok := decision.Target()
	if !ok {
		return nil, ErrInvalidDecision
	}

	perm, err := s.Gate.CheckReviewPermission(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReviewForbidden, err)
	}
	if !perm.CanReview {
		return nil, ErrReviewForbidden
	}

	current, err := s.Get(ctx, changeID)
	if err != nil {
		return nil, err
	}
	if !current.Reviewable() {
		return nil, ErrNotReviewable
	}

	review := &entity.ChangeReview{
		ChangeID:   changeID,
		ReviewerID: actorID,
		Decision:   decision,
		Comment:    strings.TrimSpace(comment),
	}
	updated, err := s.Repo.RecordReview(ctx, review, target)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrConflict):
			return nil, ErrNotReviewable
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrChangeNotFound
		}
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"change_id":   updated.ID,
		"reviewer_id": actorID,
		"decision":    decision,
	}).Info("change control reviewed")

	s.notifyRequester(ctx, updated, decision, actorID)
	return updated, nil
}

// notifyRequester queues the change_review email. Failures are logged only.
func (s *ChangeControlService) notifyRequester(ctx context.Context, c *entity.ChangeControl, decision entity.ReviewDecision, reviewerID string) {
	if s.Publisher == nil || s.Cfg == nil || !s.Cfg.NotifySendEnabled {
		return
	}
	log := s.Logger.WithField("change_id", c.ID)

	requester, err := s.Actors.GetByID(ctx, c.RequestedBy)
	if err != nil || requester == nil || requester.Email == "" {
		log.WithError(err).Warn("requester lookup failed; notification skipped")
		return
	}
	reviewer, err := s.Actors.GetByID(ctx, reviewerID)
	if err != nil {
		log.WithError(err).Debug("reviewer lookup failed")
		reviewer = nil
	}

	reviewedAt := time.Now()
	if c.ReviewedAt != nil {
		reviewedAt = *c.ReviewedAt
	}
	job := mailer.NotificationJob{
		To:       requester.Email,
		Template: templates.ChangeReview,
		Data: templates.NewChangeReviewData(s.Cfg, c, decision, requester, reviewer,
			templates.WithComment(c.ReviewComment),
			templates.WithReviewedAt(reviewedAt),
		),
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil {
		log.WithError(err).Error("publish change_review notification failed")
	}
}
