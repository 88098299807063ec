package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/qms-core/internal/application"
	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/presentation"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
	"github.com/oksasatya/qms-core/pkg/response"
	"github.com/oksasatya/qms-core/pkg/validation"
)

type ChangeControlHandler struct {
	Svc    *application.ChangeControlService
	Gate   application.PermissionChecker
	Logger *logrus.Logger
}

func NewChangeControlHandler(svc *application.ChangeControlService, gate application.PermissionChecker, logger *logrus.Logger) *ChangeControlHandler {
	return &ChangeControlHandler{Svc: svc, Gate: gate, Logger: logger}
}

type createChangeRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Draft       bool   `json:"draft"`
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required,decision"`
	Comment  string `json:"comment" binding:"max=2000"`
}

type changeDTO struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         string                `json:"status"`
	StatusCategory presentation.Category `json:"status_category"`
	RequestedBy    string                `json:"requested_by"`
	ReviewedBy     string                `json:"reviewed_by,omitempty"`
	ReviewComment  string                `json:"review_comment,omitempty"`
	ReviewedAt     *time.Time            `json:"reviewed_at,omitempty"`
	CanReview      bool                  `json:"can_review"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func toChangeDTO(c entity.ChangeControl, perm entity.ReviewPermission) changeDTO {
	return changeDTO{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Status:         string(c.Status),
		StatusCategory: presentation.MapFor(presentation.KindChangeControl, string(c.Status), "", false).Category,
		RequestedBy:    c.RequestedBy,
		ReviewedBy:     c.ReviewedBy,
		ReviewComment:  c.ReviewComment,
		ReviewedAt:     c.ReviewedAt,
		CanReview:      perm.CanReview && c.Reviewable(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// permission never fails the request; a failed lookup only hides the review action.
func (h *ChangeControlHandler) permission(c *gin.Context) entity.ReviewPermission {
	perm, _ := h.Gate.CheckReviewPermission(c.Request.Context(), middleware.ActorID(c))
	return perm
}

func (h *ChangeControlHandler) Create(c *gin.Context) {
	var req createChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cc, err := h.Svc.Create(c.Request.Context(), middleware.ActorID(c), application.CreateChangeInput{
		Title:       req.Title,
		Description: req.Description,
		Draft:       req.Draft,
	})
	if err != nil {
		h.fail(c, err, "failed to create change control")
		return
	}
	response.Success(c, http.StatusCreated, toChangeDTO(*cc, h.permission(c)), "change control created", nil)
}

func (h *ChangeControlHandler) List(c *gin.Context) {
	var status entity.ChangeStatus
	if raw := c.Query("status"); raw != "" {
		st, ok := entity.ParseChangeStatus(raw)
		if !ok {
			response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"status": "unknown change status"})
			return
		}
		status = st
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	rows, err := h.Svc.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list change controls")
		return
	}
	perm := h.permission(c)
	out := make([]changeDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toChangeDTO(r, perm))
	}
	response.Success(c, http.StatusOK, out, "change controls", gin.H{"count": len(out), "can_review": perm.CanReview})
}

func (h *ChangeControlHandler) Get(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	cc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load change control")
		return
	}
	response.Success(c, http.StatusOK, toChangeDTO(*cc, h.permission(c)), "change control", nil)
}

// Review POST /api/change-controls/:id/review {decision, comment}
func (h *ChangeControlHandler) Review(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cc, err := h.Svc.Review(c.Request.Context(), middleware.ActorID(c), id, entity.ReviewDecision(req.Decision), req.Comment)
	if err != nil {
		h.fail(c, err, "failed to record review")
		return
	}
	// a recorded decision leaves nothing further to review
	response.Success(c, http.StatusOK, toChangeDTO(*cc, entity.ReviewPermission{}), "review recorded", nil)
}

func (h *ChangeControlHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, application.ErrInvalidDecision):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"decision": "must be approve or reject"})
	case errors.Is(err, application.ErrReviewForbidden):
		if errors.Is(err, application.ErrLookup) {
			h.Logger.WithError(err).WithField("actor_id", middleware.ActorID(c)).Debug("review denied on lookup failure")
		}
		response.Error[any](c, http.StatusForbidden, "not allowed to review change controls", nil)
	case errors.Is(err, application.ErrChangeNotFound):
		response.Error[any](c, http.StatusNotFound, "change control not found", nil)
	case errors.Is(err, application.ErrNotReviewable):
		response.Error[any](c, http.StatusConflict, "change control is not pending review", nil)
	default:
		h.Logger.WithError(err).Error(msg)
		response.Error[any](c, http.StatusInternalServerError, msg, nil)
	}
}
