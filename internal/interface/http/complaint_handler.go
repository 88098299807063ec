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
	repo "github.com/oksasatya/qms-core/internal/domain/repository"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
	"github.com/oksasatya/qms-core/pkg/response"
	"github.com/oksasatya/qms-core/pkg/validation"
)

const maxAttachmentBytes = 10 << 20

type ComplaintHandler struct {
	Svc    *application.ComplaintService
	Logger *logrus.Logger
}

func NewComplaintHandler(svc *application.ComplaintService, logger *logrus.Logger) *ComplaintHandler {
	return &ComplaintHandler{Svc: svc, Logger: logger}
}

type createComplaintRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Severity    string `json:"severity" binding:"required,severity"`
}

type updateComplaintStatusRequest struct {
	Status string `json:"status" binding:"required,complaintstatus"`
}

type listComplaintsQuery struct {
	Status   string `form:"status" binding:"omitempty,complaintstatus"`
	Severity string `form:"severity" binding:"omitempty,severity"`
	Limit    int    `form:"limit" binding:"omitempty,gte=1,lte=100"`
	Offset   int    `form:"offset" binding:"omitempty,gte=0"`
}

type complaintDTO struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Status           string                `json:"status"`
	StatusCategory   presentation.Category `json:"status_category"`
	StatusLabel      string                `json:"status_label"`
	Severity         string                `json:"severity"`
	SeverityCategory presentation.Category `json:"severity_category"`
	SeverityLabel    string                `json:"severity_label"`
	ReportedBy       string                `json:"reported_by"`
	AttachmentURL    string                `json:"attachment_url,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func toComplaintDTO(v application.ComplaintView) complaintDTO {
	return complaintDTO{
		ID:               v.ID,
		Title:            v.Title,
		Description:      v.Description,
		Status:           string(v.Status),
		StatusCategory:   v.StatusBadge.Category,
		StatusLabel:      v.StatusBadge.Label,
		Severity:         string(v.Severity),
		SeverityCategory: v.SeverityBadge.Category,
		SeverityLabel:    v.SeverityBadge.Label,
		ReportedBy:       v.ReportedBy,
		AttachmentURL:    v.AttachmentURL,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func (h *ComplaintHandler) Create(c *gin.Context) {
	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	v, err := h.Svc.Create(c.Request.Context(), middleware.ActorID(c), application.CreateComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    entity.Severity(req.Severity),
	})
	if err != nil {
		h.fail(c, err, "failed to create complaint")
		return
	}
	response.Success(c, http.StatusCreated, toComplaintDTO(*v), "complaint created", nil)
}

func (h *ComplaintHandler) List(c *gin.Context) {
	var q listComplaintsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	rows, err := h.Svc.List(c.Request.Context(), repo.ComplaintFilter{
		Status:   entity.ComplaintStatus(q.Status),
		Severity: entity.Severity(q.Severity),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		h.fail(c, err, "failed to list complaints")
		return
	}
	out := make([]complaintDTO, 0, len(rows))
	for _, v := range rows {
		out = append(out, toComplaintDTO(v))
	}
	response.Success(c, http.StatusOK, out, "complaints", gin.H{"count": len(out)})
}

func (h *ComplaintHandler) Get(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	v, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load complaint")
		return
	}
	response.Success(c, http.StatusOK, toComplaintDTO(*v), "complaint", nil)
}

func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	var req updateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	v, err := h.Svc.UpdateStatus(c.Request.Context(), id, entity.ComplaintStatus(req.Status))
	if err != nil {
		h.fail(c, err, "failed to update complaint")
		return
	}
	response.Success(c, http.StatusOK, toComplaintDTO(*v), "complaint updated", nil)
}

// Search GET /api/complaints/search?q=&size=
func (h *ComplaintHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("complaint search failed")
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

// UploadAttachment POST /api/complaints/:id/attachment (multipart field "file")
func (h *ComplaintHandler) UploadAttachment(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAttachmentBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "unreadable"})
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := h.Svc.UploadAttachment(c.Request.Context(), id, f, fh.Filename, contentType)
	if err != nil {
		h.fail(c, err, "failed to upload attachment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attachment_url": url}, "attachment uploaded", nil)
}

func (h *ComplaintHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, application.ErrComplaintNotFound):
		response.Error[any](c, http.StatusNotFound, "complaint not found", nil)
	case errors.Is(err, application.ErrStorageDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "attachment storage unavailable", nil)
	default:
		h.Logger.WithError(err).Error(msg)
		response.Error[any](c, http.StatusInternalServerError, msg, nil)
	}
}
