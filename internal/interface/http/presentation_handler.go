package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/internal/domain/presentation"
	"github.com/oksasatya/qms-core/pkg/response"
)

type PresentationHandler struct{}

func NewPresentationHandler() *PresentationHandler { return &PresentationHandler{} }

type categoryResponse struct {
	Category presentation.Category `json:"category"`
	Label    string                `json:"label"`
	Render   bool                  `json:"render"`
}

// Category GET /api/presentation/category?kind=&status=&severity=&show_label=
func (h *PresentationHandler) Category(c *gin.Context) {
	kind := presentation.KindComplaint
	if raw := c.Query("kind"); raw != "" {
		k, ok := presentation.ParseKind(raw)
		if !ok {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"kind": "must be one of complaint, change_control, risk, audit"})
			return
		}
		kind = k
	}
	showLabel := false
	if raw := c.Query("show_label"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"show_label": "must be a boolean"})
			return
		}
		showLabel = b
	}

	res := presentation.MapFor(kind, c.Query("status"), c.Query("severity"), showLabel)
	response.Success(c, http.StatusOK, categoryResponse{Category: res.Category, Label: res.Label, Render: !res.Empty()}, "category", nil)
}
