package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/internal/application"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
	"github.com/oksasatya/qms-core/pkg/response"
)

// AuthorizationHandler exposes the review-permission answer to the front-end shell.
type AuthorizationHandler struct {
	Gate application.PermissionChecker
}

func NewAuthorizationHandler(gate application.PermissionChecker) *AuthorizationHandler {
	return &AuthorizationHandler{Gate: gate}
}

// ReviewPermission GET /api/change-controls/review-permission
//
// Anonymous callers and failed lookups both get can_review=false with 200;
// the shell hides the review entry point and nothing else changes.
// The gate logs lookup failures.
func (h *AuthorizationHandler) ReviewPermission(c *gin.Context) {
	perm, _ := h.Gate.CheckReviewPermission(c.Request.Context(), middleware.ActorID(c))
	response.Success(c, http.StatusOK, perm, "review permission", nil)
}
