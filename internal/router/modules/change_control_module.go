package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/internal/container"
	handlers "github.com/oksasatya/qms-core/internal/interface/http"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
	"github.com/oksasatya/qms-core/pkg/helpers"
)

// ChangeControlModule wires change-control routes and the review-permission query.
// GET /api/change-controls/review-permission accepts anonymous callers.
type ChangeControlModule struct {
	Handler *handlers.ChangeControlHandler
	Authz   *handlers.AuthorizationHandler
	JWT     *helpers.JWTManager
}

func NewChangeControlModule(h *handlers.ChangeControlHandler, authz *handlers.AuthorizationHandler, jwt *helpers.JWTManager) *ChangeControlModule {
	return &ChangeControlModule{Handler: h, Authz: authz, JWT: jwt}
}

func (m *ChangeControlModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	rg.GET("/change-controls/review-permission",
		middleware.OptionalAuth(rdb, m.JWT),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByActorID(), nil),
		m.Authz.ReviewPermission,
	)

	g := rg.Group("/change-controls")
	g.Use(
		middleware.Auth(rdb, m.JWT),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByActorID(), nil),
	)
	{
		g.POST("", m.Handler.Create)
		g.GET("", m.Handler.List)
		g.GET("/:id", m.Handler.Get)
		g.POST("/:id/review", middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByActorID(), nil), m.Handler.Review)
	}
}
