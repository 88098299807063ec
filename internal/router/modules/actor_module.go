package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/internal/container"
	handlers "github.com/oksasatya/qms-core/internal/interface/http"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
	"github.com/oksasatya/qms-core/pkg/helpers"
)

// ActorModule wires session and profile routes.
// Public: POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET /api/profile, PUT /api/profile
type ActorModule struct {
	Handler *handlers.ActorHandler
	JWT     *helpers.JWTManager
}

func NewActorModule(h *handlers.ActorHandler, jwt *helpers.JWTManager) *ActorModule {
	return &ActorModule{Handler: h, JWT: jwt}
}

func (m *ActorModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(
		middleware.Auth(rdb, m.JWT),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByActorID(), nil),
	)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
	}
}
