package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/internal/container"
	handlers "github.com/oksasatya/qms-core/internal/interface/http"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
	"github.com/oksasatya/qms-core/pkg/helpers"
)

type ComplaintModule struct {
	Handler *handlers.ComplaintHandler
	JWT     *helpers.JWTManager
}

func NewComplaintModule(h *handlers.ComplaintHandler, jwt *helpers.JWTManager) *ComplaintModule {
	return &ComplaintModule{Handler: h, JWT: jwt}
}

func (m *ComplaintModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	g := rg.Group("/complaints")
	g.Use(
		middleware.Auth(rdb, m.JWT),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByActorID(), nil),
	)
	{
		g.POST("", m.Handler.Create)
		g.GET("", m.Handler.List)
		g.GET("/search", middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil), m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.PATCH("/:id/status", m.Handler.UpdateStatus)
		g.POST("/:id/attachment", m.Handler.UploadAttachment)
	}
}
