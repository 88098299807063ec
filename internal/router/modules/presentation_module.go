package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/internal/container"
	handlers "github.com/oksasatya/qms-core/internal/interface/http"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
)

type PresentationModule struct {
	Handler *handlers.PresentationHandler
}

func NewPresentationModule(h *handlers.PresentationHandler) *PresentationModule {
	return &PresentationModule{Handler: h}
}

func (m *PresentationModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 600, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/presentation/category", rl, m.Handler.Category)
}
