package modules

import (
	"expvar"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/internal/container"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
)

var publishBackends sync.Once

// DebugModule serves expvar, including a "qms_backends" snapshot of which
// optional backends this process is wired to.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	publishBackends.Do(func() {
		expvar.Publish("qms_backends", expvar.Func(backendSnapshot))
	})
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}

func backendSnapshot() any {
	cfg := container.GetConfig()
	return map[string]any{
		"postgres":             container.GetPGPool() != nil,
		"redis":                container.GetRedis() != nil,
		"elasticsearch":        container.GetES() != nil,
		"gcs":                  container.GetGCS() != nil,
		"rabbitmq":             container.GetRabbitPub() != nil,
		"notify_send_enabled":  cfg.NotifySendEnabled,
		"authz_lookup_timeout": cfg.AuthzLookupTimeout.String(),
	}
}
