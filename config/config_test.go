package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTHZ_LOOKUP_TIMEOUT", "")
	t.Setenv("DB_NAME", "")
	cfg := Load()
	assert.Equal(t, "qms", cfg.DBName)
	assert.Equal(t, 3*time.Second, cfg.AuthzLookupTimeout)
	assert.Equal(t, "qms.notifications", cfg.RabbitMQNotifyQueue)
	assert.True(t, cfg.NotifySendEnabled)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("AUTHZ_LOOKUP_TIMEOUT", "soon")
	t.Setenv("COOKIE_SECURE", "maybe")
	t.Setenv("REDIS_DB", "two")
	cfg := Load()
	assert.Equal(t, 3*time.Second, cfg.AuthzLookupTimeout)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestConfig_Lists(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test ", ElasticsearchAddrs: ""}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}

func TestConfig_PostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "qms", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/qms?sslmode=disable", cfg.PostgresDSN())
}

func TestConfig_NotifyLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{NotifyTimezone: "Nowhere/Atlantis"}).NotifyLocation())
}
