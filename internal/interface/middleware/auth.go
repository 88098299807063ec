package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/qms-core/pkg/helpers"
	"github.com/oksasatya/qms-core/pkg/response"
)

// Gin context keys set by Auth and OptionalAuth.
const (
	CtxActorIDKey    = "actorID"
	CtxActorNameKey  = "actorName"
	CtxActorEmailKey = "actorEmail"
)

// ActorID returns the authenticated actor id, or "" for an anonymous request.
func ActorID(c *gin.Context) string {
	return c.GetString(CtxActorIDKey)
}

// Auth validates the access token and ensures the session it names is still active in Redis.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}
		data, ok := activeSession(c, rdb, claims)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}
		setActor(c, claims.ActorID, data)
		c.Next()
	}
}

// OptionalAuth resolves the actor when a valid session is presented and
// otherwise lets the request through anonymously.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err == nil && token != "" {
			if claims, err := jwt.ParseAccessToken(token); err == nil {
				if data, ok := activeSession(c, rdb, claims); ok {
					setActor(c, claims.ActorID, data)
				}
			}
		}
		c.Next()
	}
}

// activeSession reports false when no session store is configured.
func activeSession(c *gin.Context, rdb *redis.Client, claims *helpers.Claims) (map[string]string, bool) {
	if rdb == nil {
		return nil, false
	}
	data, err := rdb.HGetAll(c.Request.Context(), helpers.SessionKey(claims.ActorID)).Result()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	if sid := data["sid"]; sid != "" && sid != claims.SessionID {
		return nil, false
	}
	return data, true
}

func setActor(c *gin.Context, actorID string, session map[string]string) {
	c.Set(CtxActorIDKey, actorID)
	c.Set(CtxActorNameKey, session["name"])
	c.Set(CtxActorEmailKey, session["email"])
}
