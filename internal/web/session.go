package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookie = "chat_session"

const ctxSessionKey = "session_id"

// SessionMiddleware pins each browser to one conversation controller via
// an opaque cookie. The cookie carries no identity; authentication is
// delegated to the identity provider in front of this service.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(ctxSessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	if id, ok := c.Get(ctxSessionKey); ok {
		return id.(string)
	}
	return ""
}
