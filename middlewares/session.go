package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formationdesk/backend/session"
)

// SessionKey is the gin context key holding the wizard session id.
const SessionKey = "session_id"

// Session resolves the intake_session cookie to a session id. Requests
// without a valid cookie are rejected.
func Session(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(session.CookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no intake in progress"})
			return
		}
		id, err := session.ParseToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(SessionKey, id)
		c.Next()
	}
}

// OptionalSession is Session without the rejection; used on the payment
// return URL, which must work even when the cookie is gone.
func OptionalSession(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(session.CookieName); err == nil && raw != "" {
			if id, err := session.ParseToken(secret, raw); err == nil {
				c.Set(SessionKey, id)
			}
		}
		c.Next()
	}
}
