package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"myblog/internal/domain"
)

const (
	sessionCookie = "user"
	actorKey      = "actor"
)

// identity resolves the session cookie once per request and stores the actor on the context.
func (h *Handler) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(sessionCookie)
		if err != nil {
			c.Next()
			return
		}
		user, err := h.guard.ResolveIdentity(c.Request.Context(), value)
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		if user != nil {
			c.Set(actorKey, user)
		}
		c.Next()
	}
}

// actor returns nil for anonymous requests.
func actor(c *gin.Context) *domain.User {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func accessLog(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"client":  c.ClientIP(),
		}
		if user := actor(c); user != nil {
			fields["user"] = user.Username
		}
		entry := logger.WithFields(fields)
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Info("request")
	}
}

func setSession(c *gin.Context, value string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge.Seconds())
		cookie.Expires = time.Now().Add(maxAge)
	}
	// gin's SetCookie query-escapes the value, which would mangle the '|' separator.
	http.SetCookie(c.Writer, cookie)
}

func clearSession(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
