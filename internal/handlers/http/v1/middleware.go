package v1

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/realorfakerf/myblog/internal/service"
)

const sessionCookie = "session"

// resolveSession turns a bearer token or session cookie into a viewer on
// the request context. Anonymous requests pass through untouched.
func resolveSession(auth *service.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.Next()
			return
		}

		viewer, err := auth.Current(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				log.Printf("[AUTH] resolving session: %v", err)
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(service.WithViewer(c.Request.Context(), viewer))
		c.Next()
	}
}

// requireAuth gates a route on a resolved viewer.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if service.ViewerFrom(c.Request.Context()) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
