package v1

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/realorfakerf/myblog/internal/repository"
	"github.com/realorfakerf/myblog/internal/service"
)

// respondError maps domain errors onto HTTP statuses. Anything unmapped
// is logged server-side and reported as a generic failure.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err), errors.Is(err, service.ErrReplyDepth):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, service.ErrNoPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "no permission"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, repository.ErrBucketNotFound):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage bucket is not configured"})
	default:
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
