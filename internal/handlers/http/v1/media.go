package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/realorfakerf/myblog/internal/service"
)

type mediaHandler struct {
	media *service.Media
}

func newMediaHandler(media *service.Media) *mediaHandler {
	return &mediaHandler{media: media}
}

func (h *mediaHandler) upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	url, err := h.media.Upload(
		c.Request.Context(),
		service.ViewerID(c.Request.Context()),
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
