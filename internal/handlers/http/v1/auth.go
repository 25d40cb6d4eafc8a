package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/realorfakerf/myblog/internal/service"
)

type authHandler struct {
	auth *service.Auth
}

func newAuthHandler(auth *service.Auth) *authHandler {
	return &authHandler{auth: auth}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, viewer, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"profile": viewer.Profile,
	})
}

func (h *authHandler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, viewer, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"profile": viewer.Profile,
	})
}

func (h *authHandler) signOut(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(sessionCookie); err == nil {
			token = cookie
		}
	}
	if token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *authHandler) me(c *gin.Context) {
	viewer := service.ViewerFrom(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"profile": viewer.Profile})
}
