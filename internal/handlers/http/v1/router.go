package v1

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	gql "github.com/realorfakerf/myblog/internal/handlers/http/v1/graphql"
	"github.com/realorfakerf/myblog/internal/service"
)

type Services struct {
	Auth  *service.Auth
	Blog  *service.Service
	Media *service.Media
}

func New(svcs Services) (*gin.Engine, error) {
	var (
		router = gin.New()
	)

	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}))

	gqlHandler, err := gql.New(svcs.Blog)
	if err != nil {
		return nil, err
	}

	authHandler := newAuthHandler(svcs.Auth)
	mediaHandler := newMediaHandler(svcs.Media)

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.Use(gin.Logger())
		apiGroup.Use(resolveSession(svcs.Auth))

		apiGroup.GET("/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		apiGroup.POST("/auth/signup", authHandler.signUp)
		apiGroup.POST("/auth/signin", authHandler.signIn)
		apiGroup.POST("/auth/signout", authHandler.signOut)
		apiGroup.GET("/auth/me", requireAuth(), authHandler.me)

		apiGroup.POST("/media", requireAuth(), mediaHandler.upload)

		apiGroup.Any("/graphql", gin.WrapH(gqlHandler))
	}

	return router, nil
}
