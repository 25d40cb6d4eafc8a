package app

import (
	"context"
	"fmt"
	"log"

	"github.com/realorfakerf/myblog/config"
	v1 "github.com/realorfakerf/myblog/internal/handlers/http/v1"
	"github.com/realorfakerf/myblog/internal/httpserver"
	"github.com/realorfakerf/myblog/internal/repository"
	"github.com/realorfakerf/myblog/internal/repository/inmemory"
	minrepo "github.com/realorfakerf/myblog/internal/repository/minio"
	"github.com/realorfakerf/myblog/internal/repository/postgres"
	"github.com/realorfakerf/myblog/internal/service"
)

func Run(conf config.Config) error {
	ctx := context.Background()

	var (
		repo  repository.Repository
		store repository.ObjectStore
		err   error
	)
	log.Printf("[SETUP] storage backend: %s", conf.App.Storage)
	switch conf.App.Storage {
	case "postgres":
		repo, err = postgres.New(conf.Postgres)
		if err != nil {
			return fmt.Errorf("error when setting up repository: %v", err)
		}
		store, err = minrepo.New(conf.MinIO)
		if err != nil {
			return fmt.Errorf("error when setting up object store: %v", err)
		}
	case "in-memory":
		repo = inmemory.New()
		store = inmemory.NewObjectStore(fmt.Sprintf("http://%v:%v/media", conf.BindAddress, conf.BindPort))
	default:
		return fmt.Errorf("unknown storage backend %q", conf.App.Storage)
	}

	auth := service.NewAuth(repo, conf.App.SessionTTL)
	blog := service.New(repo)
	media := service.NewMedia(store)

	// Session-change events are only logged here; the controller keeps the
	// subscription surface for consumers that need it.
	events := auth.Subscribe()
	defer auth.Unsubscribe(events)
	go func() {
		for event := range events {
			log.Printf("[AUTH] session %s for user %s", event.Type, event.UserID)
		}
	}()

	handler, err := v1.New(v1.Services{Auth: auth, Blog: blog, Media: media})
	if err != nil {
		return fmt.Errorf("error when setting up handler: %v", err)
	}

	server := httpserver.New(conf.HTTPServer, handler)

	return server.Run(ctx)
}
