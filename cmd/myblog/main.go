package main

import (
	"log"

	"github.com/realorfakerf/myblog/config"
	"github.com/realorfakerf/myblog/internal/app"
)

func main() {
	conf, err := config.New(".env")
	if err != nil {
		log.Fatalf("[SETUP ERROR] error when reading config: %v", err)
	}

	if err := app.Run(*conf); err != nil {
		log.Fatalf("[APPLICATION ERROR] error: %v", err)
	}

	log.Println("[SHUTDOWN] service shut down gracefully")
}
