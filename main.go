package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stringcalc/internal/config"
	"stringcalc/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("String Calculator starting on :%s (peer %s)", appConfig.Server.Port, appConfig.Peer.URL)
	runErr := c.Run(ctx)
	if err := c.Close(); err != nil {
		log.Printf("Failed to close peer connection: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Application stopped with error: %v", runErr)
	}
	log.Println("Application stopped")
}
