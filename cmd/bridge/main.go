package main

import (
	"context"
	"log"
	"time"

	"quizcore-backend/infrastructure/config"
	"quizcore-backend/infrastructure/di"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// Global variables for Lambda lifecycle management
var (
	// container holds the dependency injection container
	container *di.Container

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Bridge Lambda cold start initiated")

	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container. The cleanup is intentionally not
	// called: the pool lives for the lifetime of the execution environment.
	container, _, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	container.Logger.Info("bridge cold start complete",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("environment", cfg.Environment),
	)
}

func main() {
	lambda.Start(container.BridgeHandler.Handle)
}
