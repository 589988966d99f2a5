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

var (
	container *di.Container

	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Migration runner cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, _, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	container.Logger.Info("migration runner cold start complete",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("environment", cfg.Environment),
		zap.Int("catalog_size", container.Catalog.Len()),
	)
}

func main() {
	lambda.Start(container.MigratorHandler.Handle)
}
