//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"quizcore-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideSecretsManagerClient,
	ProvideCloudWatchClient,
	ProvideEventBridgeClient,
	ProvideLambdaClient,
	ProvideBridgeClient,
	ProvidePool,
	ProvideQueryExecutor,
	ProvideLedger,
	ProvideCatalog,
	ProvideSchemaValidator,
	ProvideMetrics,
	ProvideTracer,
	ProvideEventPublisher,
	ProvideRunner,
	ProvideBridgeHandler,
	ProvideMigratorHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup closes the
// database pool.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
