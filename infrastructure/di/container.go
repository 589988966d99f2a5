package di

import (
	"go.uber.org/zap"

	appmigration "quizcore-backend/application/migration"
	"quizcore-backend/application/ports"
	"quizcore-backend/domain/migration"
	"quizcore-backend/infrastructure/bridge"
	"quizcore-backend/infrastructure/config"
	bridgehandler "quizcore-backend/interfaces/bridge"
	migratorhandler "quizcore-backend/interfaces/migrator"
	"quizcore-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Executor        ports.QueryExecutor
	Ledger          ports.Ledger
	Catalog         *migration.Catalog
	Runner          *appmigration.Runner
	Validator       *appmigration.SchemaValidator
	BridgeClient    *bridge.Client
	EventPublisher  ports.EventPublisher
	Metrics         *observability.Metrics
	Tracer          *observability.Tracer
	BridgeHandler   *bridgehandler.Handler
	MigratorHandler *migratorhandler.Handler
}
