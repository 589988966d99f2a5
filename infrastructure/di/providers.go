package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awssecretsmanager "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	appmigration "quizcore-backend/application/migration"
	"quizcore-backend/application/ports"
	"quizcore-backend/domain/migration"
	"quizcore-backend/infrastructure/bridge"
	"quizcore-backend/infrastructure/config"
	"quizcore-backend/infrastructure/messaging/eventbridge"
	"quizcore-backend/infrastructure/persistence/postgres"
	bridgehandler "quizcore-backend/interfaces/bridge"
	migratorhandler "quizcore-backend/interfaces/migrator"
	"quizcore-backend/migrations"
	"quizcore-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideSecretsManagerClient creates a Secrets Manager client
func ProvideSecretsManagerClient(awsCfg aws.Config) *awssecretsmanager.Client {
	return awssecretsmanager.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideLambdaClient creates a Lambda client
func ProvideLambdaClient(awsCfg aws.Config) *awslambda.Client {
	return awslambda.NewFromConfig(awsCfg)
}

// ProvideBridgeClient creates the caller-side bridge client, or nil when no
// bridge function is configured (the bridge's own container, for instance)
func ProvideBridgeClient(client *awslambda.Client, cfg *config.Config, logger *zap.Logger) *bridge.Client {
	if cfg.BridgeFunctionName == "" {
		return nil
	}
	invoker := bridge.NewLambdaInvoker(client, cfg.BridgeFunctionName)
	return bridge.NewClient(invoker, logger)
}

// ProvidePool opens the database connection pool, resolving credentials from
// Secrets Manager when configured. The cleanup closes the pool.
func ProvidePool(ctx context.Context, cfg *config.Config, secrets *awssecretsmanager.Client) (*pgxpool.Pool, func(), error) {
	dsn, err := postgres.ResolveDSN(ctx, cfg, secrets)
	if err != nil {
		return nil, nil, err
	}
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

// ProvideQueryExecutor creates the query executor
func ProvideQueryExecutor(pool *pgxpool.Pool, logger *zap.Logger) ports.QueryExecutor {
	return postgres.NewExecutor(pool, logger)
}

// ProvideLedger creates the migration ledger store
func ProvideLedger(exec ports.QueryExecutor, cfg *config.Config, logger *zap.Logger) ports.Ledger {
	return postgres.NewLedgerStore(exec, cfg.MigrationsTable, logger)
}

// ProvideCatalog loads the embedded migration catalog
func ProvideCatalog() (*migration.Catalog, error) {
	return migrations.Catalog()
}

// ProvideSchemaValidator creates the schema validator over the quiz checklist
func ProvideSchemaValidator(exec ports.QueryExecutor, logger *zap.Logger) *appmigration.SchemaValidator {
	return appmigration.NewSchemaValidator(exec, migrations.Checks(), logger)
}

// ProvideMetrics creates a metrics publisher, or nil when metrics are off
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	namespace := fmt.Sprintf("QuizCore/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates a tracer, or nil when tracing is off
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("quizcore")
}

// ProvideEventPublisher creates the deployment-event publisher, or nil when
// no event bus is configured
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideRunner creates the migration runner
func ProvideRunner(
	catalog *migration.Catalog,
	ledger ports.Ledger,
	exec ports.QueryExecutor,
	validator *appmigration.SchemaValidator,
	events ports.EventPublisher,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *appmigration.Runner {
	return appmigration.NewRunner(catalog, ledger, exec, validator, logger,
		appmigration.WithEventPublisher(events),
		appmigration.WithMetrics(metrics),
		appmigration.WithEnvironment(cfg.Environment),
		appmigration.WithFailOnDrift(cfg.FailOnDrift),
	)
}

// ProvideBridgeHandler creates the bridge Lambda handler
func ProvideBridgeHandler(
	exec ports.QueryExecutor,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bridgehandler.Handler {
	return bridgehandler.NewHandler(exec, tracer, metrics, logger)
}

// ProvideMigratorHandler creates the migration-runner Lambda handler
func ProvideMigratorHandler(runner *appmigration.Runner, logger *zap.Logger) *migratorhandler.Handler {
	return migratorhandler.NewHandler(runner, logger)
}
