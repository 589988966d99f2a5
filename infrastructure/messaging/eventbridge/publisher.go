// Package eventbridge publishes migration outcomes to the deployment
// pipeline's event bus.
package eventbridge

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"quizcore-backend/application/ports"
	"quizcore-backend/domain/migration"
)

const source = "quizcore.migrations"

// Publisher implements the EventPublisher port using AWS EventBridge.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates an EventBridge publisher for the given bus.
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// PublishMigrationEvent sends one apply-run summary to the bus.
func (p *Publisher) PublishMigrationEvent(ctx context.Context, event migration.Event) error {
	detail, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal migration event",
			zap.Error(err),
			zap.String("eventType", event.Type),
		)
		return err
	}

	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(source),
		DetailType:   aws.String(event.Type),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(event.Timestamp),
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		p.logger.Error("failed to publish migration event", zap.Error(err))
		return err
	}
	if out.FailedEntryCount > 0 {
		p.logger.Warn("migration event was not accepted by the bus",
			zap.Int32("failed_entries", out.FailedEntryCount),
		)
	}

	p.logger.Info("migration event published",
		zap.String("eventType", event.Type),
		zap.Int("applied_count", event.AppliedCount),
	)

	return nil
}
