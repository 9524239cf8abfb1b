package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

// EventPublisher sends domain events to an SNS topic. Publishing is best
// effort: a failure is logged and never fails the request that caused it.
type EventPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
	logger   *zap.Logger
}

func NewEventPublisher(sns awspkg.SNSPublisher, topicArn string, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{sns: sns, topicArn: topicArn, logger: logger}
}

func (p *EventPublisher) enabled() bool {
	return p != nil && p.sns != nil && p.topicArn != ""
}

func (p *EventPublisher) publish(ctx context.Context, eventType string, payload any) {
	if !p.enabled() {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := p.sns.Publish(ctx, p.topicArn, body); err != nil {
		p.logger.Error("failed to publish event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	p.logger.Debug("event published", zap.String("event_type", eventType))
}

func (p *EventPublisher) catalog(ctx context.Context, eventType, entityID, slug string, categoryIDs []string) {
	p.publish(ctx, eventType, models.CatalogEvent{
		EventType:   eventType,
		EntityID:    entityID,
		Slug:        slug,
		CategoryIDs: categoryIDs,
		Timestamp:   time.Now().UTC(),
	})
}
