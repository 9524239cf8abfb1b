package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
)

const EventNotificationCreated = "notification.created"

type NotificationService struct {
	notifications repository.NotificationRepo
	events        *EventPublisher
	logger        *zap.Logger
}

func NewNotificationService(notifications repository.NotificationRepo, events *EventPublisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.L()
	}
	return &NotificationService{notifications: notifications, events: events, logger: logger}
}

// CreateNotification stores the notification and announces it so delivery
// to the selected recipients can happen downstream.
func (s *NotificationService) CreateNotification(ctx context.Context, req NotificationRequest) (*models.Notification, error) {
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	n := &models.Notification{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		Recipients: req.Recipients,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, apperrors.Internal("Failed to create notification", err)
	}

	s.events.publish(ctx, EventNotificationCreated, models.NotificationCreatedEvent{
		EventType:      EventNotificationCreated,
		NotificationID: n.ID,
		Title:          n.Title,
		Recipients:     n.Recipients,
		Timestamp:      now,
	})
	return n, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	out, err := s.notifications.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch notifications", err)
	}
	return out, nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, id string) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return storeError(err, "Notification not found", "", "Failed to delete notification")
	}
	return nil
}
