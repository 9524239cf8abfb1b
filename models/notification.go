package models

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Recipients selects which users a notification is addressed to.
type Recipients string

const (
	RecipientsAll      Recipients = "all"
	RecipientsActive   Recipients = "active"
	RecipientsInactive Recipients = "inactive"
)

type Notification struct {
	ID         string           `json:"_id" bson:"_id"`
	Title      string           `json:"title" bson:"title"`
	Message    string           `json:"message" bson:"message"`
	Type       NotificationType `json:"type" bson:"type"`
	Recipients Recipients       `json:"recipients" bson:"recipients"`
	Views      int              `json:"views" bson:"views"`
	CreatedAt  time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// NotificationCreatedEvent is published when an admin broadcasts a notification.
type NotificationCreatedEvent struct {
	EventType      string     `json:"event_type"`
	NotificationID string     `json:"notification_id"`
	Title          string     `json:"title"`
	Recipients     Recipients `json:"recipients"`
	Timestamp      time.Time  `json:"timestamp"`
}
