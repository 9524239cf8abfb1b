package models

import "time"

// Catalog event types published after a successful mutation.
const (
	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventCategoryDeleted = "category.deleted"
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
)

type CatalogEvent struct {
	EventType   string    `json:"event_type"`
	EntityID    string    `json:"entity_id"`
	Slug        string    `json:"slug,omitempty"`
	CategoryIDs []string  `json:"category_ids,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
