package models

import "time"

// CategoryStatus is the publication state of a category.
type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

// Category is a catalog grouping. Products holds the IDs of every product whose
// Categories list contains this category's ID; it is maintained by the catalog
// services, not by the store.
type Category struct {
	ID          string         `json:"_id" bson:"_id"`
	Name        string         `json:"name" bson:"name"`
	Slug        string         `json:"slug" bson:"slug"`
	Icon        string         `json:"icon" bson:"icon"`
	Description string         `json:"description" bson:"description"`
	Status      CategoryStatus `json:"status" bson:"status"`
	Products    []string       `json:"products" bson:"products"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// CategorySummary is the list view of a category: the back-reference list is
// replaced by its size.
type CategorySummary struct {
	ID           string         `json:"_id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	Icon         string         `json:"icon"`
	Description  string         `json:"description"`
	Status       CategoryStatus `json:"status"`
	ProductCount int            `json:"productCount"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (c *Category) Summary() CategorySummary {
	return CategorySummary{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Icon:         c.Icon,
		Description:  c.Description,
		Status:       c.Status,
		ProductCount: len(c.Products),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
