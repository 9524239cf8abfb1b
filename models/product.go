package models

import "time"

type Product struct {
	ID          string    `json:"_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	OldPrice    *float64  `json:"oldPrice,omitempty" bson:"oldPrice,omitempty"`
	Slug        string    `json:"slug" bson:"slug"`
	Images      []string  `json:"images" bson:"images"`
	Categories  []string  `json:"categories" bson:"categories"`
	Benefits    []string  `json:"benefits" bson:"benefits"`
	IsOriginal  bool      `json:"isOriginal" bson:"isOriginal"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PopulatedProduct is a product whose category IDs have been replaced by the
// category documents they reference.
type PopulatedProduct struct {
	Product
	Categories []CategorySummary `json:"categories"`
}

// ProductFilter narrows a product listing. Empty fields do not filter.
type ProductFilter struct {
	CategoryID string
	Slug       string
}
