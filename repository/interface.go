package repository

import (
	"context"
	"errors"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// CategoryRepo stores categories and their product back-references.
// AddProduct and RemoveProduct are idempotent and succeed silently when the
// category does not exist.
type CategoryRepo interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	// Update writes the editable fields (name, slug, icon, description,
	// status, updatedAt); the products list is left alone.
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	AddProduct(ctx context.Context, categoryID, productID string) error
	RemoveProduct(ctx context.Context, categoryID, productID string) error
}

// ProductRepo stores products.
type ProductRepo interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// Find returns matching products, newest first.
	Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Replace(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// PullCategory removes categoryID from every product referencing it and
	// reports how many products were modified.
	PullCategory(ctx context.Context, categoryID string) (int64, error)
}

type UserRepo interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// Update writes name, email, status and updatedAt.
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type AdminRepo interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, n *models.Notification) error
	FindAll(ctx context.Context) ([]models.Notification, error)
	Delete(ctx context.Context, id string) error
}

type PromocodeRepo interface {
	Create(ctx context.Context, p *models.Promocode) error
	FindAll(ctx context.Context) ([]models.Promocode, error)
	FindByKey(ctx context.Context, key string) (*models.Promocode, error)
	Delete(ctx context.Context, id string) error
}
