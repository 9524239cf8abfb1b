package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
	"github.com/ixtiyorSaitov/e-commerce-admin/pkg/slug"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
)

const duplicateCategoryMsg = "Category with this name or slug already exists"

type CategoryService struct {
	categories repository.CategoryRepo
	products   repository.ProductRepo
	events     *EventPublisher
	metrics    CountRecorder
	logger     *zap.Logger
}

func NewCategoryService(categories repository.CategoryRepo, products repository.ProductRepo, events *EventPublisher, metrics CountRecorder, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.L()
	}
	return &CategoryService{categories: categories, products: products, events: events, metrics: metrics, logger: logger}
}

// CreateCategory inserts a category with an empty product list.
func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error) {
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	categorySlug := slug.Make(req.Name)
	if categorySlug == "" {
		return nil, apperrors.BadRequest("name must contain at least one letter or digit")
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        categorySlug,
		Icon:        req.Icon,
		Description: req.Description,
		Status:      req.Status,
		Products:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, storeError(err, "Category not found", duplicateCategoryMsg, "Failed to create category")
	}

	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("slug", category.Slug))
	s.events.catalog(ctx, models.EventCategoryCreated, category.ID, category.Slug, nil)
	return category, nil
}

// UpdateCategory replaces the editable fields. The slug follows the name and
// is left untouched when the name did not change.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, req CategoryRequest) (*models.Category, error) {
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Category not found", duplicateCategoryMsg, "Failed to load category")
	}

	if req.Name != category.Name {
		newSlug := slug.Make(req.Name)
		if newSlug == "" {
			return nil, apperrors.BadRequest("name must contain at least one letter or digit")
		}
		category.Slug = newSlug
	}
	category.Name = req.Name
	category.Icon = req.Icon
	category.Description = req.Description
	category.Status = req.Status
	category.UpdatedAt = time.Now().UTC()

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, storeError(err, "Category not found", duplicateCategoryMsg, "Failed to update category")
	}

	s.events.catalog(ctx, models.EventCategoryUpdated, category.ID, category.Slug, nil)
	return category, nil
}

// DeleteCategory removes the category after pulling its ID out of every
// product that references it.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Category not found", duplicateCategoryMsg, "Failed to load category")
	}

	modified, err := s.products.PullCategory(ctx, category.ID)
	if err != nil {
		return apperrors.Internal("Failed to detach category from products", err)
	}

	if err := s.categories.Delete(ctx, category.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Category not found")
		}
		return apperrors.Internal("Failed to delete category", err)
	}

	s.logger.Info("category deleted",
		zap.String("category_id", category.ID),
		zap.Int64("products_detached", modified),
	)
	recordCount(s.metrics, awspkg.MetricCategoriesDeleted, nil)
	s.events.catalog(ctx, models.EventCategoryDeleted, category.ID, category.Slug, nil)
	return nil
}

// ListCategories returns every category with its product count.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.CategorySummary, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch categories", err)
	}
	out := make([]models.CategorySummary, 0, len(categories))
	for i := range categories {
		out = append(out, categories[i].Summary())
	}
	return out, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Category not found", duplicateCategoryMsg, "Failed to load category")
	}
	return category, nil
}
