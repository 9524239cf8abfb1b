package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
	"github.com/ixtiyorSaitov/e-commerce-admin/pkg/slug"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
)

const duplicateProductMsg = "Product with this slug already exists"

type ProductService struct {
	products   repository.ProductRepo
	categories repository.CategoryRepo
	backrefs   *BackrefSyncer
	events     *EventPublisher
	metrics    CountRecorder
	logger     *zap.Logger
}

func NewProductService(products repository.ProductRepo, categories repository.CategoryRepo, backrefs *BackrefSyncer, events *EventPublisher, metrics CountRecorder, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.L()
	}
	return &ProductService{
		products:   products,
		categories: categories,
		backrefs:   backrefs,
		events:     events,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateProduct inserts the product and then adds its ID to every category it
// references.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	if err := s.requireCategories(ctx, req.Categories); err != nil {
		return nil, err
	}

	productSlug := slug.Make(req.Name)
	if productSlug == "" {
		return nil, apperrors.BadRequest("name must contain at least one letter or digit")
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:        uuid.New().String(),
		Slug:      productSlug,
		CreatedAt: now,
	}
	applyProductRequest(product, req, now)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, storeError(err, "Product not found", duplicateProductMsg, "Failed to create product")
	}

	if err := s.backrefs.Sync(ctx, addJobs(product.ID, product.Categories)); err != nil {
		return nil, apperrors.Internal("Product created but linking it to its categories failed", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("slug", product.Slug),
		zap.Strings("categories", product.Categories),
	)
	recordCount(s.metrics, awspkg.MetricProductsCreated, nil)
	s.events.catalog(ctx, models.EventProductCreated, product.ID, product.Slug, product.Categories)
	return product, nil
}

// UpdateProduct overwrites the product and reconciles category
// back-references against the difference between the old and new category
// sets. Category IDs that no longer resolve are dropped from the product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*models.Product, error) {
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Product not found", duplicateProductMsg, "Failed to load product")
	}

	oldIDs := models.UniqueIDs(product.Categories)
	newIDs := req.Categories
	added := models.SubtractIDs(newIDs, oldIDs)
	removed := models.SubtractIDs(oldIDs, newIDs)

	if err := s.requireCategories(ctx, added); err != nil {
		return nil, err
	}

	if req.Name != product.Name {
		newSlug := slug.Make(req.Name)
		if newSlug == "" {
			return nil, apperrors.BadRequest("name must contain at least one letter or digit")
		}
		product.Slug = newSlug
	}

	// added was verified above but may have been deleted since
	dangling, err := s.missingCategories(ctx, models.UniqueIDs(append(append([]string{}, newIDs...), removed...)))
	if err != nil {
		return nil, apperrors.Internal("Failed to verify product categories", err)
	}
	if len(dangling) > 0 {
		s.logger.Info("dropping dangling category references",
			zap.String("product_id", product.ID),
			zap.Strings("categories", dangling),
		)
	}

	now := time.Now().UTC()
	applyProductRequest(product, req, now)
	product.Categories = models.SubtractIDs(newIDs, dangling)

	if err := s.products.Replace(ctx, product); err != nil {
		return nil, storeError(err, "Product not found", duplicateProductMsg, "Failed to update product")
	}

	jobs := append(addJobs(product.ID, models.SubtractIDs(added, dangling)), removeJobs(product.ID, models.SubtractIDs(removed, dangling))...)
	if err := s.backrefs.Sync(ctx, jobs); err != nil {
		return nil, apperrors.Internal("Product updated but syncing its categories failed", err)
	}

	s.logger.Info("product updated",
		zap.String("product_id", product.ID),
		zap.Int("categories_added", len(added)),
		zap.Int("categories_removed", len(removed)),
	)
	s.events.catalog(ctx, models.EventProductUpdated, product.ID, product.Slug, product.Categories)
	return product, nil
}

// DeleteProduct removes the product and pulls its ID from every category it
// was listed in.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Product not found", duplicateProductMsg, "Failed to load product")
	}

	if err := s.products.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Product not found")
		}
		return apperrors.Internal("Failed to delete product", err)
	}

	if err := s.backrefs.Sync(ctx, removeJobs(product.ID, models.UniqueIDs(product.Categories))); err != nil {
		return apperrors.Internal("Product deleted but unlinking it from its categories failed", err)
	}

	s.logger.Info("product deleted", zap.String("product_id", product.ID))
	s.events.catalog(ctx, models.EventProductDeleted, product.ID, product.Slug, product.Categories)
	return nil
}

// ListProducts returns products newest first. An unknown category slug
// matches nothing.
func (s *ProductService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	filter := models.ProductFilter{Slug: strings.TrimSpace(q.Slug)}

	if categorySlug := strings.TrimSpace(q.CategorySlug); categorySlug != "" {
		category, err := s.categories.FindBySlug(ctx, categorySlug)
		if errors.Is(err, repository.ErrNotFound) {
			return []models.Product{}, nil
		}
		if err != nil {
			return nil, apperrors.Internal("Failed to resolve category", err)
		}
		filter.CategoryID = category.ID
	}

	products, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch products", err)
	}
	return products, nil
}

// PopulateProducts swaps category IDs for category summaries. References to
// categories that no longer exist are left out.
func (s *ProductService) PopulateProducts(ctx context.Context, products []models.Product) ([]models.PopulatedProduct, error) {
	var ids []string
	for i := range products {
		ids = append(ids, products[i].Categories...)
	}
	ids = models.UniqueIDs(ids)

	byID := make(map[string]models.CategorySummary, len(ids))
	if len(ids) > 0 {
		categories, err := s.categories.FindByIDs(ctx, ids)
		if err != nil {
			return nil, apperrors.Internal("Failed to fetch product categories", err)
		}
		for i := range categories {
			byID[categories[i].ID] = categories[i].Summary()
		}
	}

	out := make([]models.PopulatedProduct, 0, len(products))
	for _, p := range products {
		summaries := make([]models.CategorySummary, 0, len(p.Categories))
		for _, id := range p.Categories {
			if c, ok := byID[id]; ok {
				summaries = append(summaries, c)
			}
		}
		out = append(out, models.PopulatedProduct{Product: p, Categories: summaries})
	}
	return out, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Product not found", duplicateProductMsg, "Failed to load product")
	}
	return product, nil
}

// requireCategories rejects the request when any of ids is not a category.
func (s *ProductService) requireCategories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return apperrors.Internal("Failed to verify categories", err)
	}
	known := models.NewIDSet()
	for i := range found {
		known.Add(found[i].ID)
	}
	var unknown []string
	for _, id := range ids {
		if !known.Has(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return apperrors.BadRequest(fmt.Sprintf("Unknown categories: %s", strings.Join(unknown, ", ")))
	}
	return nil
}

// missingCategories checks every id concurrently and returns those that do
// not exist, in input order.
func (s *ProductService) missingCategories(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	exists := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFanout)
	for i, id := range ids {
		g.Go(func() error {
			ok, err := s.categories.Exists(gctx, id)
			if err != nil {
				return fmt.Errorf("category %s: %w", id, err)
			}
			exists[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []string
	for i, ok := range exists {
		if !ok {
			missing = append(missing, ids[i])
		}
	}
	return missing, nil
}

func applyProductRequest(p *models.Product, req ProductRequest, now time.Time) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = *req.Price
	p.OldPrice = req.OldPrice
	p.Images = req.Images
	p.Benefits = req.Benefits
	p.Categories = req.Categories
	p.IsOriginal = req.IsOriginal
	p.UpdatedAt = now
}
