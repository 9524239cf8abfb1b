package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

// ProductServiceAPI defines the product operations the controller needs.
type ProductServiceAPI interface {
	CreateProduct(ctx context.Context, req services.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req services.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, q services.ProductQuery) ([]models.Product, error)
	PopulateProducts(ctx context.Context, products []models.Product) ([]models.PopulatedProduct, error)
}

type ProductController struct {
	service   ProductServiceAPI
	cache     *CacheManager
	validator *RequestValidator
}

func NewProductController(s ProductServiceAPI, cache *CacheManager) *ProductController {
	return &ProductController{service: s, cache: cache, validator: NewRequestValidator()}
}

func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	product, err := ctrl.service.CreateProduct(c.Request.Context(), req)
	// a failed category link still leaves a new product behind
	ctrl.cache.Invalidate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, product)
}

func (ctrl *ProductController) EditProduct(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "product")
	if err != nil {
		respondError(c, err)
		return
	}
	var req services.ProductRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	product, err := ctrl.service.UpdateProduct(c.Request.Context(), id, req)
	ctrl.cache.Invalidate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "product")
	if err != nil {
		respondError(c, err)
		return
	}

	err = ctrl.service.DeleteProduct(c.Request.Context(), id)
	ctrl.cache.Invalidate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Product deleted successfully")
}

func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "product")
	if err != nil {
		respondError(c, err)
		return
	}
	product, err := ctrl.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

// GetProducts lists products filtered by ?category=<slug> and ?slug=<slug>.
// ?populate=true embeds category summaries.
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	q, err := ctrl.validator.ParseProductQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	cached, version, ok := ctrl.cache.GetProductList(ctx, q)
	if ok {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	products, err := ctrl.service.ListProducts(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}

	var datas any = products
	if q.Populate {
		populated, err := ctrl.service.PopulateProducts(ctx, products)
		if err != nil {
			respondError(c, err)
			return
		}
		datas = populated
	}

	body, err := json.Marshal(gin.H{"success": true, "datas": datas})
	if err != nil {
		zap.L().Error("failed to encode products", zap.Error(err))
		respondError(c, apperrors.Internal("Failed to encode products", err))
		return
	}
	ctrl.cache.SetProductListAsync(version, q, body)
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
