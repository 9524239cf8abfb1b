package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

// CategoryServiceAPI defines the category operations the controller needs.
type CategoryServiceAPI interface {
	CreateCategory(ctx context.Context, req services.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, req services.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.CategorySummary, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
}

type CategoryController struct {
	service   CategoryServiceAPI
	cache     *CacheManager
	validator *RequestValidator
}

func NewCategoryController(s CategoryServiceAPI, cache *CacheManager) *CategoryController {
	return &CategoryController{service: s, cache: cache, validator: NewRequestValidator()}
}

func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	category, err := ctrl.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, category)
}

func (ctrl *CategoryController) EditCategory(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "category")
	if err != nil {
		respondError(c, err)
		return
	}
	var req services.CategoryRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	category, err := ctrl.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	// populated product listings embed category fields
	ctrl.cache.Invalidate(c.Request.Context())
	respondData(c, http.StatusOK, category)
}

func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "category")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ctrl.service.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	respondMessage(c, "Category deleted successfully")
}

func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	categories, err := ctrl.service.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, categories)
}

func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "category")
	if err != nil {
		respondError(c, err)
		return
	}
	category, err := ctrl.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, category)
}
