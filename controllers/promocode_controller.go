package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

type PromocodeServiceAPI interface {
	CreatePromocode(ctx context.Context, req services.PromocodeRequest) (*models.Promocode, error)
	ListPromocodes(ctx context.Context) ([]models.Promocode, error)
	DeletePromocode(ctx context.Context, id string) error
	Quote(ctx context.Context, req services.QuoteRequest) (*models.PromocodeQuote, error)
}

type PromocodeController struct {
	service   PromocodeServiceAPI
	validator *RequestValidator
}

func NewPromocodeController(s PromocodeServiceAPI) *PromocodeController {
	return &PromocodeController{service: s, validator: NewRequestValidator()}
}

func (ctrl *PromocodeController) CreatePromocode(c *gin.Context) {
	var req services.PromocodeRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	p, err := ctrl.service.CreatePromocode(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, p)
}

func (ctrl *PromocodeController) GetPromocodes(c *gin.Context) {
	codes, err := ctrl.service.ListPromocodes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, codes)
}

func (ctrl *PromocodeController) DeletePromocode(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "promocode")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ctrl.service.DeletePromocode(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Promocode deleted successfully")
}

func (ctrl *PromocodeController) Quote(c *gin.Context) {
	var req services.QuoteRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	quote, err := ctrl.service.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, quote)
}
