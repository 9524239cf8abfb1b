package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

const maxSlugLength = 200

// RequestValidator handles transport-level input checks: path IDs, query
// strings and body decoding. Field rules live with the service requests.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// ParseID reads a UUID path parameter and returns its canonical form.
func (rv *RequestValidator) ParseID(c *gin.Context, param, entity string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(param)))
	if err != nil {
		return "", apperrors.BadRequest(fmt.Sprintf("Invalid %s ID format", entity))
	}
	return id.String(), nil
}

// BindJSON decodes the request body into dst.
func (rv *RequestValidator) BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.BadRequest("Invalid request body: " + err.Error())
	}
	return nil
}

// ParseProductQuery reads the get-product filters.
func (rv *RequestValidator) ParseProductQuery(c *gin.Context) (services.ProductQuery, error) {
	q := services.ProductQuery{
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Slug:         strings.TrimSpace(c.Query("slug")),
	}

	for name, value := range map[string]string{"category": q.CategorySlug, "slug": q.Slug} {
		if err := rv.validate.Var(value, fmt.Sprintf("omitempty,max=%d,printascii", maxSlugLength)); err != nil {
			return q, apperrors.BadRequest(fmt.Sprintf("invalid value for '%s'", name))
		}
	}

	if raw := strings.TrimSpace(c.Query("populate")); raw != "" {
		populate, err := strconv.ParseBool(raw)
		if err != nil {
			return q, apperrors.BadRequest("invalid boolean value for 'populate'")
		}
		q.Populate = populate
	}
	return q, nil
}
