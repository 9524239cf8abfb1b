package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/middleware"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

type UserServiceAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req services.UserUpdateRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type UserController struct {
	service   UserServiceAPI
	validator *RequestValidator
}

func NewUserController(s UserServiceAPI) *UserController {
	return &UserController{service: s, validator: NewRequestValidator()}
}

func (ctrl *UserController) GetUsers(c *gin.Context) {
	users, err := ctrl.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, users)
}

func (ctrl *UserController) GetUser(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "user")
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := ctrl.service.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (ctrl *UserController) EditUser(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "user")
	if err != nil {
		respondError(c, err)
		return
	}
	var req services.UserUpdateRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	user, err := ctrl.service.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (ctrl *UserController) DeleteUser(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "user")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ctrl.service.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "User deleted successfully")
}

// Me returns the admin resolved by the auth middleware.
func Me(c *gin.Context) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}
	respondData(c, http.StatusOK, admin)
}
