package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

type NotificationServiceAPI interface {
	CreateNotification(ctx context.Context, req services.NotificationRequest) (*models.Notification, error)
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, id string) error
}

type NotificationController struct {
	service   NotificationServiceAPI
	validator *RequestValidator
}

func NewNotificationController(s NotificationServiceAPI) *NotificationController {
	return &NotificationController{service: s, validator: NewRequestValidator()}
}

func (ctrl *NotificationController) CreateNotification(c *gin.Context) {
	var req services.NotificationRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	n, err := ctrl.service.CreateNotification(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, n)
}

func (ctrl *NotificationController) GetNotifications(c *gin.Context) {
	items, err := ctrl.service.ListNotifications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items)
}

func (ctrl *NotificationController) DeleteNotification(c *gin.Context) {
	id, err := ctrl.validator.ParseID(c, "id", "notification")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ctrl.service.DeleteNotification(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Notification deleted successfully")
}
