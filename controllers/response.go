package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
)

// Every response uses the envelope {success, data | datas | message | error}.

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, datas any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "datas": datas})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	apperrors.Respond(c, err)
}
