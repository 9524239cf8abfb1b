package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("Category not found")))
	assert.Equal(t, http.StatusConflict, StatusOf(fmt.Errorf("create: %w", Conflict("duplicate"))))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(stderrors.New("boom")))
}

func TestInternalKeepsUnderlyingMessage(t *testing.T) {
	err := Internal("Failed to update category", stderrors.New("connection reset"))
	assert.Equal(t, "Failed to update category: connection reset", err.Error())
	assert.True(t, stderrors.Is(err, err.Err))
}

func TestConstructorsDoNotShareState(t *testing.T) {
	a := BadRequest("a")
	b := BadRequest("b")
	a.Err = stderrors.New("x")
	assert.Nil(t, b.Err)
}

func TestErrorMiddlewareRendersEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(Forbidden("Admin not found"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Admin not found", body["error"])
}
