package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ixtiyorSaitov/e-commerce-admin/common/auth"
	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

const testSecret = "test-secret"

type fakeAuthorizer map[string]*models.Admin

func (f fakeAuthorizer) Authorize(_ context.Context, email string) (*models.Admin, error) {
	if a, ok := f[email]; ok {
		return a, nil
	}
	return nil, apperrors.Forbidden("Forbidden: admin access required")
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admins := fakeAuthorizer{"root@example.com": {ID: "a1", Email: "root@example.com", Name: "Root"}}
	r.GET("/me", AdminAuth(auth.NewTokenParser(testSecret), admins), func(c *gin.Context) {
		admin, ok := CurrentAdmin(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": admin.Email, "ctx": c.GetString(AdminEmailKey)})
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	r := newAuthRouter()
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.MapClaims{"email": "root@example.com", "exp": exp}), "", http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"email": "root@example.com", "exp": time.Now().Add(-time.Hour).Unix()}), "", http.StatusUnauthorized},
		{"no email", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"exp": exp}), "", http.StatusUnauthorized},
		{"not an admin", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"email": "user@example.com", "exp": exp}), "", http.StatusForbidden},
		{"admin header", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"email": "Root@Example.com", "exp": exp}), "", http.StatusOK},
		{"admin cookie", "", signToken(t, testSecret, jwt.MapClaims{"email": "root@example.com", "exp": exp}), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.JSONEq(t, `{"email":"root@example.com","ctx":"root@example.com"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}
