package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ixtiyorSaitov/e-commerce-admin/common/auth"
	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

const (
	AdminContextKey = "admin"
	AdminEmailKey   = "admin_email"
	// SessionCookie carries the session token when no Authorization header is sent.
	SessionCookie = "admin_token"
)

// AdminAuthorizer resolves an authenticated email to an admin.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, email string) (*models.Admin, error)
}

// AdminAuth requires a valid session token whose email belongs to an admin.
// Missing or invalid tokens get 401, non-admin identities get 403.
func AdminAuth(parser *auth.TokenParser, admins AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if v, err := c.Cookie(SessionCookie); err == nil {
				token = v
			}
		}

		claims, err := parser.ParseAndValidateToken(token, "")
		if err != nil {
			if !errors.Is(err, auth.ErrMissingToken) {
				zap.L().Debug("rejected session token", zap.Error(err))
			}
			apperrors.Respond(c, apperrors.Unauthorized("Unauthorized"))
			return
		}

		email, ok := auth.EmailClaim(claims)
		if !ok {
			apperrors.Respond(c, apperrors.Unauthorized("Unauthorized"))
			return
		}

		admin, err := admins.Authorize(c.Request.Context(), email)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		c.Set(AdminContextKey, admin)
		c.Set(AdminEmailKey, admin.Email)
		c.Next()
	}
}

// CurrentAdmin returns the admin stored by AdminAuth.
func CurrentAdmin(c *gin.Context) (*models.Admin, bool) {
	v, ok := c.Get(AdminContextKey)
	if !ok {
		return nil, false
	}
	admin, ok := v.(*models.Admin)
	return admin, ok && admin != nil
}
