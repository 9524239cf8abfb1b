package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("token is required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

var errNoSecret = errors.New("jwt secret is not configured")

// TokenParser checks admin session tokens signed with the shared HMAC key.
type TokenParser struct {
	secret []byte
	parser *jwt.Parser
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{
		secret: []byte(strings.TrimSpace(secret)),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})),
	}
}

// ParseAndValidateToken returns the claims of a valid token. A non-empty
// expectedType must equal the "typ" claim.
func (p *TokenParser) ParseAndValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error) {
	switch {
	case len(p.secret) == 0:
		return nil, errNoSecret
	case tokenStr == "":
		return nil, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	tok, err := p.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) { return p.secret, nil })
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if expectedType == "" {
		return claims, nil
	}
	if typ, _ := claims["typ"].(string); typ != expectedType {
		return nil, fmt.Errorf("%w: want %s token", ErrInvalidToken, expectedType)
	}
	return claims, nil
}

// BearerToken returns the token part of an "Authorization: Bearer <token>"
// header value, or "" when the header has another shape.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// EmailClaim returns the normalised email claim.
func EmailClaim(claims jwt.MapClaims) (string, bool) {
	email, ok := claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	return email, ok && email != ""
}
