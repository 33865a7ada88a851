package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uniprbooks/backend/internal/auth"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
)

type AuthMiddleware struct {
	tokens *auth.TokenService
}

func NewAuthMiddleware(tokens *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func bearerToken(c echo.Context) string {
	authz := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

// RequireAuth rejects missing, malformed, tampered, and expired tokens with
// a uniform Unauthorized before any service runs.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"status": "error", "message": "Unauthorized"})
		}
		identity, err := m.tokens.Validate(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"status": "error", "message": "Unauthorized"})
		}
		c.Set(ctxUserID, identity.UserID)
		c.Set(ctxEmail, identity.Email)
		return next(c)
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := bearerToken(c); token != "" {
			if identity, err := m.tokens.Validate(token); err == nil {
				c.Set(ctxUserID, identity.UserID)
				c.Set(ctxEmail, identity.Email)
			}
		}
		return next(c)
	}
}

// CurrentUser reads the authenticated identity off the request context.
func CurrentUser(c echo.Context) (userID uint64, email string, ok bool) {
	userID, ok = c.Get(ctxUserID).(uint64)
	if !ok {
		return 0, "", false
	}
	email, _ = c.Get(ctxEmail).(string)
	return userID, email, true
}
