package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/hamroride/internal/pkg/jwt"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/internal/utils"
)

// PrincipalKey is the echo context key holding the verified *models.Principal
const PrincipalKey = "principal"

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.UnauthorizedResponse(c, "Authorization header is required")
			}

			tokenString, ok := BearerToken(authHeader)
			if !ok {
				return utils.UnauthorizedResponse(c, "Invalid authorization format")
			}

			principal, err := jwtpkg.ValidateToken(tokenString, config)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			c.Set(PrincipalKey, principal)
			SetUserID(c, principal.UserID)

			return next(c)
		}
	}
}

// GetPrincipal returns the identity stored by JWTAuthMiddleware, or nil
func GetPrincipal(c echo.Context) *models.Principal {
	if p, ok := c.Get(PrincipalKey).(*models.Principal); ok {
		return p
	}
	return nil
}

// RequireRole rejects principals whose role is not listed
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := GetPrincipal(c)
			if p == nil {
				return utils.UnauthorizedResponse(c, "")
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return utils.ForbiddenResponse(c, "role "+string(p.Role)+" may not call this endpoint")
		}
	}
}
