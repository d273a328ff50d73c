package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/internal/utils"
)

const (
	APIKeyHeader = "X-API-Key"
	// ServiceNameKey holds the calling service's name on the echo context
	ServiceNameKey = "service_name"
)

// ValidateAPIKey middleware validates the API key for service-to-service communication.
// With no allowedServices every configured key is accepted.
func ValidateAPIKey(config models.APIKeyConfig, allowedServices ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "API key is required")
			}

			service, ok := matchKey(config.Keys, apiKey, allowedServices)
			if !ok {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "Invalid API key")
			}

			c.Set(ServiceNameKey, service)
			AddAttribute(c, "service.caller", service)
			return next(c)
		}
	}
}

func matchKey(keys map[string]string, apiKey string, allowed []string) (string, bool) {
	candidates := allowed
	if len(candidates) == 0 {
		candidates = make([]string, 0, len(keys))
		for service := range keys {
			candidates = append(candidates, service)
		}
	}
	for _, service := range candidates {
		key := keys[service]
		if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			return service, true
		}
	}
	return "", false
}
