package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/drivers"
	httpHandler "github.com/piresc/hamroride/services/drivers/handler/http"
)

// HTTPHandler combines all HTTP handlers for the drivers service
type HTTPHandler struct {
	driverHTTP *httpHandler.DriverHandler
	cfg        *models.Config
	redis      *database.RedisClient
}

// NewHTTPHandler creates a new combined handler. redis backs the location
// rate limiter and may be nil, which disables it.
func NewHTTPHandler(
	driverUC drivers.DriverUC,
	cfg *models.Config,
	redis *database.RedisClient,
) *HTTPHandler {
	return &HTTPHandler{
		driverHTTP: httpHandler.NewDriverHandler(driverUC),
		cfg:        cfg,
		redis:      redis,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *HTTPHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1", middleware.JWTAuthMiddleware(h.cfg.JWT))

	// Any authenticated caller
	api.GET("/driver/nearby", h.driverHTTP.NearbyDrivers)
	api.GET("/rides/nearby-drivers", h.driverHTTP.NearbyDrivers)

	driver := api.Group("/driver", middleware.RequireRole(models.RoleDriver))
	driver.POST("/profile", h.driverHTTP.UpsertProfile)
	driver.GET("/profile", h.driverHTTP.GetProfile)
	driver.PATCH("/status", h.driverHTTP.SetStatus)
	driver.PATCH("/location", h.driverHTTP.UpdateLocation,
		middleware.UserRateLimiter(h.cfg.Drivers.LocationRateLimit, h.cfg.Drivers.LocationRatePeriod, h.redis))
}
