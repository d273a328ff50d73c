package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/rides"
	httpHandler "github.com/piresc/hamroride/services/rides/handler/http"
)

// HTTPHandler combines all HTTP handlers for the rides service
type HTTPHandler struct {
	ridesHTTP *httpHandler.RidesHandler
	cfg       *models.Config
}

// NewHTTPHandler creates a new combined handler
func NewHTTPHandler(rideUC rides.RideUC, cfg *models.Config) *HTTPHandler {
	return &HTTPHandler{
		ridesHTTP: httpHandler.NewRidesHandler(rideUC),
		cfg:       cfg,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *HTTPHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1", middleware.JWTAuthMiddleware(h.cfg.JWT))

	// Roles are checked per route: /rides is shared with the drivers
	// service's nearby-drivers lookup, which any caller may use.
	passenger := middleware.RequireRole(models.RolePassenger)
	api.POST("/rides", h.ridesHTTP.CreateRide, passenger)
	api.GET("/rides/me", h.ridesHTTP.ListMyRides, passenger)
	api.GET("/rides/:rideID", h.ridesHTTP.GetRide)
	api.POST("/rides/:rideID/cancel", h.ridesHTTP.PassengerCancel, passenger)
	api.POST("/rides/:rideID/rate-driver", h.ridesHTTP.RateDriver, passenger)

	driver := api.Group("/driver/rides", middleware.RequireRole(models.RoleDriver))
	driver.GET("/assigned", h.ridesHTTP.ListAssignedRides)
	driver.GET("/history", h.ridesHTTP.ListDriverHistory)
	driver.POST("/:rideID/accept", h.ridesHTTP.AcceptRide)
	driver.POST("/:rideID/arriving", h.ridesHTTP.MarkArriving)
	driver.POST("/:rideID/start", h.ridesHTTP.StartRide)
	driver.POST("/:rideID/complete", h.ridesHTTP.CompleteRide)
	driver.POST("/:rideID/cancel", h.ridesHTTP.DriverCancel)
	driver.POST("/:rideID/rate-passenger", h.ridesHTTP.RatePassenger)

	// Internal routes for service-to-service communication (API key required)
	internal := e.Group("/internal/rides", middleware.ValidateAPIKey(h.cfg.APIKey))
	internal.POST("/:rideID/cancel", h.ridesHTTP.SystemCancel)
}
