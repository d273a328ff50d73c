package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/models"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/internal/utils"
	"github.com/piresc/hamroride/services/drivers"
)

// DriverHandler handles HTTP requests for driver profiles, availability and location
type DriverHandler struct {
	driverUC drivers.DriverUC
}

// NewDriverHandler creates a new driver HTTP handler
func NewDriverHandler(driverUC drivers.DriverUC) *DriverHandler {
	return &DriverHandler{
		driverUC: driverUC,
	}
}

// UpsertProfile creates or updates the caller's vehicle details
func (h *DriverHandler) UpsertProfile(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "DriverHandler.UpsertProfile")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.ProfileUpsertRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	profile, err := h.driverUC.UpsertProfile(c.Request().Context(), principal.UserID, req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Driver profile saved", profile)
}

// GetProfile returns the caller's profile
func (h *DriverHandler) GetProfile(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "DriverHandler.GetProfile")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	profile, err := h.driverUC.GetProfile(c.Request().Context(), principal.UserID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Driver profile retrieved", profile)
}

// SetStatus switches the caller ONLINE or OFFLINE
func (h *DriverHandler) SetStatus(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "DriverHandler.SetStatus")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.StatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	profile, err := h.driverUC.SetStatus(c.Request().Context(), principal.UserID, req.Status)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Driver status updated", profile)
}

// UpdateLocation records the caller's position. Reports while OFFLINE are
// accepted and ignored.
func (h *DriverHandler) UpdateLocation(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "DriverHandler.UpdateLocation")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.LocationRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return utils.BadRequestResponse(c, "lat and lng are required")
	}

	indexed, err := h.driverUC.UpdateLocation(c.Request().Context(), principal.UserID, *req.Latitude, *req.Longitude)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Location received", map[string]bool{"indexed": indexed})
}

// NearbyDrivers lists online drivers around lat,lng. limit and radiusMeters
// are optional.
func (h *DriverHandler) NearbyDrivers(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "DriverHandler.NearbyDrivers")

	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "lat is required and must be a number")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "lng is required and must be a number")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return utils.BadRequestResponse(c, "limit must be a positive integer")
		}
	}
	radius := 0.0
	if raw := c.QueryParam("radiusMeters"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil || radius < 0 {
			return utils.BadRequestResponse(c, "radiusMeters must be a positive number")
		}
	}

	nearby, err := h.driverUC.NearbyDrivers(c.Request().Context(), lat, lng, radius, limit)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Nearby drivers found", nearby)
}
