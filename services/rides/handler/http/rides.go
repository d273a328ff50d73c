package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/models"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/internal/utils"
	"github.com/piresc/hamroride/services/rides"
)

// RidesHandler handles HTTP requests for ride operations
type RidesHandler struct {
	rideUC rides.RideUC
}

// NewRidesHandler creates a new ride HTTP handler
func NewRidesHandler(rideUC rides.RideUC) *RidesHandler {
	return &RidesHandler{
		rideUC: rideUC,
	}
}

type rideAction func(ctx context.Context, userID, rideID string) (*models.Ride, error)

// CreateRide requests a ride for the calling passenger
func (h *RidesHandler) CreateRide(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "RidesHandler.CreateRide")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.CreateRideRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	ride, err := h.rideUC.CreateRide(c.Request().Context(), principal.UserID, req)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.HandleError(c, err)
	}

	nrpkg.AddTransactionAttribute(txn, "ride.id", ride.ID)
	nrpkg.AddTransactionAttribute(txn, "ride.status", string(ride.Status))
	return utils.SuccessResponse(c, http.StatusCreated, "Ride requested", ride)
}

// GetRide returns a ride to one of its participants
func (h *RidesHandler) GetRide(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "RidesHandler.GetRide")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	ride, err := h.rideUC.GetRide(c.Request().Context(), principal.UserID, c.Param("rideID"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Ride retrieved", ride)
}

// ListMyRides lists the calling passenger's rides, newest first
func (h *RidesHandler) ListMyRides(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "RidesHandler.ListMyRides")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	list, err := h.rideUC.ListMyRides(c.Request().Context(), principal.UserID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Rides retrieved", list)
}

// ListAssignedRides lists the calling driver's active rides
func (h *RidesHandler) ListAssignedRides(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "RidesHandler.ListAssignedRides")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	list, err := h.rideUC.ListAssignedRides(c.Request().Context(), principal.UserID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Assigned rides retrieved", list)
}

// ListDriverHistory lists every ride the calling driver was assigned
func (h *RidesHandler) ListDriverHistory(c echo.Context) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), "RidesHandler.ListDriverHistory")

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	list, err := h.rideUC.ListDriverHistory(c.Request().Context(), principal.UserID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Ride history retrieved", list)
}

// PassengerCancel cancels the calling passenger's ride
func (h *RidesHandler) PassengerCancel(c echo.Context) error {
	return h.transition(c, "RidesHandler.PassengerCancel", "Ride cancelled", h.rideUC.PassengerCancel)
}

// AcceptRide accepts an assigned or open ride for the calling driver
func (h *RidesHandler) AcceptRide(c echo.Context) error {
	return h.transition(c, "RidesHandler.AcceptRide", "Ride accepted", h.rideUC.AcceptRide)
}

// MarkArriving marks the calling driver as on the way to pickup
func (h *RidesHandler) MarkArriving(c echo.Context) error {
	return h.transition(c, "RidesHandler.MarkArriving", "Driver arriving", h.rideUC.MarkArriving)
}

// StartRide starts the trip
func (h *RidesHandler) StartRide(c echo.Context) error {
	return h.transition(c, "RidesHandler.StartRide", "Trip started", h.rideUC.StartRide)
}

// CompleteRide completes the trip
func (h *RidesHandler) CompleteRide(c echo.Context) error {
	return h.transition(c, "RidesHandler.CompleteRide", "Trip completed", h.rideUC.CompleteRide)
}

// DriverCancel cancels the ride on the driver's side
func (h *RidesHandler) DriverCancel(c echo.Context) error {
	return h.transition(c, "RidesHandler.DriverCancel", "Ride cancelled", h.rideUC.DriverCancel)
}

func (h *RidesHandler) transition(c echo.Context, name, message string, action rideAction) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), name)

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}
	rideID := c.Param("rideID")
	middleware.SetRideID(c, rideID)

	ride, err := action(c.Request().Context(), principal.UserID, rideID)
	if err != nil {
		middleware.NoticeError(c, err)
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, message, ride)
}

// SystemCancel cancels a ride on behalf of an internal service
func (h *RidesHandler) SystemCancel(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "RidesHandler.SystemCancel")

	rideID := c.Param("rideID")
	ride, err := h.rideUC.SystemCancel(c.Request().Context(), rideID)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.HandleError(c, err)
	}

	logger.Info("Ride cancelled by system",
		logger.RideID(rideID),
		logger.String("service", serviceName(c)))
	return utils.SuccessResponse(c, http.StatusOK, "Ride cancelled", ride)
}

// RateDriver records the passenger's rating of the driver
func (h *RidesHandler) RateDriver(c echo.Context) error {
	return h.rate(c, "RidesHandler.RateDriver", h.rideUC.RateDriver)
}

// RatePassenger records the driver's rating of the passenger
func (h *RidesHandler) RatePassenger(c echo.Context) error {
	return h.rate(c, "RidesHandler.RatePassenger", h.rideUC.RatePassenger)
}

func (h *RidesHandler) rate(c echo.Context, name string, action func(ctx context.Context, userID, rideID string, stars int) (*models.Ride, error)) error {
	nrpkg.SetTransactionName(nrpkg.FromEchoContext(c), name)

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.RateRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	ride, err := action(c.Request().Context(), principal.UserID, c.Param("rideID"), req.Rating)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Rating saved", ride)
}

func serviceName(c echo.Context) string {
	if s, ok := c.Get(middleware.ServiceNameKey).(string); ok {
		return s
	}
	return ""
}
