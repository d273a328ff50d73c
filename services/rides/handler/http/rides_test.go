package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/rides/mocks"
	"github.com/piresc/hamroride/services/rides/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, target, body string, principal *models.Principal, rideID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		c.Set(middleware.PrincipalKey, principal)
	}
	if rideID != "" {
		c.SetParamNames("rideID")
		c.SetParamValues(rideID)
	}
	return c, rec
}

var (
	passengerPrincipal = &models.Principal{UserID: "p1", Role: models.RolePassenger}
	driverPrincipal    = &models.Principal{UserID: "d1", Role: models.RoleDriver}
)

func TestNewRidesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUC := mocks.NewMockRideUC(ctrl)
	handler := NewRidesHandler(mockUC)

	assert.NotNil(t, handler)
	assert.Equal(t, mockUC, handler.rideUC)
}

func TestRidesHandler_CreateRide(t *testing.T) {
	lat, lng := 37.7749, -122.4194
	dLat, dLng := 37.7849, -122.4094

	tests := []struct {
		name           string
		body           string
		principal      *models.Principal
		mockSetup      func(*mocks.MockRideUC)
		expectedStatus int
	}{
		{
			name:      "Success",
			body:      `{"pickup_lat":37.7749,"pickup_lng":-122.4194,"dropoff_lat":37.7849,"dropoff_lng":-122.4094}`,
			principal: passengerPrincipal,
			mockSetup: func(mockUC *mocks.MockRideUC) {
				mockUC.EXPECT().
					CreateRide(gomock.Any(), "p1", models.CreateRideRequest{PickupLat: &lat, PickupLng: &lng, DropoffLat: &dLat, DropoffLng: &dLng}).
					Return(&models.Ride{ID: "r1", PassengerID: "p1", Status: models.RideStatusRequested}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid JSON",
			body:           `{"pickup_lat":`,
			principal:      passengerPrincipal,
			mockSetup:      func(*mocks.MockRideUC) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "Missing coordinates",
			body:      `{"pickup_lat":37.7749}`,
			principal: passengerPrincipal,
			mockSetup: func(mockUC *mocks.MockRideUC) {
				mockUC.EXPECT().CreateRide(gomock.Any(), "p1", gomock.Any()).
					Return(nil, apperror.InvalidInput("pickup and dropoff coordinates are required"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "Store failure",
			body:      `{}`,
			principal: passengerPrincipal,
			mockSetup: func(mockUC *mocks.MockRideUC) {
				mockUC.EXPECT().CreateRide(gomock.Any(), "p1", gomock.Any()).
					Return(nil, apperror.Internal("create ride", assert.AnError))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "No principal",
			body:           `{}`,
			mockSetup:      func(*mocks.MockRideUC) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUC := mocks.NewMockRideUC(ctrl)
			tt.mockSetup(mockUC)

			c, rec := newContext(http.MethodPost, "/api/v1/rides", tt.body, tt.principal, "")
			require.NoError(t, NewRidesHandler(mockUC).CreateRide(c))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestRidesHandler_CreateRide_ResponseBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver := "d1"
	mockUC := mocks.NewMockRideUC(ctrl)
	mockUC.EXPECT().CreateRide(gomock.Any(), "p1", gomock.Any()).
		Return(&models.Ride{ID: "r1", PassengerID: "p1", DriverID: &driver, Status: models.RideStatusDriverAssigned, EstimatedFare: 4.31}, nil)

	c, rec := newContext(http.MethodPost, "/api/v1/rides", `{}`, passengerPrincipal, "")
	require.NoError(t, NewRidesHandler(mockUC).CreateRide(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success bool        `json:"success"`
		Data    models.Ride `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "r1", body.Data.ID)
	assert.Equal(t, models.RideStatusDriverAssigned, body.Data.Status)
	assert.Equal(t, 4.31, body.Data.EstimatedFare)
}

func TestRidesHandler_GetRide(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Participant", nil, http.StatusOK},
		{"Stranger", apperror.Forbidden("not a participant of this ride"), http.StatusForbidden},
		{"Unknown ride", apperror.NotFound("ride", "r1"), http.StatusNotFound},
		{"Store timeout", apperror.Internal("get ride", context.DeadlineExceeded), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUC := mocks.NewMockRideUC(ctrl)
			var ride *models.Ride
			if tt.err == nil {
				ride = &models.Ride{ID: "r1", PassengerID: "p1"}
			}
			mockUC.EXPECT().GetRide(gomock.Any(), "p1", "r1").Return(ride, tt.err)

			c, rec := newContext(http.MethodGet, "/api/v1/rides/r1", "", passengerPrincipal, "r1")
			require.NoError(t, NewRidesHandler(mockUC).GetRide(c))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestRidesHandler_MalformedRideIDIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// the repository must never see the malformed id
	uc, err := usecase.NewRideUC(&models.Config{}, mocks.NewMockRideRepo(ctrl), nil, nil, nil, nil)
	require.NoError(t, err)
	h := NewRidesHandler(uc)

	c, rec := newContext(http.MethodGet, "/api/v1/rides/abc", "", passengerPrincipal, "abc")
	require.NoError(t, h.GetRide(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodPost, "/api/v1/driver/rides/abc/accept", "", driverPrincipal, "abc")
	require.NoError(t, h.AcceptRide(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodPost, "/internal/rides/abc/cancel", "", nil, "abc")
	require.NoError(t, h.SystemCancel(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRidesHandler_Lists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUC := mocks.NewMockRideUC(ctrl)
	handler := NewRidesHandler(mockUC)

	mockUC.EXPECT().ListMyRides(gomock.Any(), "p1").Return([]*models.Ride{{ID: "r2"}, {ID: "r1"}}, nil)
	c, rec := newContext(http.MethodGet, "/api/v1/rides/me", "", passengerPrincipal, "")
	require.NoError(t, handler.ListMyRides(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	mockUC.EXPECT().ListAssignedRides(gomock.Any(), "d1").Return(nil, apperror.Internal("list assigned rides", assert.AnError))
	c, rec = newContext(http.MethodGet, "/api/v1/driver/rides/assigned", "", driverPrincipal, "")
	require.NoError(t, handler.ListAssignedRides(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	mockUC.EXPECT().ListDriverHistory(gomock.Any(), "d1").Return([]*models.Ride{{ID: "r1", Status: models.RideStatusCompleted}}, nil)
	c, rec = newContext(http.MethodGet, "/api/v1/driver/rides/history", "", driverPrincipal, "")
	require.NoError(t, handler.ListDriverHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ride history retrieved")

	c, rec = newContext(http.MethodGet, "/api/v1/driver/rides/history", "", nil, "")
	require.NoError(t, handler.ListDriverHistory(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newContext(http.MethodGet, "/api/v1/rides/me", "", nil, "")
	require.NoError(t, handler.ListMyRides(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRidesHandler_DriverTransitions(t *testing.T) {
	ok := &models.Ride{ID: "r1", PassengerID: "p1"}

	tests := []struct {
		name           string
		setup          func(*mocks.MockRideUC)
		call           func(*RidesHandler, echo.Context) error
		expectedStatus int
	}{
		{
			name:           "Accept",
			setup:          func(m *mocks.MockRideUC) { m.EXPECT().AcceptRide(gomock.Any(), "d1", "r1").Return(ok, nil) },
			call:           (*RidesHandler).AcceptRide,
			expectedStatus: http.StatusOK,
		},
		{
			name: "Accept taken by another driver",
			setup: func(m *mocks.MockRideUC) {
				m.EXPECT().AcceptRide(gomock.Any(), "d1", "r1").Return(nil, apperror.Conflict("ride was modified concurrently"))
			},
			call:           (*RidesHandler).AcceptRide,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Arriving",
			setup:          func(m *mocks.MockRideUC) { m.EXPECT().MarkArriving(gomock.Any(), "d1", "r1").Return(ok, nil) },
			call:           (*RidesHandler).MarkArriving,
			expectedStatus: http.StatusOK,
		},
		{
			name: "Start before arriving",
			setup: func(m *mocks.MockRideUC) {
				m.EXPECT().StartRide(gomock.Any(), "d1", "r1").
					Return(nil, apperror.InvalidTransition(string(models.RideStatusDriverAccepted), string(models.RideStatusInProgress)))
			},
			call:           (*RidesHandler).StartRide,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Complete",
			setup:          func(m *mocks.MockRideUC) { m.EXPECT().CompleteRide(gomock.Any(), "d1", "r1").Return(ok, nil) },
			call:           (*RidesHandler).CompleteRide,
			expectedStatus: http.StatusOK,
		},
		{
			name: "Cancel someone else's ride",
			setup: func(m *mocks.MockRideUC) {
				m.EXPECT().DriverCancel(gomock.Any(), "d1", "r1").Return(nil, apperror.Forbidden("not the assigned driver"))
			},
			call:           (*RidesHandler).DriverCancel,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUC := mocks.NewMockRideUC(ctrl)
			tt.setup(mockUC)

			c, rec := newContext(http.MethodPost, "/api/v1/driver/rides/r1/x", "", driverPrincipal, "r1")
			require.NoError(t, tt.call(NewRidesHandler(mockUC), c))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestRidesHandler_PassengerCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUC := mocks.NewMockRideUC(ctrl)
	mockUC.EXPECT().PassengerCancel(gomock.Any(), "p1", "r1").
		Return(&models.Ride{ID: "r1", Status: models.RideStatusCancelledByPassenger}, nil)

	c, rec := newContext(http.MethodPost, "/api/v1/rides/r1/cancel", "", passengerPrincipal, "r1")
	require.NoError(t, NewRidesHandler(mockUC).PassengerCancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodPost, "/api/v1/rides/r1/cancel", "", nil, "r1")
	require.NoError(t, NewRidesHandler(mockUC).PassengerCancel(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRidesHandler_SystemCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUC := mocks.NewMockRideUC(ctrl)
	mockUC.EXPECT().SystemCancel(gomock.Any(), "r1").
		Return(&models.Ride{ID: "r1", Status: models.RideStatusCancelledSystem}, nil)
	mockUC.EXPECT().SystemCancel(gomock.Any(), "r2").
		Return(nil, apperror.InvalidTransition(string(models.RideStatusCompleted), string(models.RideStatusCancelledSystem)))

	c, rec := newContext(http.MethodPost, "/internal/rides/r1/cancel", "", nil, "r1")
	c.Set(middleware.ServiceNameKey, "ops")
	require.NoError(t, NewRidesHandler(mockUC).SystemCancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodPost, "/internal/rides/r2/cancel", "", nil, "r2")
	require.NoError(t, NewRidesHandler(mockUC).SystemCancel(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRidesHandler_Ratings(t *testing.T) {
	tests := []struct {
		name           string
		principal      *models.Principal
		body           string
		setup          func(*mocks.MockRideUC)
		call           func(*RidesHandler, echo.Context) error
		expectedStatus int
	}{
		{
			name:      "Rate driver",
			principal: passengerPrincipal,
			body:      `{"rating":5}`,
			setup: func(m *mocks.MockRideUC) {
				m.EXPECT().RateDriver(gomock.Any(), "p1", "r1", 5).Return(&models.Ride{ID: "r1"}, nil)
			},
			call:           (*RidesHandler).RateDriver,
			expectedStatus: http.StatusOK,
		},
		{
			name:      "Rating out of range",
			principal: passengerPrincipal,
			body:      `{"rating":6}`,
			setup: func(m *mocks.MockRideUC) {
				m.EXPECT().RateDriver(gomock.Any(), "p1", "r1", 6).Return(nil, apperror.InvalidInput("rating must be between 1 and 5"))
			},
			call:           (*RidesHandler).RateDriver,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "Rate before completion",
			principal: driverPrincipal,
			body:      `{"rating":4}`,
			setup: func(m *mocks.MockRideUC) {
				m.EXPECT().RatePassenger(gomock.Any(), "d1", "r1", 4).Return(nil, apperror.InvalidInput("ride is not completed"))
			},
			call:           (*RidesHandler).RatePassenger,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed body",
			principal:      driverPrincipal,
			body:           `{"rating":"five"}`,
			setup:          func(*mocks.MockRideUC) {},
			call:           (*RidesHandler).RatePassenger,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "No principal",
			body:           `{"rating":5}`,
			setup:          func(*mocks.MockRideUC) {},
			call:           (*RidesHandler).RateDriver,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUC := mocks.NewMockRideUC(ctrl)
			tt.setup(mockUC)

			c, rec := newContext(http.MethodPost, "/api/v1/rides/r1/rate", tt.body, tt.principal, "r1")
			require.NoError(t, tt.call(NewRidesHandler(mockUC), c))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
