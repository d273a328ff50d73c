package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/constants"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/models"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	wspkg "github.com/piresc/hamroride/internal/pkg/websocket"
	"github.com/piresc/hamroride/services/realtime"
)

// WebSocketHandler serves the realtime subscription endpoint
type WebSocketHandler struct {
	hub     *realtime.Hub
	manager *wspkg.Manager
}

// NewWebSocketHandler creates a new websocket handler on top of the hub's manager
func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub:     hub,
		manager: hub.Manager(),
	}
}

// RegisterRoutes registers the websocket endpoint. Authentication happens
// during the upgrade, so no JWT middleware is attached.
func (h *WebSocketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", nrpkg.TraceHandler("WebSocketHandler.Connect", h.HandleWebSocket))
}

// HandleWebSocket upgrades the connection and serves it until it closes
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	return h.manager.HandleConnection(c, h.HandleMessage)
}

// HandleMessage dispatches one client message
func (h *WebSocketHandler) HandleMessage(ctx context.Context, client *wspkg.Client, msg models.WSMessage) {
	switch msg.Event {
	case constants.EventSubscribe:
		h.handleSubscribe(ctx, client, msg.Data)
	case constants.EventUnsubscribe:
		h.handleUnsubscribe(client, msg.Data)
	default:
		_ = client.SendError(constants.ErrorUnknownEvent, "Unknown event type")
	}
}

func (h *WebSocketHandler) handleSubscribe(ctx context.Context, client *wspkg.Client, data json.RawMessage) {
	var req models.WSSubscribeRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Channel == "" {
		_ = client.SendError(constants.ErrorInvalidFormat, "Invalid subscribe format")
		return
	}

	rideID, err := h.hub.AuthorizeSubscribe(ctx, client.Principal, req.Channel)
	if err != nil {
		code, message := errorCode(err)
		if code == constants.ErrorInternalError {
			logger.Error("Failed to authorize subscription",
				logger.String("client_id", client.ID),
				logger.String("channel", req.Channel),
				logger.Err(err))
		}
		_ = client.SendError(code, message)
		return
	}

	// Deliver broadcasts on the canonical channel, whatever spelling of the
	// id the client used
	channel := realtime.ChannelForRide(rideID)
	h.manager.Subscribe(client, channel)
	logger.Debug("Client subscribed",
		logger.String("client_id", client.ID),
		logger.UserID(client.Principal.UserID),
		logger.RideID(rideID))
	_ = client.Send(constants.EventSubscribed, models.WSSubscribeRequest{Channel: channel})
}

func (h *WebSocketHandler) handleUnsubscribe(client *wspkg.Client, data json.RawMessage) {
	var req models.WSSubscribeRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Channel == "" {
		_ = client.SendError(constants.ErrorInvalidFormat, "Invalid unsubscribe format")
		return
	}
	channel := req.Channel
	if rideID, err := realtime.RideIDFromChannel(req.Channel); err == nil {
		channel = realtime.ChannelForRide(rideID)
	}
	h.manager.Unsubscribe(client, channel)
	_ = client.Send(constants.EventUnsubscribed, models.WSSubscribeRequest{Channel: channel})
}

func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		return constants.ErrorUnauthorized, err.Error()
	case errors.Is(err, apperror.ErrForbidden):
		return constants.ErrorForbidden, err.Error()
	case errors.Is(err, apperror.ErrInvalidInput):
		return constants.ErrorInvalidFormat, err.Error()
	default:
		return constants.ErrorInternalError, "Internal error"
	}
}
