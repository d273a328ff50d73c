package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/constants"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/models"
	natspkg "github.com/piresc/hamroride/internal/pkg/nats"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/services/realtime"
)

// RideUpdateHandler feeds ride updates from NATS into the hub
type RideUpdateHandler struct {
	hub        *realtime.Hub
	natsClient *natspkg.Client
	nrApp      *newrelic.Application
	subs       []*nats.Subscription
}

// NewRideUpdateHandler creates a new ride update NATS handler
func NewRideUpdateHandler(hub *realtime.Hub, client *natspkg.Client, nrApp *newrelic.Application) *RideUpdateHandler {
	return &RideUpdateHandler{
		hub:        hub,
		natsClient: client,
		nrApp:      nrApp,
		subs:       make([]*nats.Subscription, 0),
	}
}

// InitNATSConsumers subscribes to every ride subject. This is a plain
// subscription, not a queue group: each instance delivers to its own sockets.
func (h *RideUpdateHandler) InitNATSConsumers() error {
	if !h.natsClient.IsConnected() {
		return fmt.Errorf("nats client is not connected")
	}
	logger.Info("Initializing NATS consumers for ride updates",
		logger.String("subject", constants.SubjectRideUpdates))

	sub, err := h.natsClient.Subscribe(constants.SubjectRideUpdates, func(msg *nats.Msg) {
		ctx, end := nrpkg.StartConsumerTransaction(context.Background(), h.nrApp, "NATS.RideUpdate", msg.Subject)
		err := h.handleRideUpdate(ctx, msg.Subject, msg.Data)
		end(err)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", constants.SubjectRideUpdates, err)
	}
	h.subs = append(h.subs, sub)
	return nil
}

// Close removes every subscription made by InitNATSConsumers
func (h *RideUpdateHandler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", logger.String("subject", sub.Subject), logger.Err(err))
		}
	}
	h.subs = nil
}

func (h *RideUpdateHandler) handleRideUpdate(ctx context.Context, subject string, data []byte) error {
	rideID, err := realtime.RideIDFromSubject(subject)
	if err != nil {
		logger.WarnCtx(ctx, "Ignoring update on unexpected subject", logger.String("subject", subject))
		return err
	}

	var update models.RideUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		logger.ErrorCtx(ctx, "Failed to unmarshal ride update", logger.Err(err))
		return err
	}
	if update.RideID != rideID {
		return apperror.InvalidInput(fmt.Sprintf("update for ride %s published on %s", update.RideID, subject))
	}

	sent := h.hub.Deliver(update)
	logger.Debug("Ride update delivered",
		logger.RideID(rideID),
		logger.String("status", string(update.Status)),
		logger.Int("sockets", sent))
	return nil
}
