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
	"github.com/piresc/hamroride/internal/utils"
	"github.com/piresc/hamroride/services/drivers"
)

// logCellPrecision is roughly a 150m cell, enough to eyeball a driver's area in logs
const logCellPrecision = 7

// LocationHandler consumes driver location reports from NATS
type LocationHandler struct {
	driverUC   drivers.DriverUC
	natsClient *natspkg.Client
	nrApp      *newrelic.Application
	subs       []*nats.Subscription
}

// NewLocationHandler creates a new location NATS handler
func NewLocationHandler(
	driverUC drivers.DriverUC,
	client *natspkg.Client,
	nrApp *newrelic.Application,
) *LocationHandler {
	return &LocationHandler{
		driverUC:   driverUC,
		natsClient: client,
		nrApp:      nrApp,
		subs:       make([]*nats.Subscription, 0),
	}
}

// InitNATSConsumers subscribes to driver location reports. Instances share
// the queue group so each report is handled once.
func (h *LocationHandler) InitNATSConsumers() error {
	if !h.natsClient.IsConnected() {
		return fmt.Errorf("nats client is not connected")
	}
	logger.Info("Initializing NATS consumers for driver locations",
		logger.String("subject", constants.SubjectDriverLocation),
		logger.String("queue", constants.QueueLocationIngest))

	sub, err := h.natsClient.QueueSubscribe(constants.SubjectDriverLocation, constants.QueueLocationIngest, func(msg *nats.Msg) {
		ctx, end := nrpkg.StartConsumerTransaction(context.Background(), h.nrApp, "NATS.DriverLocation", msg.Subject)
		err := h.handleLocation(ctx, msg.Data)
		end(err)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", constants.SubjectDriverLocation, err)
	}
	h.subs = append(h.subs, sub)
	return nil
}

// Close removes every subscription made by InitNATSConsumers
func (h *LocationHandler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", logger.String("subject", sub.Subject), logger.Err(err))
		}
	}
	h.subs = nil
}

func (h *LocationHandler) handleLocation(ctx context.Context, data []byte) error {
	var loc models.DriverLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		logger.ErrorCtx(ctx, "Failed to unmarshal driver location", logger.Err(err))
		return err
	}
	if loc.DriverID == "" {
		return apperror.InvalidInput("driver_id is required")
	}

	indexed, err := h.driverUC.UpdateLocation(ctx, loc.DriverID, loc.Latitude, loc.Longitude)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to update driver location",
			logger.DriverID(loc.DriverID),
			logger.Err(err))
		return err
	}

	if indexed {
		logger.Debug("Driver location indexed",
			logger.DriverID(loc.DriverID),
			logger.String("cell", utils.EncodeCell(utils.GeoPoint{Latitude: loc.Latitude, Longitude: loc.Longitude}, logCellPrecision)))
	}
	return nil
}
