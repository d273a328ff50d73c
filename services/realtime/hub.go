// Package realtime fans ride state changes out to the ride's participants.
// Updates travel over NATS on rides.{rideID} so every API instance can serve
// the websocket clients connected to it.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/circuitbreaker"
	"github.com/piresc/hamroride/internal/pkg/constants"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/models"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/internal/pkg/retry"
	"github.com/piresc/hamroride/internal/pkg/websocket"
)

const (
	fallbackPublishRetries = 2
	fallbackStoreTimeout   = 3 * time.Second
)

// RideReader loads the ride behind a channel
type RideReader interface {
	Get(ctx context.Context, id string) (*models.Ride, error)
}

// Publisher sends one message on a subject. *nats.Client satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Hub publishes ride updates, authorizes channel subscriptions and delivers
// updates to subscribed sockets
type Hub struct {
	rides        RideReader
	publisher    Publisher
	manager      *websocket.Manager
	retrier      *retry.Retrier
	breaker      *circuitbreaker.CircuitBreaker
	storeTimeout time.Duration
}

// NewHub creates the hub. A nil publisher delivers straight to local
// sockets, which is only correct for a single instance.
func NewHub(cfg *models.Config, rides RideReader, publisher Publisher, manager *websocket.Manager) *Hub {
	retries := cfg.Rides.PublishRetries
	if retries < 0 {
		retries = fallbackPublishRetries
	}
	timeout := cfg.Rides.StoreTimeout
	if timeout <= 0 {
		timeout = fallbackStoreTimeout
	}

	return &Hub{
		rides:     rides,
		publisher: publisher,
		manager:   manager,
		retrier: retry.New(retry.Config{
			MaxRetries: retries,
			BaseDelay:  50 * time.Millisecond,
			MaxDelay:   time.Second,
			Multiplier: 2,
			Jitter:     true,
		}, logger.GetGlobalLogger()),
		breaker:      circuitbreaker.New(circuitbreaker.DefaultConfig("realtime-publish"), logger.GetGlobalLogger()),
		storeTimeout: timeout,
	}
}

// Manager returns the websocket manager the hub delivers to
func (h *Hub) Manager() *websocket.Manager {
	return h.manager
}

// ChannelForRide returns the websocket channel key of a ride
func ChannelForRide(rideID string) string {
	return constants.ChannelRidePrefix + rideID
}

// SubjectForRide returns the NATS subject of a ride
func SubjectForRide(rideID string) string {
	return constants.SubjectRideUpdatePrefix + rideID
}

// RideIDFromChannel parses rides/{rideID} and returns the canonical ride id
func RideIDFromChannel(channel string) (string, error) {
	return parseRideID(channel, constants.ChannelRidePrefix)
}

// RideIDFromSubject parses rides.{rideID}
func RideIDFromSubject(subject string) (string, error) {
	return parseRideID(subject, constants.SubjectRideUpdatePrefix)
}

func parseRideID(key, prefix string) (string, error) {
	if !strings.HasPrefix(key, prefix) {
		return "", apperror.InvalidInput(fmt.Sprintf("malformed channel %q", key))
	}
	parsed, err := uuid.Parse(strings.TrimPrefix(key, prefix))
	if err != nil {
		return "", apperror.InvalidInput(fmt.Sprintf("malformed channel %q", key))
	}
	// uuid.Parse also accepts upper case, braces and urn:uuid:. Ride ids are
	// stored and published in the canonical lower-case form only.
	return parsed.String(), nil
}

// Publish sends the ride's current snapshot to its subscribers
func (h *Hub) Publish(ctx context.Context, ride *models.Ride) error {
	update := models.NewRideUpdate(ride)

	if h.publisher == nil {
		h.Deliver(update)
		return nil
	}

	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal ride update: %w", err)
	}

	// While the broker is unreachable the breaker fails publishes fast
	// instead of spending the retry budget on every mutation.
	subject := SubjectForRide(ride.ID)
	return nrpkg.WithMessageProducerSegment(ctx, subject, func() error {
		return h.breaker.Execute(ctx, func(ctx context.Context) error {
			return h.retrier.Execute(ctx, func(ctx context.Context) error {
				return h.publisher.Publish(subject, data)
			})
		})
	})
}

// AuthorizeSubscribe admits principal to channel only if it is a participant
// of the ride. An unknown ride is reported as forbidden so ride ids cannot be
// discovered.
func (h *Hub) AuthorizeSubscribe(ctx context.Context, principal *models.Principal, channel string) (string, error) {
	if principal == nil || principal.UserID == "" {
		return "", apperror.Unauthorized("authentication required")
	}
	rideID, err := RideIDFromChannel(channel)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, h.storeTimeout)
	defer cancel()

	ride, err := h.rides.Get(ctx, rideID)
	if err != nil {
		if apperror.IsDomain(err) {
			return "", apperror.Forbidden("not a participant of this ride")
		}
		return "", apperror.Internal("get ride", err)
	}
	if !ride.IsParticipant(principal.UserID) {
		return "", apperror.Forbidden("not a participant of this ride")
	}
	return rideID, nil
}

// Deliver writes update to the sockets subscribed to its ride. Participation
// is checked again against the update itself, so a socket that subscribed
// before a driver change only receives what it is still entitled to.
func (h *Hub) Deliver(update models.RideUpdate) int {
	if h.manager == nil {
		return 0
	}
	return h.manager.Broadcast(ChannelForRide(update.RideID), constants.EventRideUpdate, update, func(c *websocket.Client) bool {
		return c.Principal != nil && isParticipant(update, c.Principal.UserID)
	})
}

func isParticipant(update models.RideUpdate, userID string) bool {
	if userID == "" {
		return false
	}
	return update.PassengerID == userID || (update.DriverID != nil && *update.DriverID == userID)
}
