// Package lifecycle holds the ride state machine. The transitions map is the
// only place that decides which actor may move a ride from one status to
// another; everything else asks it.
package lifecycle

import (
	"fmt"

	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/models"
)

// Actor is the kind of party asking for a transition
type Actor string

const (
	ActorPassenger Actor = "passenger"
	ActorDriver    Actor = "driver"
	ActorSystem    Actor = "system"
)

// Action is a requested status change
type Action string

const (
	ActionAssign   Action = "assign"
	ActionAccept   Action = "accept"
	ActionArrive   Action = "arrive"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Actors and Actions list every value, for callers that enumerate the table
var (
	Actors  = []Actor{ActorPassenger, ActorDriver, ActorSystem}
	Actions = []Action{ActionAssign, ActionAccept, ActionArrive, ActionStart, ActionComplete, ActionCancel}
)

type transitionKey struct {
	from   models.RideStatus
	actor  Actor
	action Action
}

var transitions = map[transitionKey]models.RideStatus{
	{models.RideStatusRequested, ActorPassenger, ActionCancel}: models.RideStatusCancelledByPassenger,
	{models.RideStatusRequested, ActorDriver, ActionAccept}:    models.RideStatusDriverAccepted,
	{models.RideStatusRequested, ActorSystem, ActionAssign}:    models.RideStatusDriverAssigned,
	{models.RideStatusRequested, ActorSystem, ActionCancel}:    models.RideStatusCancelledSystem,

	{models.RideStatusDriverAssigned, ActorPassenger, ActionCancel}: models.RideStatusCancelledByPassenger,
	{models.RideStatusDriverAssigned, ActorDriver, ActionAccept}:    models.RideStatusDriverAccepted,
	{models.RideStatusDriverAssigned, ActorSystem, ActionCancel}:    models.RideStatusCancelledSystem,

	{models.RideStatusDriverAccepted, ActorPassenger, ActionCancel}: models.RideStatusCancelledByPassenger,
	{models.RideStatusDriverAccepted, ActorDriver, ActionArrive}:    models.RideStatusDriverArriving,
	{models.RideStatusDriverAccepted, ActorDriver, ActionCancel}:    models.RideStatusCancelledByDriver,
	{models.RideStatusDriverAccepted, ActorSystem, ActionCancel}:    models.RideStatusCancelledSystem,

	{models.RideStatusDriverArriving, ActorPassenger, ActionCancel}: models.RideStatusCancelledByPassenger,
	{models.RideStatusDriverArriving, ActorDriver, ActionStart}:     models.RideStatusInProgress,
	{models.RideStatusDriverArriving, ActorDriver, ActionCancel}:    models.RideStatusCancelledByDriver,
	{models.RideStatusDriverArriving, ActorSystem, ActionCancel}:    models.RideStatusCancelledSystem,

	{models.RideStatusInProgress, ActorDriver, ActionComplete}: models.RideStatusCompleted,
}

// Target returns the status the action leads to from the given status, and
// whether the table permits it at all
func Target(from models.RideStatus, actor Actor, action Action) (models.RideStatus, bool) {
	to, ok := transitions[transitionKey{from: from, actor: actor, action: action}]
	return to, ok
}

// actionTarget is the status an action aims for regardless of the current
// status. It names the "to" side of a rejected transition.
func actionTarget(actor Actor, action Action) (models.RideStatus, error) {
	switch action {
	case ActionAssign:
		return models.RideStatusDriverAssigned, nil
	case ActionAccept:
		return models.RideStatusDriverAccepted, nil
	case ActionArrive:
		return models.RideStatusDriverArriving, nil
	case ActionStart:
		return models.RideStatusInProgress, nil
	case ActionComplete:
		return models.RideStatusCompleted, nil
	case ActionCancel:
		switch actor {
		case ActorPassenger:
			return models.RideStatusCancelledByPassenger, nil
		case ActorDriver:
			return models.RideStatusCancelledByDriver, nil
		case ActorSystem:
			return models.RideStatusCancelledSystem, nil
		}
	}
	return "", apperror.InvalidInput(fmt.Sprintf("unknown action %q for actor %q", action, actor))
}

// Apply moves ride through one transition. actorID is the acting user; for a
// system assign it is the driver being assigned. The ride is only modified
// when nil is returned.
func Apply(ride *models.Ride, actor Actor, action Action, actorID string) error {
	target, err := actionTarget(actor, action)
	if err != nil {
		return err
	}

	to, ok := Target(ride.Status, actor, action)
	if !ok {
		return apperror.InvalidTransition(string(ride.Status), string(target))
	}

	if err := authorize(ride, actor, action, actorID); err != nil {
		return err
	}

	switch {
	case action == ActionAssign:
		ride.DriverID = &actorID
	case action == ActionAccept && !ride.HasDriver():
		ride.DriverID = &actorID
	case action == ActionComplete && ride.FinalFare == nil:
		fare := ride.EstimatedFare
		ride.FinalFare = &fare
	}
	ride.Status = to
	ride.UpdatedAt = models.Now()
	return nil
}

func authorize(ride *models.Ride, actor Actor, action Action, actorID string) error {
	switch actor {
	case ActorPassenger:
		if actorID == "" || actorID != ride.PassengerID {
			return apperror.Forbidden("only the ride's passenger may do this")
		}
	case ActorDriver:
		if actorID == "" {
			return apperror.Forbidden("driver identity required")
		}
		if !ride.HasDriver() {
			if action != ActionAccept {
				return apperror.Forbidden("ride has no driver")
			}
			return nil
		}
		if *ride.DriverID != actorID {
			return apperror.Forbidden("only the ride's driver may do this")
		}
	case ActorSystem:
		if action == ActionAssign && actorID == "" {
			return apperror.InvalidInput("driver id required to assign a ride")
		}
	}
	return nil
}

// Rate records a 1-5 rating on a completed ride. The passenger rates the
// driver and the driver rates the passenger; a repeated rating overwrites
// the previous one.
func Rate(ride *models.Ride, actor Actor, actorID string, stars int) error {
	switch actor {
	case ActorPassenger:
		if actorID == "" || actorID != ride.PassengerID {
			return apperror.Forbidden("only the ride's passenger may rate its driver")
		}
	case ActorDriver:
		if !ride.IsDriver(actorID) {
			return apperror.Forbidden("only the ride's driver may rate its passenger")
		}
	default:
		return apperror.Forbidden(fmt.Sprintf("%s may not rate rides", actor))
	}

	if ride.Status != models.RideStatusCompleted {
		return apperror.InvalidInput("ride not completed")
	}
	if stars < 1 || stars > 5 {
		return apperror.InvalidInput("rating must be between 1 and 5")
	}

	v := stars
	if actor == ActorPassenger {
		ride.DriverRating = &v
	} else {
		ride.PassengerRating = &v
	}
	ride.UpdatedAt = models.Now()
	return nil
}
