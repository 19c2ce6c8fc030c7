package core

import (
	"fmt"

	"github.com/qmuntal/stateless"

	"petcare-backend-go/internal/models"
)

const (
	triggerConfirm  = "confirm"
	triggerCancel   = "cancel"
	triggerComplete = "complete"
	triggerStay     = "stay"
	triggerInvalid  = "invalid"
)

// checkTransition fires the booking lifecycle machine from -> to:
// pending -> confirmed | cancelled, confirmed -> completed. Staying in a state is allowed.
func checkTransition(from, to models.BookingStatus) error {
	machine := stateless.NewStateMachine(from)

	machine.Configure(models.BookingStatusPending).
		Permit(triggerConfirm, models.BookingStatusConfirmed).
		Permit(triggerCancel, models.BookingStatusCancelled).
		PermitReentry(triggerStay)

	machine.Configure(models.BookingStatusConfirmed).
		Permit(triggerComplete, models.BookingStatusCompleted).
		PermitReentry(triggerStay)

	machine.Configure(models.BookingStatusCancelled).
		PermitReentry(triggerStay)

	machine.Configure(models.BookingStatusCompleted).
		PermitReentry(triggerStay)

	if err := machine.Fire(transitionTrigger(from, to)); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func transitionTrigger(from, to models.BookingStatus) string {
	if from == to {
		return triggerStay
	}
	switch to {
	case models.BookingStatusConfirmed:
		return triggerConfirm
	case models.BookingStatusCancelled:
		return triggerCancel
	case models.BookingStatusCompleted:
		return triggerComplete
	}
	return triggerInvalid
}
