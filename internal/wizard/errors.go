package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrStepNotActive is returned when an action is not offered at the current step.
	ErrStepNotActive = errors.New("wizard: action not available at current step")

	// ErrUnknownService is returned when the service ID is not in the catalog.
	ErrUnknownService = errors.New("wizard: unknown service")

	// ErrDateOutsideWindow is returned for dates outside the bookable 7-day window.
	ErrDateOutsideWindow = errors.New("wizard: date outside booking window")

	// ErrUnknownSlot is returned when the time does not match any slot.
	ErrUnknownSlot = errors.New("wizard: unknown time slot")

	// ErrSlotUnavailable is returned when the chosen slot is not bookable.
	ErrSlotUnavailable = errors.New("wizard: time slot unavailable")

	// ErrUnknownField is returned for contact fields other than name, email and phone.
	ErrUnknownField = errors.New("wizard: unknown contact field")

	// ErrMissingContact is returned when a required contact field is empty.
	ErrMissingContact = errors.New("required")

	// ErrInvalidEmail is returned when the email lacks a local@domain shape.
	ErrInvalidEmail = errors.New("must be an email address")
)

// ValidationError reports which contact field blocked submission.
type ValidationError struct {
	Field ContactField
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
