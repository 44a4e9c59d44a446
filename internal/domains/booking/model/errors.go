package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrBookingNotFound        = errors.New("booking not found")
	ErrRoomTypeNotFound       = errors.New("room type not found")
	ErrNoAvailability         = errors.New("no rooms available for the requested dates")
	ErrActiveBookingElsewhere = errors.New("user has an active booking at another hotel")
	ErrDepositRequired        = errors.New("minimum deposit required for an additional booking at this hotel")
	ErrNotOwner               = errors.New("booking belongs to another user")
	ErrCancellationBlocked    = errors.New("booking rate plan does not allow cancellation")
	ErrCancellationTooLate    = errors.New("cancellation window closed: less than 24h before check-in")
	ErrInvalidState           = errors.New("booking status does not permit this transition")
	ErrCodeExhausted          = errors.New("could not generate a unique booking code")
	ErrBookingCodeConflict    = errors.New("booking code already exists")
)

// =====================================================
// CUSTOM BOOKING ERROR
// =====================================================

type BookingError struct {
	Code    string
	Message string
	Err     error

	// Decision carries the admission guard verdict on policy
	// rejections so handlers can return remediation details.
	Decision *Decision
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewBookingError(code, message string, err error) *BookingError {
	return &BookingError{Code: code, Message: message, Err: err}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewNoAvailabilityError(available int) *BookingError {
	return NewBookingError(
		ErrCodeNoAvailability,
		fmt.Sprintf("Not enough rooms available (%d left)", available),
		ErrNoAvailability,
	)
}

func NewDepositRequiredError(decision *Decision) *BookingError {
	e := NewBookingError(
		ErrCodeDepositRequired,
		fmt.Sprintf("Booking another room at this hotel requires a non-cash payment of at least %d%%", MinDepositPercentage),
		ErrDepositRequired,
	)
	e.Decision = decision
	return e
}

func NewActiveBookingElsewhereError(decision *Decision) *BookingError {
	e := NewBookingError(
		ErrCodeActiveBookingElse,
		fmt.Sprintf("You already have an active booking at %s until %s",
			decision.ConflictHotelName, decision.ConflictCheckOut.Format("2006-01-02")),
		ErrActiveBookingElsewhere,
	)
	e.Decision = decision
	return e
}

func NewCancellationTooLateError(hoursLeft float64) *BookingError {
	return NewBookingError(
		ErrCodeCancellationTooLate,
		fmt.Sprintf("Cancellation requires at least %dh before check-in (%.0fh left)", CancellationWindowHours, hoursLeft),
		ErrCancellationTooLate,
	)
}

func NewInvalidStateError(status string) *BookingError {
	return NewBookingError(
		ErrCodeInvalidState,
		fmt.Sprintf("Booking in status %q cannot be cancelled", status),
		ErrInvalidState,
	)
}
