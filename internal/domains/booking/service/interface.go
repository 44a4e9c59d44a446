package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hotelbooking-backend/internal/domains/booking/model"
)

// BookingService owns the booking lifecycle: admission policy,
// availability, creation, cancellation and the status primitives the
// payment reconciliation flow drives.
type BookingService interface {
	// CheckAvailability recomputes the inventory snapshot for the
	// requested stay. Available may be negative when the hotel is
	// already overbooked; it is returned as-is.
	CheckAvailability(ctx context.Context, hotelID, roomTypeID uuid.UUID, checkIn, checkOut time.Time) (*model.Availability, error)

	// EvaluateAdmission applies the one-active-stay policy. It never
	// mutates state; creation re-validates availability at insert time.
	EvaluateAdmission(ctx context.Context, userID, hotelID uuid.UUID, req *model.CreateBookingRequest) (*model.Decision, error)

	// CreateBooking runs the admission guard, then the availability
	// check and insert, then fire-and-forget side effects for bookings
	// created already paid.
	CreateBooking(ctx context.Context, userID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error)

	// CreateFromSnapshot persists a booking on behalf of the
	// confirmation engine after money has settled. It skips the
	// admission guard; rejecting a paid reservation would strand the
	// customer's money.
	CreateFromSnapshot(ctx context.Context, userID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error)

	GetBooking(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*model.Booking, error)

	ListBookings(ctx context.Context, userID uuid.UUID, req *model.ListBookingsRequest) ([]model.Booking, int, error)

	// CancelBooking enforces ownership, the rate-plan flag, the 24h
	// window and the status precondition, in that order.
	CancelBooking(ctx context.Context, id, requesterID uuid.UUID, reason string) (*model.Booking, error)

	// UpdateRefundStatus trusts its caller (refund workflow); no
	// business validation beyond the DTO enum.
	UpdateRefundStatus(ctx context.Context, id uuid.UUID, req *model.UpdateRefundStatusRequest) error

	// UpdateBookingStatus is the operator override. It bypasses
	// transition guards on purpose.
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error

	SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) error

	// ConfirmBooking moves a booking to confirmed with the given
	// payment status. The transition only applies from pending or
	// confirmed; a cancelled or completed booking returns false and is
	// not touched. Used by the confirmation engine.
	ConfirmBooking(ctx context.Context, id uuid.UUID, paymentStatus string) (bool, error)

	// MarkVipPointsAdded flips the loyalty idempotency flag. Returns
	// true only for the single winning caller.
	MarkVipPointsAdded(ctx context.Context, id uuid.UUID) (bool, error)
}
