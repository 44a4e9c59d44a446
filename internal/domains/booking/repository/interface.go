package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/domains/booking/model"
)

// BookingRepository is the only mutation path for booking rows. All
// atomicity requirements (availability re-check, CAS updates) are
// enforced at this boundary, never through ad hoc updates.
type BookingRepository interface {
	// CreateWithAvailabilityCheck inserts the booking inside a
	// serializable transaction that re-counts booked rooms first,
	// closing the gap between the pre-check and the insert. totalRooms
	// is the physical room count for the booking's (hotel, room type).
	// Returns model.ErrNoAvailability when the re-count fails and
	// model.ErrBookingCodeConflict on a booking-code collision.
	CreateWithAvailabilityCheck(ctx context.Context, b *model.Booking, totalRooms int) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)

	ListByUser(ctx context.Context, userID uuid.UUID, status *string, page, limit int) ([]model.Booking, int, error)

	// ListConflicting returns the user's blocking-status bookings whose
	// checkout date has not passed, joined with the hotel name. The
	// window is anchored to today on purpose, not to the dates of the
	// booking being requested.
	ListConflicting(ctx context.Context, userID uuid.UUID, today time.Time) ([]model.ConflictingBooking, error)

	// CountBookedRooms counts rooms held by blocking-status bookings
	// overlapping [checkIn, checkOut) with half-open semantics.
	// Assigned rooms are counted once each regardless of how many of
	// their bookings overlap; unassigned bookings contribute their
	// room_count.
	CountBookedRooms(ctx context.Context, hotelID, roomTypeID uuid.UUID, checkIn, checkOut time.Time) (int, error)

	// Cancel transitions pending/confirmed -> cancelled atomically and
	// returns the updated row. model.ErrInvalidState when the status
	// guard loses the race.
	Cancel(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*model.Booking, error)

	UpdateRefundStatus(ctx context.Context, id uuid.UUID, status string, amount *decimal.Decimal, transactionID *string) error

	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error

	// Confirm transitions pending/confirmed -> confirmed and stamps the
	// payment status in one guarded update. Returns false when the
	// booking is already in a terminal state; the row is left untouched.
	Confirm(ctx context.Context, id uuid.UUID, paymentStatus string) (bool, error)

	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error

	// MarkVipPointsAdded flips vip_points_added false -> true in one
	// conditional update. Returns true only for the caller that won;
	// concurrent duplicates observe false and skip side effects.
	MarkVipPointsAdded(ctx context.Context, id uuid.UUID) (bool, error)
}
