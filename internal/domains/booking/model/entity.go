package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// BOOKING ENTITY
// =====================================================

// Booking is one reservation of RoomCount rooms of a single room type
// at one hotel for one user. Rows are never deleted; cancellation is a
// status transition so that occupancy can always be derived from the
// booking history.
type Booking struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BookingCode string    `json:"booking_code" db:"booking_code"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`

	// Stay
	HotelID      uuid.UUID  `json:"hotel_id" db:"hotel_id"`
	RoomTypeID   uuid.UUID  `json:"room_type_id" db:"room_type_id"`
	RoomID       *uuid.UUID `json:"room_id,omitempty" db:"room_id"`
	CheckInDate  time.Time  `json:"check_in_date" db:"check_in_date"`
	CheckOutDate time.Time  `json:"check_out_date" db:"check_out_date"`

	// Guest
	GuestName  string  `json:"guest_name" db:"guest_name"`
	GuestEmail string  `json:"guest_email" db:"guest_email"`
	GuestPhone *string `json:"guest_phone,omitempty" db:"guest_phone"`
	GuestCount int     `json:"guest_count" db:"guest_count"`

	// Commercial. FinalPrice is fixed at creation and never recomputed
	// from payments.
	RoomCount  int             `json:"room_count" db:"room_count"`
	RoomPrice  decimal.Decimal `json:"room_price" db:"room_price"`
	Nights     int             `json:"nights" db:"nights"`
	Subtotal   decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	FinalPrice decimal.Decimal `json:"final_price" db:"final_price"`

	PaymentMethod string `json:"payment_method" db:"payment_method"`
	BookingStatus string `json:"booking_status" db:"booking_status"`
	PaymentStatus string `json:"payment_status" db:"payment_status"`

	// Cancellation
	CancellationAllowed bool       `json:"cancellation_allowed" db:"cancellation_allowed"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason  *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`

	// Refund
	RefundStatus        string           `json:"refund_status" db:"refund_status"`
	RefundAmount        *decimal.Decimal `json:"refund_amount,omitempty" db:"refund_amount"`
	RefundTransactionID *string          `json:"refund_transaction_id,omitempty" db:"refund_transaction_id"`

	// VipPointsAdded flips false -> true at most once per booking. It is
	// the idempotency marker that keeps duplicate confirmation triggers
	// from double-crediting loyalty points.
	VipPointsAdded bool `json:"vip_points_added" db:"vip_points_added"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsBlocking reports whether this booking counts against availability.
func (b *Booking) IsBlocking() bool {
	switch b.BookingStatus {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress, BookingStatusCheckedIn:
		return true
	}
	return false
}

// CanBeCancelled checks the status precondition for a guest
// cancellation. The 24h window and the cancellation_allowed flag are
// enforced separately by the service.
func (b *Booking) CanBeCancelled() bool {
	return b.BookingStatus == BookingStatusPending || b.BookingStatus == BookingStatusConfirmed
}

// HoursUntilCheckIn returns the lead time before the stay begins.
func (b *Booking) HoursUntilCheckIn(now time.Time) float64 {
	return b.CheckInDate.Sub(now).Hours()
}

// =====================================================
// AVAILABILITY SNAPSHOT (derived, not stored)
// =====================================================

// Availability is recomputed per query; it is not an entity. A negative
// Available indicates an already-overbooked state and is surfaced as-is.
type Availability struct {
	HotelID    uuid.UUID `json:"hotel_id"`
	RoomTypeID uuid.UUID `json:"room_type_id"`
	Total      int       `json:"total"`
	Booked     int       `json:"booked"`
	Available  int       `json:"available"`
}

// =====================================================
// ADMISSION DECISION
// =====================================================

// Decision is the admission guard's verdict. On rejection it carries
// enough structure for the client to offer a remediation path.
type Decision struct {
	Allow                bool       `json:"allow"`
	Reason               string     `json:"reason,omitempty"`
	RequiresPayment      bool       `json:"requires_payment"`
	MinPaymentPercentage int        `json:"min_payment_percentage,omitempty"`
	ConflictHotelName    string     `json:"conflict_hotel_name,omitempty"`
	ConflictCheckOut     *time.Time `json:"conflict_check_out,omitempty"`
}

// ConflictingBooking is the projection the admission guard works on: a
// blocking-status booking of the same user whose checkout has not yet
// passed, joined with its hotel name for the rejection message.
type ConflictingBooking struct {
	ID            uuid.UUID
	HotelID       uuid.UUID
	HotelName     string
	BookingStatus string
	CheckOutDate  time.Time
}
