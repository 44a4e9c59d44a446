package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PAYMENT ATTEMPT ENTITY
// =====================================================

// PaymentAttempt is one external-gateway transaction. The order id is
// caller-generated because the booking row may not exist yet when the
// payment is initiated (gateway-first flows); the intended booking is
// carried in ExtraData until money settles.
type PaymentAttempt struct {
	OrderID    string     `json:"order_id" db:"order_id"`
	BookingRef *uuid.UUID `json:"booking_ref,omitempty" db:"booking_ref"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`

	Gateway string          `json:"gateway" db:"gateway"`
	Amount  decimal.Decimal `json:"amount" db:"amount"`

	Status       string  `json:"status" db:"status"`
	GatewayTxnID *string `json:"gateway_txn_id,omitempty" db:"gateway_txn_id"`

	// ExtraData is the snapshot of the intended booking, captured at
	// payment-initiation time.
	ExtraData *BookingSnapshot `json:"extra_data,omitempty" db:"extra_data"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	SettledAt *time.Time `json:"settled_at,omitempty" db:"settled_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsSettled reports whether the attempt has reached a terminal status.
func (p *PaymentAttempt) IsSettled() bool {
	return p.Status == AttemptStatusCompleted || p.Status == AttemptStatusFailed
}

// =====================================================
// BOOKING SNAPSHOT (extra_data payload)
// =====================================================

// BookingSnapshot is everything needed to materialize a booking after
// settlement. BookingID is set when the booking row already existed at
// initiation time; otherwise the confirmation engine creates one.
type BookingSnapshot struct {
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	UserID    uuid.UUID  `json:"user_id"`

	HotelID      uuid.UUID `json:"hotel_id"`
	RoomTypeID   uuid.UUID `json:"room_type_id"`
	CheckInDate  time.Time `json:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date"`

	GuestName  string  `json:"guest_name"`
	GuestEmail string  `json:"guest_email"`
	GuestPhone *string `json:"guest_phone,omitempty"`
	GuestCount int     `json:"guest_count"`

	RoomCount  int             `json:"room_count"`
	RoomPrice  decimal.Decimal `json:"room_price"`
	Discount   decimal.Decimal `json:"discount"`
	FinalPrice decimal.Decimal `json:"final_price"`
	TotalPrice decimal.Decimal `json:"total_price"`

	PaymentMethod       string `json:"payment_method"`
	CancellationAllowed bool   `json:"cancellation_allowed"`
}

// EffectiveTotal is the denominator of the paid fraction. FinalPrice
// wins; TotalPrice is a fallback for snapshots written before discounts
// were captured.
func (s *BookingSnapshot) EffectiveTotal() decimal.Decimal {
	if s.FinalPrice.IsPositive() {
		return s.FinalPrice
	}
	return s.TotalPrice
}

// =====================================================
// WEBHOOK LOG ENTITY
// =====================================================

// WebhookLog is the audit trail of every gateway callback, valid or
// not. Unprocessed valid rows are retried by a scheduled job.
type WebhookLog struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID *string   `json:"order_id,omitempty" db:"order_id"`
	Gateway string    `json:"gateway" db:"gateway"`

	Body      map[string]interface{} `json:"body" db:"body"`
	Signature *string                `json:"signature,omitempty" db:"signature"`

	IsValid         *bool   `json:"is_valid,omitempty" db:"is_valid"`
	IsProcessed     bool    `json:"is_processed" db:"is_processed"`
	ProcessingError *string `json:"processing_error,omitempty" db:"processing_error"`
	RetryCount      int     `json:"retry_count" db:"retry_count"`

	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}

// =====================================================
// SETTLEMENT / CONFIRMATION RESULTS
// =====================================================

// Settlement is the normalized form every gateway callback reduces to.
type Settlement struct {
	OrderID      string
	Amount       decimal.Decimal
	Succeeded    bool
	GatewayTxnID string
	Gateway      string
}

// ConfirmationResult reports what the confirmation engine decided.
type ConfirmationResult struct {
	Confirmed    bool             `json:"confirmed"`
	PaidFraction decimal.Decimal  `json:"paid_fraction"`
	BookingID    *uuid.UUID       `json:"booking_id,omitempty"`
}
