package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE BOOKING REQUEST/RESPONSE
// =====================================================

type CreateBookingRequest struct {
	HotelID      uuid.UUID `json:"hotel_id"`
	RoomTypeID   uuid.UUID `json:"room_type_id"`
	CheckInDate  time.Time `json:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date"`

	GuestName  string  `json:"guest_name"`
	GuestEmail string  `json:"guest_email"`
	GuestPhone *string `json:"guest_phone,omitempty"`
	GuestCount int     `json:"guest_count"`

	RoomCount int             `json:"room_count"`
	RoomPrice decimal.Decimal `json:"room_price"`
	Discount  decimal.Decimal `json:"discount"`

	PaymentMethod string          `json:"payment_method"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`

	// PaymentStatus is supplied by gateway-first flows where money
	// settled before the booking row exists. Defaults to pending.
	PaymentStatus string `json:"payment_status,omitempty"`

	CancellationAllowed bool `json:"cancellation_allowed"`
}

func (r *CreateBookingRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.HotelID, validation.By(requiredUUID)),
		validation.Field(&r.RoomTypeID, validation.By(requiredUUID)),
		validation.Field(&r.GuestName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.GuestEmail, validation.Required, is.Email),
		validation.Field(&r.GuestCount, validation.Required, validation.Min(1)),
		validation.Field(&r.RoomCount, validation.Required, validation.Min(1)),
		validation.Field(&r.PaymentMethod, validation.Required, validation.In(
			PaymentMethodVNPay, PaymentMethodMomo, PaymentMethodBankTransfer, PaymentMethodCash)),
	); err != nil {
		return err
	}

	if !r.CheckOutDate.After(r.CheckInDate) {
		return validation.NewError("validation_dates", "check_out_date must be after check_in_date")
	}
	if r.RoomPrice.IsNegative() || r.Discount.IsNegative() || r.PaymentAmount.IsNegative() {
		return validation.NewError("validation_amounts", "prices must be non-negative")
	}
	if r.PaymentStatus != "" {
		switch r.PaymentStatus {
		case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		default:
			return validation.NewError("validation_payment_status", "invalid payment_status")
		}
	}

	return nil
}

// Nights returns the stay length in whole nights.
func (r *CreateBookingRequest) NightCount() int {
	return int(r.CheckOutDate.Sub(r.CheckInDate).Hours() / 24)
}

// SubtotalAmount = price * nights * rooms.
func (r *CreateBookingRequest) SubtotalAmount() decimal.Decimal {
	return r.RoomPrice.
		Mul(decimal.NewFromInt(int64(r.NightCount()))).
		Mul(decimal.NewFromInt(int64(r.RoomCount)))
}

// FinalPriceAmount = subtotal - discount, clamped at zero.
func (r *CreateBookingRequest) FinalPriceAmount() decimal.Decimal {
	final := r.SubtotalAmount().Sub(r.Discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

func requiredUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

// =====================================================
// CANCEL / REFUND REQUESTS
// =====================================================

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelBookingRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason, validation.Length(0, 500)),
	)
}

// UpdateRefundStatusRequest is trusted input from the refund workflow;
// no business validation beyond the status enum.
type UpdateRefundStatusRequest struct {
	Status        string           `json:"status"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	TransactionID *string          `json:"transaction_id,omitempty"`
}

func (r *UpdateRefundStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required, validation.In(
			RefundStatusNone, RefundStatusRequested, RefundStatusCompleted, RefundStatusFailed)),
	)
}

type AdminUpdateStatusRequest struct {
	BookingStatus string `json:"booking_status"`
}

func (r *AdminUpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BookingStatus, validation.Required,
			validation.In(toAnySlice(ValidBookingStatuses)...)),
	)
}

func toAnySlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// =====================================================
// LIST BOOKINGS
// =====================================================

type ListBookingsRequest struct {
	Status *string `form:"status"`
	Page   int     `form:"page"`
	Limit  int     `form:"limit"`
}

func (r *ListBookingsRequest) Validate() error {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
	return nil
}
