package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order-id formats shared with the gateway merchant configuration.
// They must round-trip bit-for-bit: reconciliation parses the booking
// reference back out of the order id.
//
//	BOOKING_{bookingId}_{unixMillis}
//	BANK_{unixMillis}_{orderId}
const (
	orderIDPrefixBooking = "BOOKING_"
	orderIDPrefixBank    = "BANK_"
)

// OrderRef is the parsed form of an order id.
type OrderRef struct {
	BookingID *uuid.UUID
	IssuedAt  time.Time

	// WrappedOrderID is set for BANK order ids, which wrap the order id
	// of the attempt they pay for.
	WrappedOrderID string
}

// BuildBookingOrderID derives the order id for a payment against an
// existing booking.
func BuildBookingOrderID(bookingID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s%s_%d", orderIDPrefixBooking, bookingID, now.UnixMilli())
}

// BuildBankOrderID derives the order id for a bank-transfer attempt
// wrapping an existing order id.
func BuildBankOrderID(now time.Time, orderID string) string {
	return fmt.Sprintf("%s%d_%s", orderIDPrefixBank, now.UnixMilli(), orderID)
}

// ParseOrderID recovers the embedded booking reference. Bank order ids
// are unwrapped recursively so BANK_{ms}_BOOKING_{id}_{ms} resolves to
// the booking.
func ParseOrderID(orderID string) (*OrderRef, error) {
	switch {
	case strings.HasPrefix(orderID, orderIDPrefixBooking):
		rest := strings.TrimPrefix(orderID, orderIDPrefixBooking)
		idx := strings.LastIndex(rest, "_")
		if idx < 0 {
			return nil, ErrInvalidOrderID
		}
		bookingID, err := uuid.Parse(rest[:idx])
		if err != nil {
			return nil, ErrInvalidOrderID
		}
		millis, err := strconv.ParseInt(rest[idx+1:], 10, 64)
		if err != nil {
			return nil, ErrInvalidOrderID
		}
		return &OrderRef{
			BookingID: &bookingID,
			IssuedAt:  time.UnixMilli(millis),
		}, nil

	case strings.HasPrefix(orderID, orderIDPrefixBank):
		rest := strings.TrimPrefix(orderID, orderIDPrefixBank)
		idx := strings.Index(rest, "_")
		if idx < 0 {
			return nil, ErrInvalidOrderID
		}
		millis, err := strconv.ParseInt(rest[:idx], 10, 64)
		if err != nil {
			return nil, ErrInvalidOrderID
		}
		wrapped := rest[idx+1:]
		if wrapped == "" {
			return nil, ErrInvalidOrderID
		}

		ref := &OrderRef{
			IssuedAt:       time.UnixMilli(millis),
			WrappedOrderID: wrapped,
		}
		if inner, err := ParseOrderID(wrapped); err == nil {
			ref.BookingID = inner.BookingID
		}
		return ref, nil
	}

	return nil, ErrInvalidOrderID
}
