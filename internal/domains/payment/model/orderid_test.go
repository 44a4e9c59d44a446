package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingOrderIDRoundTrip(t *testing.T) {
	bookingID := uuid.New()
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	orderID := BuildBookingOrderID(bookingID, now)
	assert.Equal(t, fmt.Sprintf("BOOKING_%s_%d", bookingID, now.UnixMilli()), orderID)

	ref, err := ParseOrderID(orderID)
	require.NoError(t, err)
	require.NotNil(t, ref.BookingID)
	assert.Equal(t, bookingID, *ref.BookingID)
	assert.Equal(t, now.UnixMilli(), ref.IssuedAt.UnixMilli())
}

func TestBankOrderIDWrapsBookingOrderID(t *testing.T) {
	bookingID := uuid.New()
	issued := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	wrapped := BuildBookingOrderID(bookingID, issued)

	bankTime := issued.Add(5 * time.Minute)
	orderID := BuildBankOrderID(bankTime, wrapped)
	assert.Equal(t, fmt.Sprintf("BANK_%d_%s", bankTime.UnixMilli(), wrapped), orderID)

	ref, err := ParseOrderID(orderID)
	require.NoError(t, err)
	assert.Equal(t, wrapped, ref.WrappedOrderID)
	require.NotNil(t, ref.BookingID)
	assert.Equal(t, bookingID, *ref.BookingID)
}

func TestParseOrderID_Invalid(t *testing.T) {
	cases := []string{
		"",
		"ORDER_123",
		"BOOKING_not-a-uuid_1756463400000",
		"BOOKING_" + uuid.NewString(),
		"BANK_",
		"BANK_abc_X",
		"BANK_1756463400000_",
	}

	for _, orderID := range cases {
		t.Run(orderID, func(t *testing.T) {
			_, err := ParseOrderID(orderID)
			assert.ErrorIs(t, err, ErrInvalidOrderID)
		})
	}
}

func TestParseOrderID_BankWithOpaqueInnerID(t *testing.T) {
	// Bank transfers can pay for attempts whose order ids are not in
	// the booking format; the wrapped id is still recoverable.
	ref, err := ParseOrderID("BANK_1756463400000_LEGACY-42")
	require.NoError(t, err)
	assert.Nil(t, ref.BookingID)
	assert.Equal(t, "LEGACY-42", ref.WrappedOrderID)
}
