package model

// =====================================================
// BOOKING STATUS
// =====================================================
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusInProgress = "in_progress"
	BookingStatusCheckedIn  = "checked_in"
	BookingStatusCheckedOut = "checked_out"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
)

var ValidBookingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCheckedIn,
	BookingStatusCheckedOut,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// BlockingStatuses are the statuses that count against room
// availability. Pending is included on purpose: an unpaid hold still
// reserves inventory, otherwise two concurrent unpaid requests could
// both be told the room is free.
var BlockingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCheckedIn,
}

// =====================================================
// PAYMENT STATUS
// =====================================================
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// =====================================================
// PAYMENT METHOD
// =====================================================
const (
	PaymentMethodVNPay        = "vnpay"
	PaymentMethodMomo         = "momo"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
)

var ValidPaymentMethods = []string{
	PaymentMethodVNPay,
	PaymentMethodMomo,
	PaymentMethodBankTransfer,
	PaymentMethodCash,
}

// =====================================================
// REFUND STATUS
// =====================================================
const (
	RefundStatusNone      = "none"
	RefundStatusRequested = "requested"
	RefundStatusCompleted = "completed"
	RefundStatusFailed    = "failed"
)

// =====================================================
// POLICY CONSTANTS
// =====================================================
const (
	// DepositFraction is the minimum paid fraction that both confirms a
	// reservation and unlocks a second booking at an already-active hotel.
	DepositFraction = 0.5

	// MinDepositPercentage is DepositFraction expressed for API responses.
	MinDepositPercentage = 50

	// CancellationWindowHours is the minimum lead time before check-in
	// for a guest-initiated cancellation. 24h exactly is still allowed.
	CancellationWindowHours = 24

	// BookingCodeMaxAttempts bounds retries when a generated booking
	// code collides with an existing one.
	BookingCodeMaxAttempts = 5
)

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodeValidation           = "BKG001"
	ErrCodeNoAvailability       = "BKG002"
	ErrCodeActiveBookingElse    = "BKG003"
	ErrCodeDepositRequired      = "BKG004"
	ErrCodeBookingNotFound      = "BKG005"
	ErrCodeNotOwner             = "BKG006"
	ErrCodeCancellationBlocked  = "BKG007"
	ErrCodeCancellationTooLate  = "BKG008"
	ErrCodeInvalidState         = "BKG009"
	ErrCodeRoomTypeNotFound     = "BKG010"
	ErrCodeCodeExhausted        = "BKG011"
	ErrCodeInternalError        = "BKG012"
)
