package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/domains/payment/model"
)

// AttemptRepository is the payment ledger. Attempts transition
// pending -> completed | failed exactly once; all settlement goes
// through the compare-and-swap in Settle.
type AttemptRepository interface {
	// RecordAttempt inserts a pending row. model.ErrDuplicateOrderID on
	// an order-id collision.
	RecordAttempt(ctx context.Context, attempt *model.PaymentAttempt) error

	GetByOrderID(ctx context.Context, orderID string) (*model.PaymentAttempt, error)

	// Settle flips pending -> status with one guarded update. Settling
	// an already-settled attempt with the same outcome is a no-op;
	// a differing outcome returns model.ErrSettlementConflict.
	Settle(ctx context.Context, orderID, status string, gatewayTxnID *string) error

	// SumCompleted totals the completed attempts of one booking's order
	// family.
	SumCompleted(ctx context.Context, bookingRef uuid.UUID) (decimal.Decimal, error)

	// LinkBooking back-fills booking_ref once the confirmation engine
	// has materialized the booking row for a gateway-first attempt.
	LinkBooking(ctx context.Context, orderID string, bookingID uuid.UUID) error

	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.PaymentAttempt, int, error)
}

// WebhookRepository is the callback audit log. Every gateway callback
// is recorded before processing; rows that verified but failed to
// process are retried by a scheduled job.
type WebhookRepository interface {
	Insert(ctx context.Context, log *model.WebhookLog) error

	MarkProcessed(ctx context.Context, id uuid.UUID) error

	// MarkError records the processing failure and bumps retry_count.
	MarkError(ctx context.Context, id uuid.UUID, processingError string) error

	// ListUnprocessed returns valid, unprocessed rows with fewer than
	// maxRetries attempts, oldest first.
	ListUnprocessed(ctx context.Context, limit, maxRetries int) ([]model.WebhookLog, error)
}
