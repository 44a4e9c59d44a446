package service

import (
	"context"

	"github.com/google/uuid"

	"hotelbooking-backend/internal/domains/payment/model"
)

// PaymentService drives gateway payments end to end: initiation,
// callback reconciliation, status polling and the webhook retry pass.
type PaymentService interface {
	// CreatePayment records a pending ledger attempt and asks the
	// gateway for a payment URL (or bank instructions).
	CreatePayment(ctx context.Context, userID uuid.UUID, req *model.CreatePaymentRequest) (*model.CreatePaymentResponse, error)

	// HandleVNPayCallback verifies, settles and confirms one VNPay
	// callback. Used by both the browser return and the IPN webhook;
	// the handler decides the response dialect.
	HandleVNPayCallback(ctx context.Context, cb model.VNPayCallbackRequest) (*model.CallbackResult, error)

	HandleMomoCallback(ctx context.Context, cb model.MomoCallbackRequest) (*model.CallbackResult, error)

	HandleBankCallback(ctx context.Context, cb model.BankCallbackRequest) (*model.CallbackResult, error)

	GetPaymentStatus(ctx context.Context, orderID string, requesterID uuid.UUID, isAdmin bool) (*model.PaymentStatusResponse, error)

	ListPayments(ctx context.Context, userID uuid.UUID, req *model.ListPaymentsRequest) ([]model.PaymentAttempt, int, error)

	// RetryUnprocessedWebhooks replays valid callbacks whose processing
	// failed after signature verification. Returns how many were
	// retried. Safe to run repeatedly; settlement and confirmation are
	// idempotent.
	RetryUnprocessedWebhooks(ctx context.Context) (int, error)
}

// ConfirmationEngine is the single place where "enough money arrived"
// becomes "the reservation is real". It must be safe to call from the
// return handler, the IPN handler and the retry job for the same
// settlement without double-applying side effects.
type ConfirmationEngine interface {
	ConfirmIfEligible(ctx context.Context, settlement model.Settlement) (*model.ConfirmationResult, error)
}
