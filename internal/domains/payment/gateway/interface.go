package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/domains/payment/model"
)

// =====================================================
// GATEWAY INTERFACES
// =====================================================

// PaymentRequest is the gateway-independent creation input. OrderID is
// caller-generated; the gateways echo it back in their callbacks.
type PaymentRequest struct {
	OrderID   string
	Amount    decimal.Decimal
	OrderInfo string
}

// VNPayGateway wraps the VNPay redirect flow.
type VNPayGateway interface {
	// CreatePaymentURL builds the signed redirect URL. The originating
	// client IP is read from ctx for fraud screening.
	CreatePaymentURL(ctx context.Context, req PaymentRequest) (string, error)

	// VerifySignature checks the HMAC-SHA512 of a callback.
	VerifySignature(cb model.VNPayCallbackRequest) bool
}

// MomoGateway wraps the MoMo wallet API.
type MomoGateway interface {
	// CreatePaymentURL calls the MoMo create API and returns payUrl.
	CreatePaymentURL(ctx context.Context, req PaymentRequest) (string, error)

	// VerifySignature checks the HMAC-SHA256 of a callback.
	VerifySignature(cb model.MomoCallbackRequest) bool
}

// BankGateway simulates a bank-transfer rail: no redirect, the
// customer wires money with the order id as transfer content and a
// signed confirmation callback arrives later.
type BankGateway interface {
	CreateInstructions(req PaymentRequest) *model.BankInstructions

	VerifySignature(cb model.BankCallbackRequest) bool
}
