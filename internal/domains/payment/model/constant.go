package model

// =====================================================
// GATEWAYS
// =====================================================
const (
	GatewayVNPay        = "vnpay"
	GatewayMomo         = "momo"
	GatewayBankTransfer = "bank_transfer"
	GatewayCash         = "cash"
)

var ValidGateways = []string{
	GatewayVNPay,
	GatewayMomo,
	GatewayBankTransfer,
	GatewayCash,
}

// =====================================================
// ATTEMPT STATUS
// =====================================================
//
// Attempts transition pending -> completed | failed exactly once and
// are never reopened.
const (
	AttemptStatusPending   = "pending"
	AttemptStatusCompleted = "completed"
	AttemptStatusFailed    = "failed"
)

// =====================================================
// POLICY CONSTANTS
// =====================================================
const (
	// ConfirmationFraction is the paid fraction at which a reservation
	// becomes real.
	ConfirmationFraction = 0.5

	// WebhookRetryBatchSize bounds one pass of the failed-webhook
	// retry job.
	WebhookRetryBatchSize = 50
)

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodeValidation         = "PAY001"
	ErrCodeAttemptNotFound    = "PAY002"
	ErrCodeDuplicateOrder     = "PAY003"
	ErrCodeSignatureInvalid   = "PAY004"
	ErrCodeSettlementConflict = "PAY005"
	ErrCodeGatewayError       = "PAY006"
	ErrCodeBookingNotFound    = "PAY007"
	ErrCodeSnapshotMissing    = "PAY008"
	ErrCodeInternalError      = "PAY009"
)
