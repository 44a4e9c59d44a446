package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrAttemptNotFound    = errors.New("payment attempt not found")
	ErrDuplicateOrderID   = errors.New("order id already recorded")
	ErrSettlementConflict = errors.New("attempt already settled with a different outcome")
	ErrSignatureInvalid   = errors.New("gateway signature verification failed")
	ErrGatewayUnavailable = errors.New("gateway request failed")
	ErrSnapshotMissing    = errors.New("payment attempt has no booking snapshot")
	ErrInvalidOrderID     = errors.New("order id does not match any known format")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewSignatureError(gateway string) *PaymentError {
	return NewPaymentError(
		ErrCodeSignatureInvalid,
		fmt.Sprintf("%s callback signature is not trusted", gateway),
		ErrSignatureInvalid,
	)
}

func NewSettlementConflictError(orderID, current, requested string) *PaymentError {
	return NewPaymentError(
		ErrCodeSettlementConflict,
		fmt.Sprintf("attempt %s is already %s, refusing to settle as %s", orderID, current, requested),
		ErrSettlementConflict,
	)
}

func NewGatewayError(gateway string, err error) *PaymentError {
	return NewPaymentError(
		ErrCodeGatewayError,
		fmt.Sprintf("%s gateway request failed", gateway),
		fmt.Errorf("%w: %v", ErrGatewayUnavailable, err),
	)
}
