package bank

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking-backend/internal/domains/payment/gateway"
	"hotelbooking-backend/internal/domains/payment/model"
)

func newTestClient(t *testing.T) gateway.BankGateway {
	t.Helper()
	c, err := NewClient(&Config{
		AccountNumber: "0123456789",
		BankName:      "Vietcombank",
		SecretKey:     "bank-secret",
	})
	require.NoError(t, err)
	return c
}

func TestCreateInstructions_UsesOrderIDAsTransferContent(t *testing.T) {
	c := newTestClient(t)

	inst := c.CreateInstructions(gateway.PaymentRequest{
		OrderID: "BANK_1756463400000_BOOKING_X_1",
		Amount:  decimal.NewFromInt(500000),
	})

	assert.Equal(t, "0123456789", inst.AccountNumber)
	assert.Equal(t, "BANK_1756463400000_BOOKING_X_1", inst.TransferContent)
	assert.True(t, inst.Amount.Equal(decimal.NewFromInt(500000)))
}

func TestVerifySignature(t *testing.T) {
	c := newTestClient(t)

	cb := model.BankCallbackRequest{
		OrderID:   "BANK_1756463400000_X",
		Amount:    "500000",
		Status:    "success",
		TxnID:     "FT123456",
		Timestamp: "1756463500",
	}
	cb.Signature = Sign(cb.OrderID, cb.Amount, cb.Status, cb.TxnID, cb.Timestamp, "bank-secret")

	assert.True(t, c.VerifySignature(cb))

	cb.Amount = "999999"
	assert.False(t, c.VerifySignature(cb))

	cb.Signature = ""
	assert.False(t, c.VerifySignature(cb))
}
