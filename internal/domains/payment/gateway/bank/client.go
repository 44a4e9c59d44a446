package bank

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"hotelbooking-backend/internal/domains/payment/gateway"
	"hotelbooking-backend/internal/domains/payment/model"
)

// =====================================================
// MOCK BANK TRANSFER GATEWAY
// =====================================================

// Client simulates a bank-transfer rail. There is no redirect: the
// customer wires money using the order id as transfer content, and a
// signed confirmation callback arrives when the statement is matched.
type Client struct {
	config *Config
}

type Config struct {
	AccountNumber string
	BankName      string
	SecretKey     string // signs the simulated confirmation callback
	ReturnURL     string
}

func NewClient(config *Config) (gateway.BankGateway, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("bank transfer SecretKey is required")
	}
	return &Client{config: config}, nil
}

func (c *Client) CreateInstructions(req gateway.PaymentRequest) *model.BankInstructions {
	return &model.BankInstructions{
		AccountNumber:   c.config.AccountNumber,
		BankName:        c.config.BankName,
		Amount:          req.Amount,
		TransferContent: req.OrderID,
	}
}

func (c *Client) VerifySignature(cb model.BankCallbackRequest) bool {
	if cb.Signature == "" {
		return false
	}

	expected := Sign(cb.OrderID, cb.Amount, cb.Status, cb.TxnID, cb.Timestamp, c.config.SecretKey)
	return hmac.Equal([]byte(strings.ToLower(cb.Signature)), []byte(expected))
}

// Sign computes the callback signature: HMAC-SHA256 over the
// amp-joined fields in fixed order, lowercase hex. Exported so the
// sandbox confirmation page can produce valid callbacks.
func Sign(orderID, amount, status, txnID, timestamp, secretKey string) string {
	raw := fmt.Sprintf("amount=%s&order_id=%s&status=%s&timestamp=%s&txn_id=%s",
		amount, orderID, status, timestamp, txnID)

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
