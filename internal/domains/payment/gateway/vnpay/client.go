package vnpay

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/domains/payment/gateway"
	"hotelbooking-backend/internal/domains/payment/model"
	"hotelbooking-backend/internal/shared/middleware"
)

// =====================================================
// VNPAY CLIENT
// =====================================================

type Client struct {
	config *Config
}

func NewClient(config *Config) (gateway.VNPayGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid VNPay config: %w", err)
	}
	return &Client{config: config}, nil
}

func (c *Client) CreatePaymentURL(ctx context.Context, req gateway.PaymentRequest) (string, error) {
	if req.OrderID == "" {
		return "", fmt.Errorf("order_id is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("amount must be positive")
	}

	// VNPay screens by originating IP and requires IPv4.
	clientIP := middleware.ClientIPFromContext(ctx)
	if clientIP == "" || clientIP == "::1" {
		clientIP = "127.0.0.1"
	}

	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = "Thanh toan don dat phong " + req.OrderID
	}

	now := time.Now()
	params := map[string]string{
		"vnp_Version":    c.config.Version,
		"vnp_Command":    c.config.Command,
		"vnp_TmnCode":    c.config.TmnCode,
		"vnp_Amount":     formatAmount(req.Amount),
		"vnp_CurrCode":   c.config.CurrCode,
		"vnp_TxnRef":     req.OrderID,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     c.config.Locale,
		"vnp_ReturnUrl":  c.config.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
		"vnp_ExpireDate": now.Add(30 * time.Minute).Format("20060102150405"),
	}
	if c.config.IPNURL != "" {
		params["vnp_IpnUrl"] = c.config.IPNURL
	}

	return BuildPaymentURL(c.config.GetPaymentURL(), params, c.config.HashSecret), nil
}

func (c *Client) VerifySignature(cb model.VNPayCallbackRequest) bool {
	params := map[string]string{
		"vnp_Amount":            cb.VnpAmount,
		"vnp_BankCode":          cb.VnpBankCode,
		"vnp_BankTranNo":        cb.VnpBankTranNo,
		"vnp_CardType":          cb.VnpCardType,
		"vnp_OrderInfo":         cb.VnpOrderInfo,
		"vnp_PayDate":           cb.VnpPayDate,
		"vnp_ResponseCode":      cb.VnpResponseCode,
		"vnp_TmnCode":           cb.VnpTmnCode,
		"vnp_TransactionNo":     cb.VnpTransactionNo,
		"vnp_TransactionStatus": cb.VnpTransactionStatus,
		"vnp_TxnRef":            cb.VnpTxnRef,
		"vnp_SecureHash":        cb.VnpSecureHash,
	}

	return VerifySignature(params, c.config.HashSecret)
}

// formatAmount converts to the gateway wire format: integer VND times
// 100. 100,000 VND -> "10000000".
func formatAmount(amount decimal.Decimal) string {
	return amount.Round(0).Mul(decimal.NewFromInt(100)).StringFixed(0)
}

// ParseAmount converts a callback amount back: "10000000" -> 100,000.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid VNPay amount %q: %w", amountStr, err)
	}
	return amount.Div(decimal.NewFromInt(100)), nil
}
