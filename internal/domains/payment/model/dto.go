package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE PAYMENT
// =====================================================

// CreatePaymentRequest initiates a gateway payment. BookingID is
// optional: gateway-first flows carry the whole intended booking in
// Snapshot instead and the row is created after settlement.
type CreatePaymentRequest struct {
	BookingID *string          `json:"booking_id,omitempty"`
	Gateway   string           `json:"gateway"`
	Amount    decimal.Decimal  `json:"amount"`
	OrderInfo string           `json:"order_info,omitempty"`
	Snapshot  *BookingSnapshot `json:"snapshot,omitempty"`
}

func (r *CreatePaymentRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Gateway, validation.Required, validation.In(
			GatewayVNPay, GatewayMomo, GatewayBankTransfer)),
		validation.Field(&r.OrderInfo, validation.Length(0, 255)),
	); err != nil {
		return err
	}

	if !r.Amount.IsPositive() {
		return validation.NewError("validation_amount", "amount must be positive")
	}
	if r.BookingID == nil && r.Snapshot == nil {
		return validation.NewError("validation_target", "either booking_id or snapshot is required")
	}

	return nil
}

// CreatePaymentResponse returns what the client needs to complete the
// payment. BankInstructions is set only for bank transfers.
type CreatePaymentResponse struct {
	OrderID          string            `json:"order_id"`
	Gateway          string            `json:"gateway"`
	Amount           decimal.Decimal   `json:"amount"`
	PaymentURL       string            `json:"payment_url,omitempty"`
	BankInstructions *BankInstructions `json:"bank_instructions,omitempty"`
}

// BankInstructions tells the customer how to wire the money. The
// transfer content must be the order id so the inbound statement can
// be matched back.
type BankInstructions struct {
	AccountNumber   string          `json:"account_number"`
	BankName        string          `json:"bank_name"`
	Amount          decimal.Decimal `json:"amount"`
	TransferContent string          `json:"transfer_content"`
}

// =====================================================
// GATEWAY CALLBACKS
// =====================================================

// VNPayCallbackRequest is the query VNPay sends on both the browser
// return and the IPN webhook.
type VNPayCallbackRequest struct {
	VnpAmount            string `form:"vnp_Amount" json:"vnp_Amount"`
	VnpBankCode          string `form:"vnp_BankCode" json:"vnp_BankCode"`
	VnpBankTranNo        string `form:"vnp_BankTranNo" json:"vnp_BankTranNo"`
	VnpCardType          string `form:"vnp_CardType" json:"vnp_CardType"`
	VnpOrderInfo         string `form:"vnp_OrderInfo" json:"vnp_OrderInfo"`
	VnpPayDate           string `form:"vnp_PayDate" json:"vnp_PayDate"`
	VnpResponseCode      string `form:"vnp_ResponseCode" json:"vnp_ResponseCode"`
	VnpTmnCode           string `form:"vnp_TmnCode" json:"vnp_TmnCode"`
	VnpTransactionNo     string `form:"vnp_TransactionNo" json:"vnp_TransactionNo"`
	VnpTransactionStatus string `form:"vnp_TransactionStatus" json:"vnp_TransactionStatus"`
	VnpTxnRef            string `form:"vnp_TxnRef" json:"vnp_TxnRef"`
	VnpSecureHash        string `form:"vnp_SecureHash" json:"vnp_SecureHash"`
}

// MomoCallbackRequest is the body MoMo posts on return/IPN.
type MomoCallbackRequest struct {
	PartnerCode  string `json:"partnerCode" form:"partnerCode"`
	OrderID      string `json:"orderId" form:"orderId"`
	RequestID    string `json:"requestId" form:"requestId"`
	Amount       int64  `json:"amount" form:"amount"`
	OrderInfo    string `json:"orderInfo" form:"orderInfo"`
	OrderType    string `json:"orderType" form:"orderType"`
	TransID      string `json:"transId" form:"transId"`
	ResultCode   int    `json:"resultCode" form:"resultCode"`
	Message      string `json:"message" form:"message"`
	PayType      string `json:"payType" form:"payType"`
	ResponseTime int64  `json:"responseTime" form:"responseTime"`
	ExtraData    string `json:"extraData" form:"extraData"`
	Signature    string `json:"signature" form:"signature"`
}

// BankCallbackRequest simulates the bank-transfer confirmation page.
type BankCallbackRequest struct {
	OrderID   string `form:"order_id" json:"order_id"`
	Amount    string `form:"amount" json:"amount"`
	Status    string `form:"status" json:"status"`
	TxnID     string `form:"txn_id" json:"txn_id"`
	Timestamp string `form:"timestamp" json:"timestamp"`
	Signature string `form:"signature" json:"signature"`
}

// =====================================================
// CALLBACK RESULT (returned to the browser redirect)
// =====================================================

type CallbackResult struct {
	OrderID      string              `json:"order_id"`
	Gateway      string              `json:"gateway"`
	Succeeded    bool                `json:"succeeded"`
	Message      string              `json:"message,omitempty"`
	Confirmation *ConfirmationResult `json:"confirmation,omitempty"`
}

// =====================================================
// STATUS / LISTING
// =====================================================

type PaymentStatusResponse struct {
	OrderID      string          `json:"order_id"`
	Gateway      string          `json:"gateway"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	GatewayTxnID *string         `json:"gateway_txn_id,omitempty"`
	SettledAt    *time.Time      `json:"settled_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ListPaymentsRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (r *ListPaymentsRequest) Validate() error {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
	return nil
}
