package vnpay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "TESTHASHSECRET123"

func callbackParams() map[string]string {
	return map[string]string{
		"vnp_Amount":       "100000000",
		"vnp_BankCode":     "NCB",
		"vnp_OrderInfo":    "Thanh toan don dat phong",
		"vnp_ResponseCode": "00",
		"vnp_TmnCode":      "DEMO0001",
		"vnp_TxnRef":       "BOOKING_6a1b2c3d-0000-0000-0000-000000000001_1756463400000",
	}
}

func TestVerifySignature_RoundTrip(t *testing.T) {
	params := callbackParams()
	params["vnp_SecureHash"] = GenerateSignature(params, testSecret)

	assert.True(t, VerifySignature(params, testSecret))
}

func TestVerifySignature_TamperedAmount(t *testing.T) {
	params := callbackParams()
	params["vnp_SecureHash"] = GenerateSignature(params, testSecret)

	params["vnp_Amount"] = "1"

	assert.False(t, VerifySignature(params, testSecret))
}

func TestVerifySignature_MissingHash(t *testing.T) {
	assert.False(t, VerifySignature(callbackParams(), testSecret))
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	params := callbackParams()
	params["vnp_SecureHash"] = GenerateSignature(params, testSecret)

	assert.False(t, VerifySignature(params, "other-secret"))
}

func TestGenerateSignature_IgnoresHashFieldsAndEmptyValues(t *testing.T) {
	params := callbackParams()
	base := GenerateSignature(params, testSecret)

	params["vnp_SecureHash"] = "junk"
	params["vnp_SecureHashType"] = "SHA512"
	params["vnp_BankTranNo"] = ""

	assert.Equal(t, base, GenerateSignature(params, testSecret))
}

func TestGenerateSignature_IsUppercaseHex(t *testing.T) {
	sig := GenerateSignature(callbackParams(), testSecret)

	require.Len(t, sig, 128) // SHA-512 hex
	assert.Equal(t, strings.ToUpper(sig), sig)
}

func TestBuildPaymentURL_SignedAndSorted(t *testing.T) {
	params := map[string]string{
		"vnp_Version":   "2.1.0",
		"vnp_Command":   "pay",
		"vnp_TmnCode":   "DEMO0001",
		"vnp_Amount":    "100000000",
		"vnp_TxnRef":    "BOOKING_X_1",
		"vnp_OrderInfo": "Thanh toan don dat phong",
	}

	u := BuildPaymentURL("https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", params, testSecret)

	assert.Contains(t, u, "vnp_SecureHash=")
	// PHP-style encoding: spaces in values become +
	assert.Contains(t, u, "vnp_OrderInfo=Thanh+toan+don+dat+phong")
	// Keys appear in sorted order
	assert.Less(t, strings.Index(u, "vnp_Amount="), strings.Index(u, "vnp_Command="))
	assert.Less(t, strings.Index(u, "vnp_Command="), strings.Index(u, "vnp_TxnRef="))
}
