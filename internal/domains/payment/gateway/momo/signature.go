package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// =====================================================
// MOMO SIGNATURE
// =====================================================

// GenerateSignature computes HMAC-SHA256 over a pre-built raw string.
// MoMo joins parameters in a fixed documented order, not sorted.
func GenerateSignature(rawSignature, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(rawSignature))
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildPaymentSignatureString builds the create-request raw string.
func BuildPaymentSignatureString(
	accessKey, amount, extraData, ipnURL, orderID, orderInfo,
	partnerCode, redirectURL, requestID, requestType string,
) string {
	parts := []string{
		"accessKey=" + accessKey,
		"amount=" + amount,
		"extraData=" + extraData,
		"ipnUrl=" + ipnURL,
		"orderId=" + orderID,
		"orderInfo=" + orderInfo,
		"partnerCode=" + partnerCode,
		"redirectUrl=" + redirectURL,
		"requestId=" + requestID,
		"requestType=" + requestType,
	}
	return strings.Join(parts, "&")
}

// BuildCallbackSignatureString builds the callback raw string. The
// accessKey slot is present but empty on callbacks.
func BuildCallbackSignatureString(
	amount, extraData, message, orderID, orderInfo, orderType,
	partnerCode, payType, requestID, responseTime string, resultCode int, transID string,
) string {
	return fmt.Sprintf(
		"accessKey=&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%d&transId=%s",
		amount, extraData, message, orderID, orderInfo, orderType,
		partnerCode, payType, requestID, responseTime, resultCode, transID,
	)
}

// VerifyCallbackSignature checks a callback's signature field.
func VerifyCallbackSignature(raw, receivedSignature, secretKey string) bool {
	expected := GenerateSignature(raw, secretKey)
	return hmac.Equal([]byte(strings.ToLower(receivedSignature)), []byte(expected))
}
