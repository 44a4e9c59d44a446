package momo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyCallbackSignature_RoundTrip(t *testing.T) {
	raw := BuildCallbackSignatureString(
		"500000", "", "Successful.", "BOOKING_X_1", "Thanh toan", "momo_wallet",
		"MOMODEMO", "qr", "REQ1", "1756463400000", 0, "2547390011",
	)
	sig := GenerateSignature(raw, "momo-secret")

	assert.True(t, VerifyCallbackSignature(raw, sig, "momo-secret"))
	assert.False(t, VerifyCallbackSignature(raw, sig, "other-secret"))
}

func TestBuildCallbackSignatureString_FixedOrder(t *testing.T) {
	raw := BuildCallbackSignatureString(
		"500000", "extra", "ok", "O1", "info", "type",
		"P1", "qr", "R1", "123", 9000, "T1",
	)

	assert.Equal(t,
		"accessKey=&amount=500000&extraData=extra&message=ok&orderId=O1&orderInfo=info&orderType=type&partnerCode=P1&payType=qr&requestId=R1&responseTime=123&resultCode=9000&transId=T1",
		raw)
}
