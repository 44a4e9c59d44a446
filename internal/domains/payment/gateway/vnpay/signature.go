package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// =====================================================
// VNPAY SIGNATURE
// =====================================================

// GenerateSignature computes the HMAC-SHA512 over a callback payload.
//
// VNPay algorithm:
// 1. Drop vnp_SecureHash, vnp_SecureHashType and empty values
// 2. URL-decode values (callbacks arrive URL-encoded)
// 3. Sort keys ascending, case-sensitive
// 4. Join as key1=value1&key2=value2 with no re-encoding
// 5. HMAC-SHA512, uppercase hex
func GenerateSignature(params map[string]string, secretKey string) string {
	filtered := make(map[string]string, len(params))
	for key, value := range params {
		if key != "vnp_SecureHash" && key != "vnp_SecureHashType" && value != "" {
			filtered[key] = value
		}
	}

	keys := make([]string, 0, len(filtered))
	for key := range filtered {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := filtered[key]
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		parts = append(parts, key+"="+value)
	}

	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write([]byte(strings.Join(parts, "&")))

	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature checks a callback's vnp_SecureHash.
func VerifySignature(params map[string]string, secretKey string) bool {
	received, exists := params["vnp_SecureHash"]
	if !exists || received == "" {
		return false
	}

	expected := GenerateSignature(params, secretKey)
	return hmac.Equal([]byte(strings.ToUpper(received)), []byte(expected))
}

// BuildPaymentURL signs and assembles the redirect URL.
//
// Unlike callback verification, the hash data here is built over
// PHP-urlencoded pairs (spaces become +), matching VNPay's reference
// merchant code.
func BuildPaymentURL(baseURL string, params map[string]string, hashSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "vnp_SecureHash" && k != "vnp_SecureHashType" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := params[k]; v != "" {
			parts = append(parts, phpURLEncode(k)+"="+phpURLEncode(v))
		}
	}
	query := strings.Join(parts, "&")

	mac := hmac.New(sha512.New, []byte(hashSecret))
	mac.Write([]byte(query))
	secureHash := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	return baseURL + "?" + query + "&vnp_SecureHash=" + secureHash
}

// phpURLEncode mimics PHP's urlencode: spaces become '+', everything
// else like Go's QueryEscape.
func phpURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%20", "+")
}
