package momo

import "fmt"

// =====================================================
// MOMO CONFIGURATION
// =====================================================

type Config struct {
	PartnerCode string // Partner code (provided by MoMo)
	AccessKey   string // Access key
	SecretKey   string // Secret key for HMAC-SHA256 signature
	APIUrl      string // MoMo API endpoint
	ReturnURL   string // Browser redirect URL
	IPNURL      string // Server-to-server webhook URL
}

func NewConfig(partnerCode, accessKey, secretKey, apiURL, returnURL, ipnURL string) *Config {
	return &Config{
		PartnerCode: partnerCode,
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		APIUrl:      apiURL,
		ReturnURL:   returnURL,
		IPNURL:      ipnURL,
	}
}

func (c *Config) Validate() error {
	if c.PartnerCode == "" {
		return fmt.Errorf("MoMo PartnerCode is required")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("MoMo AccessKey is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("MoMo SecretKey is required")
	}
	if c.APIUrl == "" {
		return fmt.Errorf("MoMo APIUrl is required")
	}
	return nil
}

func (c *Config) GetPaymentURL() string {
	return c.APIUrl + "/v2/gateway/api/create"
}

// =====================================================
// MOMO RESULT CODES
// =====================================================

const (
	ResultCodeSuccess           = 0
	ResultCodeInsufficientFunds = 1001
	ResultCodeTimeout           = 1002
	ResultCodeUnavailable       = 1003
	ResultCodeInvalidRequest    = 1004
	ResultCodeTransactionFailed = 1005
	ResultCodeAccountLocked     = 1006
	ResultCodeInvalidSignature  = 4001
	ResultCodeUserCancelled     = 9000
)

// GetResultMessage maps a MoMo result code to a user-safe message.
func GetResultMessage(code int) string {
	messages := map[int]string{
		ResultCodeSuccess:           "Transaction successful",
		ResultCodeInsufficientFunds: "Insufficient balance",
		ResultCodeTimeout:           "Transaction expired",
		ResultCodeUnavailable:       "Payment method unavailable",
		ResultCodeInvalidRequest:    "Invalid request",
		ResultCodeTransactionFailed: "Transaction failed",
		ResultCodeAccountLocked:     "Account locked",
		ResultCodeInvalidSignature:  "Invalid signature",
		ResultCodeUserCancelled:     "Cancelled by user",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Unknown gateway error"
}
