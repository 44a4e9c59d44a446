package vnpay

import "fmt"

// =====================================================
// VNPAY CONFIGURATION
// =====================================================

type Config struct {
	TmnCode    string // Merchant code (provided by VNPay)
	HashSecret string // Secret key for HMAC-SHA512 signature
	APIUrl     string // VNPay payment gateway URL
	ReturnURL  string // Browser redirect URL
	IPNURL     string // Server-to-server webhook URL
	Version    string // VNPay API version (default: "2.1.0")
	Command    string // Command type (default: "pay")
	CurrCode   string // Currency code (default: "VND")
	Locale     string // Language (default: "vn")
}

func NewConfig(tmnCode, hashSecret, apiURL, returnURL, ipnURL string) *Config {
	return &Config{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		APIUrl:     apiURL,
		ReturnURL:  returnURL,
		IPNURL:     ipnURL,
		Version:    "2.1.0",
		Command:    "pay",
		CurrCode:   "VND",
		Locale:     "vn",
	}
}

func (c *Config) Validate() error {
	if c.TmnCode == "" {
		return fmt.Errorf("VNPay TmnCode is required")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("VNPay HashSecret is required")
	}
	if c.APIUrl == "" {
		return fmt.Errorf("VNPay APIUrl is required")
	}
	if c.ReturnURL == "" {
		return fmt.Errorf("VNPay ReturnURL is required")
	}
	return nil
}

func (c *Config) GetPaymentURL() string {
	return c.APIUrl + "/vpcpay.html"
}

// =====================================================
// VNPAY RESPONSE CODES
// =====================================================

const (
	ResponseCodeSuccess             = "00"
	ResponseCodeTransactionTimeout  = "07"
	ResponseCodeCardLocked          = "10"
	ResponseCodeOTPExpired          = "11"
	ResponseCodeUserCancelled       = "24"
	ResponseCodeInsufficientBalance = "51"
	ResponseCodeLimitExceeded       = "65"
	ResponseCodeBankMaintenance     = "75"
)

// GetResponseMessage maps a VNPay response code to a user-safe message.
func GetResponseMessage(code string) string {
	messages := map[string]string{
		ResponseCodeSuccess:             "Transaction successful",
		ResponseCodeTransactionTimeout:  "Transaction expired",
		ResponseCodeCardLocked:          "Card is locked",
		ResponseCodeOTPExpired:          "OTP expired",
		ResponseCodeUserCancelled:       "Cancelled by user",
		ResponseCodeInsufficientBalance: "Insufficient balance",
		ResponseCodeLimitExceeded:       "Payment limit exceeded",
		ResponseCodeBankMaintenance:     "Bank under maintenance",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Unknown gateway error"
}
