package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	VNPay    VNPayConfig
	Momo     MomoConfig
	Bank     BankTransferConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type VNPayConfig struct {
	TmnCode    string // merchant code
	HashSecret string // secret key for HMAC-SHA512
	APIURL     string
	ReturnURL  string // browser redirect target
	IPNURL     string // server-to-server webhook
}

type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string // secret key for HMAC-SHA256
	APIURL      string
	ReturnURL   string
	IPNURL      string
}

// BankTransferConfig backs the mock bank-transfer gateway used in
// development and integration environments.
type BankTransferConfig struct {
	AccountNumber string
	BankName      string
	SecretKey     string
	ReturnURL     string
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Hotel Booking API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "hotelbooking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 15),
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72),
		},
		Email: EmailConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 1025),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "noreply@hotelbooking.vn"),
		},
		VNPay: VNPayConfig{
			TmnCode:    getEnv("VNPAY_TMN_CODE", "SANDBOX01"),
			HashSecret: getEnv("VNPAY_HASH_SECRET", "dev-vnpay-secret"),
			APIURL:     getEnv("VNPAY_API_URL", "https://sandbox.vnpayment.vn"),
			ReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:8080/api/v1/payments/vnpay/return"),
			IPNURL:     getEnv("VNPAY_IPN_URL", "http://localhost:8080/api/v1/payments/vnpay/ipn"),
		},
		Momo: MomoConfig{
			PartnerCode: getEnv("MOMO_PARTNER_CODE", "MOMOSANDBOX"),
			AccessKey:   getEnv("MOMO_ACCESS_KEY", "dev-momo-access"),
			SecretKey:   getEnv("MOMO_SECRET_KEY", "dev-momo-secret"),
			APIURL:      getEnv("MOMO_API_URL", "https://test-payment.momo.vn"),
			ReturnURL:   getEnv("MOMO_RETURN_URL", "http://localhost:8080/api/v1/payments/momo/return"),
			IPNURL:      getEnv("MOMO_IPN_URL", "http://localhost:8080/api/v1/payments/momo/ipn"),
		},
		Bank: BankTransferConfig{
			AccountNumber: getEnv("BANK_ACCOUNT_NUMBER", "1234567890"),
			BankName:      getEnv("BANK_NAME", "VietcomBank"),
			SecretKey:     getEnv("BANK_SECRET_KEY", "dev-bank-secret"),
			ReturnURL:     getEnv("BANK_RETURN_URL", "http://localhost:8080/api/v1/payments/bank_transfer/return"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.VNPay.TmnCode == "SANDBOX01" {
			fmt.Println("WARNING: VNPay TmnCode not set - VNPay payment will not work")
		}
		if c.Momo.PartnerCode == "MOMOSANDBOX" {
			fmt.Println("WARNING: Momo PartnerCode not set - Momo payment will not work")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
