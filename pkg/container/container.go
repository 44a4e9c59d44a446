package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"hotelbooking-backend/internal/config"
	bookingHandler "hotelbooking-backend/internal/domains/booking/handler"
	bookingRepo "hotelbooking-backend/internal/domains/booking/repository"
	bookingService "hotelbooking-backend/internal/domains/booking/service"
	"hotelbooking-backend/internal/domains/catalog"
	"hotelbooking-backend/internal/domains/payment/gateway"
	"hotelbooking-backend/internal/domains/payment/gateway/bank"
	"hotelbooking-backend/internal/domains/payment/gateway/momo"
	"hotelbooking-backend/internal/domains/payment/gateway/vnpay"
	paymentHandler "hotelbooking-backend/internal/domains/payment/handler"
	paymentRepo "hotelbooking-backend/internal/domains/payment/repository"
	paymentService "hotelbooking-backend/internal/domains/payment/service"
	"hotelbooking-backend/internal/infrastructure/cache"
	"hotelbooking-backend/internal/infrastructure/database"
	"hotelbooking-backend/internal/infrastructure/loyalty"
	"hotelbooking-backend/pkg/jwt"
	"hotelbooking-backend/pkg/logger"
)

// =====================================================
// CONTAINER
// =====================================================

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup; the API and worker binaries both
// construct one and pick the pieces they need.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       *cache.RedisCache
	AsynqClient *asynq.Client
	JWTManager  *jwt.Manager

	// Repositories
	BookingRepo bookingRepo.BookingRepository
	AttemptRepo paymentRepo.AttemptRepository
	WebhookRepo paymentRepo.WebhookRepository
	Catalog     catalog.HotelRoomCatalog

	// Gateways
	VNPayGateway gateway.VNPayGateway
	MomoGateway  gateway.MomoGateway
	BankGateway  gateway.BankGateway

	// Services
	BookingService     bookingService.BookingService
	ConfirmationEngine paymentService.ConfirmationEngine
	PaymentService     paymentService.PaymentService
	LoyaltyService     loyalty.LoyaltyService

	// Handlers
	BookingHandler *bookingHandler.BookingHandler
	PaymentHandler *paymentHandler.PaymentHandler
	WebhookHandler *paymentHandler.WebhookHandler
}

// NewContainer wires the whole graph in dependency order: config,
// infrastructure, repositories, gateways, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	// Step 1: Configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment)

	// Step 2: PostgreSQL
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// Step 3: Redis cache. A cache outage is not fatal.
	redisCache, err := cache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Error("redis connection failed (non-critical)", err)
	}
	c.Cache = redisCache

	// Step 4: Asynq producer
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	// Step 5: Repositories
	pool := db.Pool
	c.BookingRepo = bookingRepo.NewBookingRepository(pool)
	c.AttemptRepo = paymentRepo.NewAttemptRepository(pool)
	c.WebhookRepo = paymentRepo.NewWebhookRepository(pool)
	c.Catalog = catalog.NewPgCatalog(pool)

	// Step 6: Payment gateways
	if err := c.initGateways(); err != nil {
		return nil, fmt.Errorf("failed to init gateways: %w", err)
	}

	// Step 7: Services
	c.BookingService = bookingService.NewBookingService(c.BookingRepo, c.Catalog, c.AsynqClient)
	c.ConfirmationEngine = paymentService.NewConfirmationEngine(c.AttemptRepo, c.BookingService, c.AsynqClient)
	c.PaymentService = paymentService.NewPaymentService(
		c.AttemptRepo, c.WebhookRepo, c.ConfirmationEngine, c.BookingService,
		c.VNPayGateway, c.MomoGateway, c.BankGateway,
	)
	c.LoyaltyService = loyalty.NewLoyaltyService(pool)

	// Step 8: Handlers
	c.BookingHandler = bookingHandler.NewBookingHandler(c.BookingService, c.Cache)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService)
	c.WebhookHandler = paymentHandler.NewWebhookHandler(c.PaymentService)

	return c, nil
}

func (c *Container) initGateways() error {
	cfg := c.Config

	vnpayGw, err := vnpay.NewClient(vnpay.NewConfig(
		cfg.VNPay.TmnCode,
		cfg.VNPay.HashSecret,
		cfg.VNPay.APIURL,
		cfg.VNPay.ReturnURL,
		cfg.VNPay.IPNURL,
	))
	if err != nil {
		return fmt.Errorf("vnpay: %w", err)
	}
	c.VNPayGateway = vnpayGw

	momoGw, err := momo.NewClient(momo.NewConfig(
		cfg.Momo.PartnerCode,
		cfg.Momo.AccessKey,
		cfg.Momo.SecretKey,
		cfg.Momo.APIURL,
		cfg.Momo.ReturnURL,
		cfg.Momo.IPNURL,
	))
	if err != nil {
		return fmt.Errorf("momo: %w", err)
	}
	c.MomoGateway = momoGw

	bankGw, err := bank.NewClient(&bank.Config{
		AccountNumber: cfg.Bank.AccountNumber,
		BankName:      cfg.Bank.BankName,
		SecretKey:     cfg.Bank.SecretKey,
		ReturnURL:     cfg.Bank.ReturnURL,
	})
	if err != nil {
		return fmt.Errorf("bank: %w", err)
	}
	c.BankGateway = bankGw

	return nil
}

// Cleanup releases external connections. Safe to call once on
// shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("failed to close asynq client", err)
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error("failed to close redis cache", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
