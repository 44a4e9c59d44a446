package main

import (
	"strconv"

	"github.com/hibiken/asynq"

	"hotelbooking-backend/internal/infrastructure/email"
	"hotelbooking-backend/internal/infrastructure/queue/handlers"
	"hotelbooking-backend/internal/shared"
	"hotelbooking-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	grantLoyalty        *handlers.GrantLoyaltyPointsHandler
	bookingConfirmation *handlers.BookingConfirmationHandler
	syncRoomDisplay     *handlers.SyncRoomDisplayHandler
	retryWebhooks       *handlers.RetryFailedWebhooksHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	emailSvc := email.NewDevEmailService(
		c.Config.Email.Host,
		strconv.Itoa(c.Config.Email.Port),
		c.Config.Email.From,
	)

	return &HandlerRegistry{
		grantLoyalty:        handlers.NewGrantLoyaltyPointsHandler(c.LoyaltyService),
		bookingConfirmation: handlers.NewBookingConfirmationHandler(emailSvc),
		syncRoomDisplay:     handlers.NewSyncRoomDisplayHandler(c.Catalog),
		retryWebhooks:       handlers.NewRetryFailedWebhooksHandler(c.PaymentService),
	}
}

// RegisterHandlers binds task types to handlers on the mux.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeGrantLoyaltyPoints, h.grantLoyalty.ProcessTask)
	mux.HandleFunc(shared.TypeSendBookingConfirmation, h.bookingConfirmation.ProcessTask)
	mux.HandleFunc(shared.TypeSyncRoomDisplay, h.syncRoomDisplay.ProcessTask)
	mux.HandleFunc(shared.TypeRetryFailedWebhooks, h.retryWebhooks.ProcessTask)
}
