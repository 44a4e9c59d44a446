package handlers

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	paymentService "hotelbooking-backend/internal/domains/payment/service"
)

// ============================================
// Retry Failed Webhooks Handler
// ============================================
//
// IPN endpoints acknowledge with 200 even when reconciliation fails
// internally, so the gateways never retry for us. This scheduled job
// replays the logged payloads instead.

type RetryFailedWebhooksHandler struct {
	paymentService paymentService.PaymentService
}

func NewRetryFailedWebhooksHandler(svc paymentService.PaymentService) *RetryFailedWebhooksHandler {
	return &RetryFailedWebhooksHandler{paymentService: svc}
}

func (h *RetryFailedWebhooksHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	retried, err := h.paymentService.RetryUnprocessedWebhooks(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Webhook retry pass failed")
		return err
	}

	if retried > 0 {
		log.Info().Int("retried", retried).Msg("Replayed unprocessed webhooks")
	}
	return nil
}
