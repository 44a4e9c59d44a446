package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"hotelbooking-backend/internal/infrastructure/email"
	"hotelbooking-backend/internal/shared"
)

// ============================================
// Booking Confirmation Email Handler
// ============================================

type BookingConfirmationHandler struct {
	emailService email.EmailService
}

func NewBookingConfirmationHandler(emailService email.EmailService) *BookingConfirmationHandler {
	return &BookingConfirmationHandler{emailService: emailService}
}

func (h *BookingConfirmationHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.BookingConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal BookingConfirmation payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	data := email.BookingConfirmationData{
		BookingCode:  payload.BookingCode,
		GuestName:    payload.GuestName,
		GuestEmail:   payload.GuestEmail,
		CheckInDate:  payload.CheckInDate,
		CheckOutDate: payload.CheckOutDate,
		FinalPrice:   payload.FinalPrice,
	}

	if err := h.emailService.SendBookingConfirmation(ctx, data); err != nil {
		log.Error().Err(err).
			Str("bookingCode", payload.BookingCode).
			Msg("Failed to send booking confirmation email")
		return fmt.Errorf("send booking confirmation: %w", err)
	}

	log.Info().
		Str("bookingCode", payload.BookingCode).
		Str("email", payload.GuestEmail).
		Msg("Booking confirmation email sent")

	return nil
}
