package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/infrastructure/loyalty"
	"hotelbooking-backend/internal/shared"
)

// ============================================
// Grant Loyalty Points Handler
// ============================================
//
// The producer flips the booking's vip_points_added flag before
// enqueueing, so this handler can add unconditionally: the task exists
// at most once per booking.

type GrantLoyaltyPointsHandler struct {
	loyaltyService loyalty.LoyaltyService
}

func NewGrantLoyaltyPointsHandler(loyaltyService loyalty.LoyaltyService) *GrantLoyaltyPointsHandler {
	return &GrantLoyaltyPointsHandler{loyaltyService: loyaltyService}
}

func (h *GrantLoyaltyPointsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.GrantLoyaltyPointsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal GrantLoyaltyPoints payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", payload.UserID, err)
	}
	finalPrice, err := decimal.NewFromString(payload.FinalPrice)
	if err != nil {
		return fmt.Errorf("invalid final price %q: %w", payload.FinalPrice, err)
	}

	result, err := h.loyaltyService.GrantPoints(ctx, userID, finalPrice)
	if err != nil {
		log.Error().Err(err).
			Str("bookingId", payload.BookingID).
			Msg("Failed to grant loyalty points")
		return fmt.Errorf("grant points: %w", err)
	}

	log.Info().
		Str("bookingId", payload.BookingID).
		Str("userId", payload.UserID).
		Int("pointsAdded", result.PointsAdded).
		Int("newTotal", result.NewTotal).
		Bool("leveledUp", result.LeveledUp).
		Msg("Loyalty points granted")

	return nil
}
