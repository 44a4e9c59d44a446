package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"hotelbooking-backend/internal/domains/catalog"
	"hotelbooking-backend/internal/shared"
)

// ============================================
// Sync Room Display Status Handler
// ============================================

type SyncRoomDisplayHandler struct {
	catalog catalog.HotelRoomCatalog
}

func NewSyncRoomDisplayHandler(cat catalog.HotelRoomCatalog) *SyncRoomDisplayHandler {
	return &SyncRoomDisplayHandler{catalog: cat}
}

func (h *SyncRoomDisplayHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SyncRoomDisplayPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal SyncRoomDisplay payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	roomID, err := uuid.Parse(payload.RoomID)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", payload.RoomID, err)
	}

	if err := h.catalog.SetRoomDisplayStatus(ctx, roomID, payload.Status); err != nil {
		log.Error().Err(err).
			Str("roomId", payload.RoomID).
			Str("status", payload.Status).
			Msg("Failed to sync room display status")
		return fmt.Errorf("set room display status: %w", err)
	}

	log.Info().
		Str("roomId", payload.RoomID).
		Str("status", payload.Status).
		Msg("Room display status synced")

	return nil
}
