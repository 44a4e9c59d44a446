package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// =====================================================
// HOTEL ROOM CATALOG (external collaborator surface)
// =====================================================

var ErrRoomTypeNotFound = errors.New("room type not found")

// RoomType locates a room type within its hotel.
type RoomType struct {
	ID      uuid.UUID
	HotelID uuid.UUID
	Name    string
}

// RoomDisplayStatus values used by the front desk dashboard.
const (
	RoomDisplayAvailable = "available"
	RoomDisplayOccupied  = "occupied"
)

// HotelRoomCatalog is the read-mostly inventory surface the booking and
// confirmation flows depend on. The CRUD side of hotels/rooms lives in
// a separate admin service and is not part of this repository.
type HotelRoomCatalog interface {
	// GetRoomType resolves a room type and its hotel.
	GetRoomType(ctx context.Context, roomTypeID uuid.UUID) (*RoomType, error)

	// GetPhysicalRoomCount returns how many physical rooms of the type
	// exist at the hotel.
	GetPhysicalRoomCount(ctx context.Context, hotelID, roomTypeID uuid.UUID) (int, error)

	// GetHotelName is used for admission-guard rejection messages.
	GetHotelName(ctx context.Context, hotelID uuid.UUID) (string, error)

	// SetRoomDisplayStatus flips the dashboard badge of a physical
	// room. Best-effort; callers ignore failures.
	SetRoomDisplayStatus(ctx context.Context, roomID uuid.UUID, status string) error
}
