package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgCatalog struct {
	pool *pgxpool.Pool
}

func NewPgCatalog(pool *pgxpool.Pool) HotelRoomCatalog {
	return &pgCatalog{pool: pool}
}

func (r *pgCatalog) GetRoomType(ctx context.Context, roomTypeID uuid.UUID) (*RoomType, error) {
	query := `
		SELECT id, hotel_id, name
		FROM room_types
		WHERE id = $1
	`

	rt := &RoomType{}
	err := r.pool.QueryRow(ctx, query, roomTypeID).Scan(&rt.ID, &rt.HotelID, &rt.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to get room type: %w", err)
	}

	return rt, nil
}

func (r *pgCatalog) GetPhysicalRoomCount(ctx context.Context, hotelID, roomTypeID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM rooms
		WHERE hotel_id = $1 AND room_type_id = $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, hotelID, roomTypeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	return count, nil
}

func (r *pgCatalog) GetHotelName(ctx context.Context, hotelID uuid.UUID) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM hotels WHERE id = $1`, hotelID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get hotel name: %w", err)
	}
	return name, nil
}

func (r *pgCatalog) SetRoomDisplayStatus(ctx context.Context, roomID uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE rooms SET display_status = $1, updated_at = NOW() WHERE id = $2`,
		status, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to set room display status: %w", err)
	}
	return nil
}
