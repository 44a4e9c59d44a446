package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// pointsDivisor converts VND spent into points: 10,000 VND = 1 point.
var pointsDivisor = decimal.NewFromInt(10000)

// Level thresholds in accumulated points.
const (
	levelSilverAt   = 100
	levelGoldAt     = 500
	levelPlatinumAt = 2000
)

// GrantResult reports what a grant did to the member's account.
type GrantResult struct {
	PointsAdded int    `json:"points_added"`
	NewTotal    int    `json:"new_total"`
	NewLevel    string `json:"new_level"`
	LeveledUp   bool   `json:"leveled_up"`
}

// LoyaltyService accrues VIP points after a confirmed, settled stay.
// Callers are responsible for idempotency; GrantPoints itself adds
// unconditionally.
type LoyaltyService interface {
	GrantPoints(ctx context.Context, userID uuid.UUID, finalPrice decimal.Decimal) (*GrantResult, error)
}

type pgLoyaltyService struct {
	pool *pgxpool.Pool
}

func NewLoyaltyService(pool *pgxpool.Pool) LoyaltyService {
	return &pgLoyaltyService{pool: pool}
}

func (s *pgLoyaltyService) GrantPoints(ctx context.Context, userID uuid.UUID, finalPrice decimal.Decimal) (*GrantResult, error) {
	points := int(finalPrice.Div(pointsDivisor).IntPart())
	if points <= 0 {
		return &GrantResult{}, nil
	}

	var before, after int
	err := s.pool.QueryRow(ctx, `
		UPDATE users
		SET vip_points = vip_points + $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING vip_points - $2, vip_points`,
		userID, points,
	).Scan(&before, &after)
	if err != nil {
		return nil, fmt.Errorf("failed to grant loyalty points: %w", err)
	}

	oldLevel := levelFor(before)
	newLevel := levelFor(after)

	if oldLevel != newLevel {
		// Best-effort denormalization; points remain the source of truth.
		if _, err := s.pool.Exec(ctx,
			`UPDATE users SET vip_level = $2 WHERE id = $1`, userID, newLevel); err != nil {
			return nil, fmt.Errorf("failed to update vip level: %w", err)
		}
	}

	return &GrantResult{
		PointsAdded: points,
		NewTotal:    after,
		NewLevel:    newLevel,
		LeveledUp:   oldLevel != newLevel,
	}, nil
}

func levelFor(points int) string {
	switch {
	case points >= levelPlatinumAt:
		return "platinum"
	case points >= levelGoldAt:
		return "gold"
	case points >= levelSilverAt:
		return "silver"
	default:
		return "member"
	}
}
