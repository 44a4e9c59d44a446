package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/domains/payment/model"
)

type attemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) AttemptRepository {
	return &attemptRepository{pool: pool}
}

const attemptColumns = `
	order_id, booking_ref, user_id, gateway, amount, status,
	gateway_txn_id, extra_data, created_at, settled_at, updated_at`

func scanAttempt(row pgx.Row) (*model.PaymentAttempt, error) {
	a := &model.PaymentAttempt{}
	err := row.Scan(
		&a.OrderID, &a.BookingRef, &a.UserID, &a.Gateway, &a.Amount, &a.Status,
		&a.GatewayTxnID, &a.ExtraData, &a.CreatedAt, &a.SettledAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
	}
	return a, nil
}

func (r *attemptRepository) RecordAttempt(ctx context.Context, attempt *model.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (
			order_id, booking_ref, user_id, gateway, amount, status, extra_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		attempt.OrderID, attempt.BookingRef, attempt.UserID,
		attempt.Gateway, attempt.Amount, model.AttemptStatusPending, attempt.ExtraData,
	).Scan(&attempt.CreatedAt, &attempt.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateOrderID
		}
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}

	attempt.Status = model.AttemptStatusPending
	return nil
}

func (r *attemptRepository) GetByOrderID(ctx context.Context, orderID string) (*model.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE order_id = $1`
	return scanAttempt(r.pool.QueryRow(ctx, query, orderID))
}

// Settle is the single compare-and-swap settlement path. The WHERE
// status = 'pending' guard means two concurrent deliveries of the same
// callback cannot both win.
func (r *attemptRepository) Settle(ctx context.Context, orderID, status string, gatewayTxnID *string) error {
	if status != model.AttemptStatusCompleted && status != model.AttemptStatusFailed {
		return fmt.Errorf("invalid settlement status %q", status)
	}

	query := `
		UPDATE payment_attempts
		SET status = $2,
			gateway_txn_id = COALESCE($3, gateway_txn_id),
			settled_at = NOW(),
			updated_at = NOW()
		WHERE order_id = $1 AND status = 'pending'
	`

	result, err := r.pool.Exec(ctx, query, orderID, status, gatewayTxnID)
	if err != nil {
		return fmt.Errorf("failed to settle payment attempt: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	// Lost the CAS: either unknown order id, a concurrent duplicate of
	// the same outcome (fine), or a differing outcome (conflict).
	current, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if current.Status == status {
		return nil
	}
	return model.NewSettlementConflictError(orderID, current.Status, status)
}

func (r *attemptRepository) SumCompleted(ctx context.Context, bookingRef uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_attempts
		WHERE booking_ref = $1 AND status = 'completed'
	`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, bookingRef).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum completed attempts: %w", err)
	}
	return total, nil
}

func (r *attemptRepository) LinkBooking(ctx context.Context, orderID string, bookingID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE payment_attempts SET booking_ref = $2, updated_at = NOW()
		 WHERE order_id = $1 AND booking_ref IS NULL`,
		orderID, bookingID,
	)
	if err != nil {
		return fmt.Errorf("failed to link booking to attempt: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Already linked or unknown order id; both are harmless here.
		return nil
	}
	return nil
}

func (r *attemptRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.PaymentAttempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_attempts WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payment attempts: %w", err)
	}

	query := `SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payment attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]model.PaymentAttempt, 0, limit)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, *a)
	}

	return attempts, total, rows.Err()
}
