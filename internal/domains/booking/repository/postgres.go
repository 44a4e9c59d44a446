package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/domains/booking/model"
)

const (
	// Postgres error codes.
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"

	// Constraint backstopping overlapping stays on an assigned room.
	constraintNoOverlap = "idx_bookings_no_overlap"
	// Unique index on booking_code.
	constraintBookingCode = "ux_bookings_code"

	// Serializable transactions abort under contention; a small retry
	// budget absorbs that without hiding persistent failures.
	serializableRetries = 3
)

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingColumns = `
	id, booking_code, user_id, hotel_id, room_type_id, room_id,
	check_in_date, check_out_date,
	guest_name, guest_email, guest_phone, guest_count,
	room_count, room_price, nights, subtotal, discount, final_price,
	payment_method, booking_status, payment_status,
	cancellation_allowed, cancelled_at, cancellation_reason,
	refund_status, refund_amount, refund_transaction_id,
	vip_points_added, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	b := &model.Booking{}
	err := row.Scan(
		&b.ID, &b.BookingCode, &b.UserID, &b.HotelID, &b.RoomTypeID, &b.RoomID,
		&b.CheckInDate, &b.CheckOutDate,
		&b.GuestName, &b.GuestEmail, &b.GuestPhone, &b.GuestCount,
		&b.RoomCount, &b.RoomPrice, &b.Nights, &b.Subtotal, &b.Discount, &b.FinalPrice,
		&b.PaymentMethod, &b.BookingStatus, &b.PaymentStatus,
		&b.CancellationAllowed, &b.CancelledAt, &b.CancellationReason,
		&b.RefundStatus, &b.RefundAmount, &b.RefundTransactionID,
		&b.VipPointsAdded, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return b, nil
}

// =====================================================
// CREATE (availability re-check + insert, one transaction)
// =====================================================

// CreateWithAvailabilityCheck runs the booked-room count and the insert
// inside one SERIALIZABLE transaction so two concurrent requests for
// the last room cannot both pass the check. Serialization aborts are
// retried; the overlap constraint on assigned rooms is a second line of
// defence and maps to the same no-availability error as the count.
func (r *bookingRepository) CreateWithAvailabilityCheck(ctx context.Context, b *model.Booking, totalRooms int) error {
	var lastErr error

	for attempt := 0; attempt < serializableRetries; attempt++ {
		err := r.tryCreate(ctx, b, totalRooms)
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeSerializationFailure {
			lastErr = err
			continue
		}

		return err
	}

	return fmt.Errorf("booking insert kept aborting under contention: %w", lastErr)
}

func (r *bookingRepository) tryCreate(ctx context.Context, b *model.Booking, totalRooms int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booked, err := countBookedRooms(ctx, tx, b.HotelID, b.RoomTypeID, b.CheckInDate, b.CheckOutDate)
	if err != nil {
		return err
	}

	if totalRooms-booked < b.RoomCount {
		return model.ErrNoAvailability
	}

	query := `
		INSERT INTO bookings (
			id, booking_code, user_id, hotel_id, room_type_id, room_id,
			check_in_date, check_out_date,
			guest_name, guest_email, guest_phone, guest_count,
			room_count, room_price, nights, subtotal, discount, final_price,
			payment_method, booking_status, payment_status,
			cancellation_allowed, refund_status, vip_points_added
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18,
			$19, $20, $21,
			$22, $23, $24
		)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		b.ID, b.BookingCode, b.UserID, b.HotelID, b.RoomTypeID, b.RoomID,
		b.CheckInDate, b.CheckOutDate,
		b.GuestName, b.GuestEmail, b.GuestPhone, b.GuestCount,
		b.RoomCount, b.RoomPrice, b.Nights, b.Subtotal, b.Discount, b.FinalPrice,
		b.PaymentMethod, b.BookingStatus, b.PaymentStatus,
		b.CancellationAllowed, b.RefundStatus, b.VipPointsAdded,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			switch pgErr.ConstraintName {
			case constraintNoOverlap:
				return model.ErrNoAvailability
			case constraintBookingCode:
				return model.ErrBookingCodeConflict
			}
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	return nil
}

// =====================================================
// READS
// =====================================================

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.pool.QueryRow(ctx, query, id))
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *string, page, limit int) ([]model.Booking, int, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}

	if status != nil {
		where += ` AND booking_status = $2`
		args = append(args, *status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM bookings ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	listQuery := fmt.Sprintf(
		`SELECT %s FROM bookings %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, total, rows.Err()
}

func (r *bookingRepository) ListConflicting(ctx context.Context, userID uuid.UUID, today time.Time) ([]model.ConflictingBooking, error) {
	query := `
		SELECT b.id, b.hotel_id, COALESCE(h.name, ''), b.booking_status, b.check_out_date
		FROM bookings b
		LEFT JOIN hotels h ON h.id = b.hotel_id
		WHERE b.user_id = $1
		  AND b.booking_status = ANY($2)
		  AND b.check_out_date >= $3
		ORDER BY b.check_out_date
	`

	rows, err := r.pool.Query(ctx, query, userID, model.BlockingStatuses, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicting bookings: %w", err)
	}
	defer rows.Close()

	var conflicts []model.ConflictingBooking
	for rows.Next() {
		var c model.ConflictingBooking
		if err := rows.Scan(&c.ID, &c.HotelID, &c.HotelName, &c.BookingStatus, &c.CheckOutDate); err != nil {
			return nil, fmt.Errorf("failed to scan conflicting booking: %w", err)
		}
		conflicts = append(conflicts, c)
	}

	return conflicts, rows.Err()
}

func (r *bookingRepository) CountBookedRooms(ctx context.Context, hotelID, roomTypeID uuid.UUID, checkIn, checkOut time.Time) (int, error) {
	return countBookedRooms(ctx, r.pool, hotelID, roomTypeID, checkIn, checkOut)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// countBookedRooms implements the half-open overlap count. Assigned
// rooms are deduplicated by room id so a room with several overlapping
// bookings is counted once; unassigned holds contribute room_count.
func countBookedRooms(ctx context.Context, q queryer, hotelID, roomTypeID uuid.UUID, checkIn, checkOut time.Time) (int, error) {
	query := `
		WITH assigned AS (
			SELECT COUNT(DISTINCT room_id) AS n
			FROM bookings
			WHERE hotel_id = $1 AND room_type_id = $2
			  AND room_id IS NOT NULL
			  AND booking_status = ANY($3)
			  AND check_in_date < $5 AND check_out_date > $4
		),
		unassigned AS (
			SELECT COALESCE(SUM(room_count), 0) AS n
			FROM bookings
			WHERE hotel_id = $1 AND room_type_id = $2
			  AND room_id IS NULL
			  AND booking_status = ANY($3)
			  AND check_in_date < $5 AND check_out_date > $4
		)
		SELECT assigned.n + unassigned.n FROM assigned, unassigned
	`

	var booked int
	err := q.QueryRow(ctx, query, hotelID, roomTypeID, model.BlockingStatuses, checkIn, checkOut).Scan(&booked)
	if err != nil {
		return 0, fmt.Errorf("failed to count booked rooms: %w", err)
	}

	return booked, nil
}

// =====================================================
// MUTATIONS
// =====================================================

func (r *bookingRepository) Cancel(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*model.Booking, error) {
	// Status guard inside the UPDATE so a concurrent confirmation or
	// second cancel cannot slip between a read and a write.
	query := `
		UPDATE bookings
		SET booking_status = 'cancelled',
			cancelled_at = $2,
			cancellation_reason = $3,
			refund_status = 'requested',
			updated_at = NOW()
		WHERE id = $1 AND booking_status IN ('pending', 'confirmed')
		RETURNING ` + bookingColumns

	b, err := scanBooking(r.pool.QueryRow(ctx, query, id, now, reason))
	if err != nil {
		if errors.Is(err, model.ErrBookingNotFound) {
			return nil, model.ErrInvalidState
		}
		return nil, err
	}

	return b, nil
}

func (r *bookingRepository) UpdateRefundStatus(ctx context.Context, id uuid.UUID, status string, amount *decimal.Decimal, transactionID *string) error {
	query := `
		UPDATE bookings
		SET refund_status = $2,
			refund_amount = COALESCE($3, refund_amount),
			refund_transaction_id = COALESCE($4, refund_transaction_id),
			payment_status = CASE WHEN $2 = 'completed' THEN 'refunded' ELSE payment_status END,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, status, amount, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update refund status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

func (r *bookingRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE bookings SET booking_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

// Confirm is the settlement-driven transition. The status guard keeps
// a late gateway callback from resurrecting a cancelled booking; the
// unguarded UpdateBookingStatus above stays reserved for operator
// overrides.
func (r *bookingRepository) Confirm(ctx context.Context, id uuid.UUID, paymentStatus string) (bool, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE bookings
		 SET booking_status = 'confirmed', payment_status = $2, updated_at = NOW()
		 WHERE id = $1 AND booking_status IN ('pending', 'confirmed')`,
		id, paymentStatus,
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

// MarkVipPointsAdded is the single conditional update that makes
// confirmation side effects exactly-once: only the caller that flips
// the flag observes rows-affected = 1.
func (r *bookingRepository) MarkVipPointsAdded(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE bookings SET vip_points_added = TRUE, updated_at = NOW()
		 WHERE id = $1 AND vip_points_added = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark vip points added: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
