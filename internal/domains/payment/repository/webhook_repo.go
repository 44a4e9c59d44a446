package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotelbooking-backend/internal/domains/payment/model"
)

type webhookRepository struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) WebhookRepository {
	return &webhookRepository{pool: pool}
}

func (r *webhookRepository) Insert(ctx context.Context, log *model.WebhookLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	query := `
		INSERT INTO payment_webhook_logs (
			id, order_id, gateway, body, signature, is_valid, is_processed, processing_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING received_at
	`

	err := r.pool.QueryRow(ctx, query,
		log.ID, log.OrderID, log.Gateway, log.Body, log.Signature,
		log.IsValid, log.IsProcessed, log.ProcessingError,
	).Scan(&log.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to insert webhook log: %w", err)
	}

	return nil
}

func (r *webhookRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE payment_webhook_logs SET is_processed = TRUE, processing_error = NULL WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark webhook processed: %w", err)
	}
	return nil
}

func (r *webhookRepository) MarkError(ctx context.Context, id uuid.UUID, processingError string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE payment_webhook_logs
		 SET processing_error = $2, retry_count = retry_count + 1
		 WHERE id = $1`,
		id, processingError,
	)
	if err != nil {
		return fmt.Errorf("failed to mark webhook error: %w", err)
	}
	return nil
}

func (r *webhookRepository) ListUnprocessed(ctx context.Context, limit, maxRetries int) ([]model.WebhookLog, error) {
	query := `
		SELECT id, order_id, gateway, body, signature,
			   is_valid, is_processed, processing_error, retry_count, received_at
		FROM payment_webhook_logs
		WHERE is_processed = FALSE
		  AND is_valid = TRUE
		  AND retry_count < $2
		ORDER BY received_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed webhooks: %w", err)
	}
	defer rows.Close()

	var logs []model.WebhookLog
	for rows.Next() {
		var l model.WebhookLog
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.Gateway, &l.Body, &l.Signature,
			&l.IsValid, &l.IsProcessed, &l.ProcessingError, &l.RetryCount, &l.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan webhook log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
