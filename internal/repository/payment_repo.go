package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwikstudi-backend/internal/models"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) Create(ctx context.Context, p *models.UserPayment) error {
	query := `
		INSERT INTO user_payments (id, user_id, paystack_reference, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	p.ID = uuid.New()
	if p.Status == "" {
		p.Status = models.PaymentPending
	}

	return r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.PaystackReference, p.Amount, p.Currency, p.Status,
	).Scan(&p.CreatedAt)
}

func (r *PaymentRepo) GetByReference(ctx context.Context, reference string) (*models.UserPayment, error) {
	p := &models.UserPayment{}
	var raw []byte
	query := `SELECT id, user_id, paystack_reference, amount, currency, payment_method, status,
		COALESCE(raw_response, 'null'::jsonb), created_at, completed_at
		FROM user_payments WHERE paystack_reference = $1`

	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&p.ID, &p.UserID, &p.PaystackReference, &p.Amount, &p.Currency,
		&p.PaymentMethod, &p.Status, &raw, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 && string(raw) != "null" {
		p.RawResponse = json.RawMessage(raw)
	}
	return p, nil
}

// MarkCompleted transitions a payment to success or failed, recording the
// gateway response for audit.
func (r *PaymentRepo) MarkCompleted(ctx context.Context, reference, status string, method *string, rawResponse json.RawMessage) error {
	var raw interface{}
	if len(rawResponse) > 0 {
		raw = rawResponse
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE user_payments
		SET status = $2, payment_method = $3, raw_response = $4, completed_at = $5
		WHERE paystack_reference = $1
	`, reference, status, method, raw, time.Now())
	return err
}

// LatestForUser returns the user's most recent payment, or nil when they
// have none.
func (r *PaymentRepo) LatestForUser(ctx context.Context, userID uuid.UUID) (*models.UserPayment, error) {
	p := &models.UserPayment{}
	query := `SELECT id, user_id, paystack_reference, amount, currency, payment_method, status, created_at, completed_at
		FROM user_payments WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.PaystackReference, &p.Amount, &p.Currency,
		&p.PaymentMethod, &p.Status, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
