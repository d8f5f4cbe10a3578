package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GuestRepo struct {
	pool *pgxpool.Pool
}

func NewGuestRepo(pool *pgxpool.Pool) *GuestRepo {
	return &GuestRepo{pool: pool}
}

func (r *GuestRepo) GetGuestCount(ctx context.Context, guestID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE((SELECT count FROM guest_chat_trackers WHERE guest_id = $1), 0)",
		guestID,
	).Scan(&count)
	return count, err
}

func (r *GuestRepo) GetIPCount(ctx context.Context, ip string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE((SELECT count FROM guest_ip_trackers WHERE ip_address = $1), 0)",
		ip,
	).Scan(&count)
	return count, err
}

// IncrementGuest bumps the per-guest counter and returns the new count.
func (r *GuestRepo) IncrementGuest(ctx context.Context, guestID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO guest_chat_trackers (guest_id, count)
		VALUES ($1, 1)
		ON CONFLICT (guest_id) DO UPDATE SET count = guest_chat_trackers.count + 1
		RETURNING count
	`, guestID).Scan(&count)
	return count, err
}

// IncrementIP bumps the per-IP counter and returns the new count.
func (r *GuestRepo) IncrementIP(ctx context.Context, ip string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO guest_ip_trackers (ip_address, count)
		VALUES ($1, 1)
		ON CONFLICT (ip_address) DO UPDATE SET count = guest_ip_trackers.count + 1
		RETURNING count
	`, ip).Scan(&count)
	return count, err
}
