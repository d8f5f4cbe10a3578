package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwikstudi-backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetOrCreate returns the user's quota profile, inserting a fresh free-tier
// row if none exists yet.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, is_premium, premium_expiry, questions_generated, audio_minutes_used
	`, userID).Scan(&p.UserID, &p.IsPremium, &p.PremiumExpiry, &p.QuestionsGenerated, &p.AudioMinutesUsed)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) SetPremium(ctx context.Context, userID uuid.UUID, expiry time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, is_premium, premium_expiry)
		VALUES ($1, TRUE, $2)
		ON CONFLICT (user_id) DO UPDATE SET is_premium = TRUE, premium_expiry = $2
	`, userID, expiry)
	return err
}

func (r *ProfileRepo) Downgrade(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE user_profiles SET is_premium = FALSE, premium_expiry = NULL WHERE user_id = $1",
		userID,
	)
	return err
}

func (r *ProfileRepo) AddQuestionsGenerated(ctx context.Context, userID uuid.UUID, count int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, questions_generated)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET questions_generated = user_profiles.questions_generated + $2
	`, userID, count)
	return err
}

func (r *ProfileRepo) AddAudioMinutes(ctx context.Context, userID uuid.UUID, minutes float64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, audio_minutes_used)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET audio_minutes_used = user_profiles.audio_minutes_used + $2
	`, userID, minutes)
	return err
}
