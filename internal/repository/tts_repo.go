package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwikstudi-backend/internal/models"
)

type TTSRepo struct {
	pool *pgxpool.Pool
}

func NewTTSRepo(pool *pgxpool.Pool) *TTSRepo {
	return &TTSRepo{pool: pool}
}

func (r *TTSRepo) Create(ctx context.Context, t *models.TextToSpeech) error {
	query := `
		INSERT INTO text_to_speech (id, user_id, text, audio_path)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	t.ID = uuid.New()
	return r.pool.QueryRow(ctx, query, t.ID, t.UserID, t.Text, t.AudioPath).Scan(&t.CreatedAt)
}

func (r *TTSRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.TextToSpeech, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, text, audio_path, created_at
		FROM text_to_speech
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.TextToSpeech, 0)
	for rows.Next() {
		t := &models.TextToSpeech{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.AudioPath, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
