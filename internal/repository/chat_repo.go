package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwikstudi-backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	query := `
		INSERT INTO chats (id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	chat.ID = uuid.New()
	if chat.Title == "" {
		chat.Title = "New Chat"
	}

	return r.pool.QueryRow(ctx, query, chat.ID, chat.UserID, chat.Title).
		Scan(&chat.CreatedAt, &chat.UpdatedAt)
}

func (r *ChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	chat := &models.Chat{}
	query := `SELECT id, user_id, title, is_deleted, created_at, updated_at
		FROM chats WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&chat.ID, &chat.UserID, &chat.Title, &chat.IsDeleted, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// ListForUser returns chats the user owns plus chats shared with them that
// they have approved, newest activity first.
func (r *ChatRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT c.id, c.user_id, c.title, c.is_deleted, c.created_at, c.updated_at
		FROM chats c
		LEFT JOIN chat_collaborators cc
			ON cc.chat_id = c.id AND cc.collaborator_id = $1 AND cc.is_approved = TRUE
		WHERE c.is_deleted = FALSE
		  AND (c.user_id = $1 OR cc.id IS NOT NULL)
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]*models.Chat, 0)
	for rows.Next() {
		chat := &models.Chat{}
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.IsDeleted, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepo) Rename(ctx context.Context, id uuid.UUID, title string) error {
	_, err := r.pool.Exec(ctx, "UPDATE chats SET title = $1, updated_at = NOW() WHERE id = $2", title, id)
	return err
}

func (r *ChatRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE chats SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1", id)
	return err
}

func (r *ChatRepo) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE chats SET updated_at = NOW() WHERE id = $1", id)
	return err
}

func (r *ChatRepo) AddHistory(ctx context.Context, h *models.ChatHistory) error {
	h.ID = uuid.New()
	if h.PromptType == "" {
		h.PromptType = "text"
	}
	if h.ResponseType == "" {
		h.ResponseType = "text"
	}

	var metadata interface{}
	if len(h.ResponseMetadata) > 0 {
		metadata = h.ResponseMetadata
	}

	query := `
		INSERT INTO chat_history (id, chat_id, user_id, prompt, response, prompt_type, response_type, response_metadata, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		h.ID, h.ChatID, h.UserID, h.Prompt, h.Response, h.PromptType, h.ResponseType, metadata, h.Context,
	).Scan(&h.CreatedAt)
}

// ListHistory returns a chat's exchanges oldest first.
func (r *ChatRepo) ListHistory(ctx context.Context, chatID uuid.UUID) ([]*models.ChatHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, chat_id, user_id, prompt, response, prompt_type, response_type,
			COALESCE(response_metadata, 'null'::jsonb), COALESCE(context, ''), created_at
		FROM chat_history
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]*models.ChatHistory, 0)
	for rows.Next() {
		h := &models.ChatHistory{}
		var metadata []byte
		if err := rows.Scan(
			&h.ID, &h.ChatID, &h.UserID, &h.Prompt, &h.Response,
			&h.PromptType, &h.ResponseType, &metadata, &h.Context, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 && string(metadata) != "null" {
			h.ResponseMetadata = json.RawMessage(metadata)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// RecentHistory returns the latest text exchanges, newest first, for prompt
// context assembly.
func (r *ChatRepo) RecentHistory(ctx context.Context, chatID uuid.UUID, limit int) ([]*models.ChatHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, chat_id, user_id, prompt, response, prompt_type, response_type, created_at
		FROM chat_history
		WHERE chat_id = $1 AND response_type = 'text'
		ORDER BY created_at DESC
		LIMIT $2
	`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]*models.ChatHistory, 0)
	for rows.Next() {
		h := &models.ChatHistory{}
		if err := rows.Scan(
			&h.ID, &h.ChatID, &h.UserID, &h.Prompt, &h.Response,
			&h.PromptType, &h.ResponseType, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// FirstExchange returns the oldest prompt/response pair, used for title
// generation when a chat is committed.
func (r *ChatRepo) FirstExchange(ctx context.Context, chatID uuid.UUID) (prompt, response string, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT prompt, response FROM chat_history
		WHERE chat_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, chatID).Scan(&prompt, &response)
	return
}
