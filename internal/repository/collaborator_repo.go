package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwikstudi-backend/internal/models"
)

type CollaboratorRepo struct {
	pool *pgxpool.Pool
}

func NewCollaboratorRepo(pool *pgxpool.Pool) *CollaboratorRepo {
	return &CollaboratorRepo{pool: pool}
}

// Upsert adds a collaborator or updates the access level of an existing one.
// A re-share does not reset an already-approved invitation.
func (r *CollaboratorRepo) Upsert(ctx context.Context, c *models.ChatCollaborator) error {
	c.ID = uuid.New()
	query := `
		INSERT INTO chat_collaborators (id, chat_id, collaborator_id, added_by, access_level, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_id, collaborator_id) DO UPDATE
		SET access_level = EXCLUDED.access_level
		RETURNING id, is_approved, added_at`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.ChatID, c.CollaboratorID, c.AddedBy, c.AccessLevel, c.IsApproved,
	).Scan(&c.ID, &c.IsApproved, &c.AddedAt)
}

func (r *CollaboratorRepo) Get(ctx context.Context, chatID, userID uuid.UUID) (*models.ChatCollaborator, error) {
	c := &models.ChatCollaborator{}
	query := `SELECT id, chat_id, collaborator_id, added_by, access_level, is_approved, added_at
		FROM chat_collaborators WHERE chat_id = $1 AND collaborator_id = $2`

	err := r.pool.QueryRow(ctx, query, chatID, userID).Scan(
		&c.ID, &c.ChatID, &c.CollaboratorID, &c.AddedBy, &c.AccessLevel, &c.IsApproved, &c.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CollaboratorRepo) Remove(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM chat_collaborators WHERE chat_id = $1 AND collaborator_id = $2",
		chatID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CollaboratorRepo) Approve(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE chat_collaborators SET is_approved = TRUE WHERE chat_id = $1 AND collaborator_id = $2",
		chatID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListForChat returns collaborator rows joined with user info.
func (r *CollaboratorRepo) ListForChat(ctx context.Context, chatID uuid.UUID) ([]models.CollaboratorInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.username, u.email, cc.access_level, cc.is_approved, cc.chat_id
		FROM chat_collaborators cc
		JOIN users u ON u.id = cc.collaborator_id
		WHERE cc.chat_id = $1
		ORDER BY cc.added_at ASC
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collaborators := make([]models.CollaboratorInfo, 0)
	for rows.Next() {
		var info models.CollaboratorInfo
		if err := rows.Scan(&info.UserID, &info.Username, &info.Email, &info.AccessLevel, &info.IsApproved, &info.ChatID); err != nil {
			return nil, err
		}
		collaborators = append(collaborators, info)
	}
	return collaborators, rows.Err()
}

// ListPendingForUser returns invitations the user has not yet accepted,
// with enough chat context to render the invitation card.
func (r *CollaboratorRepo) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]models.CollaboratorInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT owner.id, owner.username, owner.email, cc.access_level, cc.is_approved, cc.chat_id, c.title
		FROM chat_collaborators cc
		JOIN chats c ON c.id = cc.chat_id AND c.is_deleted = FALSE
		JOIN users owner ON owner.id = c.user_id
		WHERE cc.collaborator_id = $1 AND cc.is_approved = FALSE
		ORDER BY cc.added_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make([]models.CollaboratorInfo, 0)
	for rows.Next() {
		var info models.CollaboratorInfo
		if err := rows.Scan(&info.UserID, &info.Username, &info.Email, &info.AccessLevel, &info.IsApproved, &info.ChatID, &info.ChatTitle); err != nil {
			return nil, err
		}
		info.IsOwner = true
		pending = append(pending, info)
	}
	return pending, rows.Err()
}
