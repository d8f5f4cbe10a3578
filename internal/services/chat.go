package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"qwikstudi-backend/internal/models"
	"qwikstudi-backend/internal/repository"
)

// ChatService owns chat access control: who can read, write to, or share a
// chat. Handlers go through it instead of querying repos directly.
type ChatService struct {
	chatRepo   *repository.ChatRepo
	collabRepo *repository.CollaboratorRepo
}

func NewChatService(chatRepo *repository.ChatRepo, collabRepo *repository.CollaboratorRepo) *ChatService {
	return &ChatService{chatRepo: chatRepo, collabRepo: collabRepo}
}

// GetAccessible loads a chat the user can at least view: the owner or an
// approved collaborator. Deleted chats behave as missing.
func (s *ChatService) GetAccessible(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Chat not found"}
		}
		return nil, err
	}
	if chat.IsDeleted {
		return nil, &NotFoundError{Message: "Chat not found"}
	}

	if chat.UserID == userID {
		return chat, nil
	}

	collab, err := s.collabRepo.Get(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ForbiddenError{Message: "You do not have access to this chat"}
		}
		return nil, err
	}
	if !collab.IsApproved {
		return nil, &ForbiddenError{Message: "You have not accepted the invitation to this chat"}
	}
	return chat, nil
}

// GetWritable loads a chat the user can write to: the owner or an approved
// collaborator with edit access.
func (s *ChatService) GetWritable(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Chat not found"}
		}
		return nil, err
	}
	if chat.IsDeleted {
		return nil, &NotFoundError{Message: "Chat not found"}
	}

	if chat.UserID == userID {
		return chat, nil
	}

	collab, err := s.collabRepo.Get(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ForbiddenError{Message: "You do not have access to this chat"}
		}
		return nil, err
	}
	if !collab.IsApproved || collab.AccessLevel != models.AccessEdit {
		return nil, &ForbiddenError{Message: "You do not have edit access to this chat"}
	}
	return chat, nil
}

// GetOwned loads a chat only for its owner.
func (s *ChatService) GetOwned(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Chat not found"}
		}
		return nil, err
	}
	if chat.IsDeleted {
		return nil, &NotFoundError{Message: "Chat not found"}
	}
	if chat.UserID != userID {
		return nil, &ForbiddenError{Message: "Only the chat owner can do this"}
	}
	return chat, nil
}
