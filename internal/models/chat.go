package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatHistory is one prompt/response exchange in a chat. PromptType and
// ResponseType distinguish plain text from quiz, summary and audio cards;
// ResponseMetadata holds the structured payload for the non-text types.
type ChatHistory struct {
	ID               uuid.UUID       `json:"id"`
	ChatID           uuid.UUID       `json:"chat_id"`
	UserID           uuid.UUID       `json:"user_id"`
	Prompt           string          `json:"prompt"`
	Response         string          `json:"response"`
	PromptType       string          `json:"prompt_type"`
	ResponseType     string          `json:"response_type"`
	ResponseMetadata json.RawMessage `json:"response_metadata,omitempty"`
	Context          string          `json:"context,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Access levels and approval states for shared chats.
const (
	AccessView = "view"
	AccessEdit = "edit"
)

type ChatCollaborator struct {
	ID             uuid.UUID `json:"id"`
	ChatID         uuid.UUID `json:"chat_id"`
	CollaboratorID uuid.UUID `json:"collaborator_id"`
	AddedBy        uuid.UUID `json:"added_by"`
	AccessLevel    string    `json:"access_level"`
	IsApproved     bool      `json:"is_approved"`
	AddedAt        time.Time `json:"added_at"`
}

// CollaboratorInfo joins a collaborator row with the user it points at, for
// the collaborator list and pending-invitation views.
type CollaboratorInfo struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	AccessLevel string    `json:"access_level"`
	IsApproved  bool      `json:"is_approved"`
	IsOwner     bool      `json:"is_owner"`
	ChatID      uuid.UUID `json:"chat_id"`
	ChatTitle   string    `json:"chat_title,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. ChatID is optional;
// GuestID is only honored for unauthenticated callers.
type ChatRequest struct {
	Prompt  string `json:"prompt"`
	Style   string `json:"style"`
	ChatID  string `json:"chat_id"`
	GuestID string `json:"guest_id"`
}

type ChatResponse struct {
	Response       string `json:"response"`
	ChatID         string `json:"chat_id,omitempty"`
	GuestID        string `json:"guest_id,omitempty"`
	RemainingChats *int   `json:"remaining_chats,omitempty"`
	LimitExceeded  bool   `json:"limit_exceeded,omitempty"`
}

type RenameChatRequest struct {
	Title string `json:"title"`
}

type CommitChatRequest struct {
	ChatID string `json:"chat_id"`
}

type AddCollaboratorsRequest struct {
	UserIDs     []uuid.UUID `json:"user_ids"`
	AccessLevel string      `json:"access_level"`
}

type RemoveCollaboratorRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type ShareByEmailRequest struct {
	Email       string `json:"email"`
	AccessLevel string `json:"access_level"`
}

// ShareResult reports which users a bulk share reached.
type ShareResult struct {
	Added   []uuid.UUID `json:"added"`
	Skipped []uuid.UUID `json:"skipped"`
}
