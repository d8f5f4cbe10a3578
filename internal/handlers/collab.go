package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/models"
	"qwikstudi-backend/internal/repository"
	"qwikstudi-backend/internal/services"
)

type CollabHandler struct {
	chatService *services.ChatService
	collabRepo  *repository.CollaboratorRepo
	userRepo    *repository.UserRepo
	email       *services.EmailService
}

func NewCollabHandler(chatService *services.ChatService, collabRepo *repository.CollaboratorRepo, userRepo *repository.UserRepo, email *services.EmailService) *CollabHandler {
	return &CollabHandler{chatService: chatService, collabRepo: collabRepo, userRepo: userRepo, email: email}
}

func normalizeAccessLevel(level string) string {
	if level == models.AccessEdit {
		return models.AccessEdit
	}
	return models.AccessView
}

// Add lets the chat owner invite users in bulk. Sharing with yourself is
// skipped, and re-adding an existing collaborator updates their access.
func (h *CollabHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	var req models.AddCollaboratorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "user_ids is required", r))
		return
	}

	if _, err := h.chatService.GetOwned(r.Context(), chatID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result := h.share(r, chatID, userID, req.UserIDs, normalizeAccessLevel(req.AccessLevel))
	writeJSON(w, http.StatusOK, result)
}

// Share is the bulk variant used by the share dialog; same semantics as Add.
func (h *CollabHandler) Share(w http.ResponseWriter, r *http.Request) {
	h.Add(w, r)
}

func (h *CollabHandler) share(r *http.Request, chatID, addedBy uuid.UUID, userIDs []uuid.UUID, accessLevel string) models.ShareResult {
	result := models.ShareResult{Added: []uuid.UUID{}, Skipped: []uuid.UUID{}}

	for _, target := range userIDs {
		if target == addedBy {
			result.Skipped = append(result.Skipped, target)
			continue
		}
		if _, err := h.userRepo.GetByID(r.Context(), target); err != nil {
			result.Skipped = append(result.Skipped, target)
			continue
		}

		collab := &models.ChatCollaborator{
			ChatID:         chatID,
			CollaboratorID: target,
			AddedBy:        addedBy,
			AccessLevel:    accessLevel,
		}
		if err := h.collabRepo.Upsert(r.Context(), collab); err != nil {
			result.Skipped = append(result.Skipped, target)
			continue
		}
		result.Added = append(result.Added, target)
	}

	return result
}

// ShareByEmail resolves the invitee case-insensitively and sends the invite
// email.
func (h *CollabHandler) ShareByEmail(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	var req models.ShareByEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Email is required", r))
		return
	}

	chat, err := h.chatService.GetOwned(r.Context(), chatID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	invitee, err := h.userRepo.GetByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No user with that email", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if invitee.ID == userID {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "You cannot share a chat with yourself", r))
		return
	}

	accessLevel := normalizeAccessLevel(req.AccessLevel)
	collab := &models.ChatCollaborator{
		ChatID:         chatID,
		CollaboratorID: invitee.ID,
		AddedBy:        userID,
		AccessLevel:    accessLevel,
	}
	if err := h.collabRepo.Upsert(r.Context(), collab); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to share chat", r))
		return
	}

	owner, err := h.userRepo.GetByID(r.Context(), userID)
	inviterName := "A QwikStudi user"
	if err == nil {
		inviterName = owner.Username
	}
	go h.email.SendShareInvite(invitee.Email, inviterName, chat.Title, accessLevel)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation sent"})
}

// Remove can be done by the chat owner or whoever added the collaborator.
func (h *CollabHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	var req models.RemoveCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "user_id is required", r))
		return
	}

	chat, err := h.chatService.GetAccessible(r.Context(), chatID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	collab, err := h.collabRepo.Get(r.Context(), chatID, req.UserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Collaborator not found", r))
		return
	}
	if chat.UserID != userID && collab.AddedBy != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Only the owner or the person who added them can remove a collaborator", r))
		return
	}

	if _, err := h.collabRepo.Remove(r.Context(), chatID, req.UserID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to remove collaborator", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Collaborator removed"})
}

// Approve accepts the caller's own pending invitation.
func (h *CollabHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	ok, err := h.collabRepo.Approve(r.Context(), chatID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to accept invitation", r))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No invitation for this chat", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation accepted"})
}

// Reject declines the caller's own pending invitation by deleting it.
func (h *CollabHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	removed, err := h.collabRepo.Remove(r.Context(), chatID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to decline invitation", r))
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No invitation for this chat", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation declined"})
}

// List returns the owner first, then collaborators in the order they were
// added.
func (h *CollabHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	chat, err := h.chatService.GetAccessible(r.Context(), chatID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	collaborators, err := h.collabRepo.ListForChat(r.Context(), chatID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list collaborators", r))
		return
	}

	entries := make([]models.CollaboratorInfo, 0, len(collaborators)+1)
	if owner, err := h.userRepo.GetByID(r.Context(), chat.UserID); err == nil {
		entries = append(entries, models.CollaboratorInfo{
			UserID:      owner.ID,
			Username:    owner.Username,
			Email:       owner.Email,
			AccessLevel: models.AccessEdit,
			IsApproved:  true,
			IsOwner:     true,
			ChatID:      chatID,
		})
	}
	entries = append(entries, collaborators...)

	writeJSON(w, http.StatusOK, map[string]interface{}{"collaborators": entries})
}

func (h *CollabHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	pending, err := h.collabRepo.ListPendingForUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list invitations", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invitations": pending})
}
