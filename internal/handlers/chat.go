package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/models"
	"qwikstudi-backend/internal/repository"
	"qwikstudi-backend/internal/services"
)

const maxPromptLength = 4000

type ChatHandler struct {
	chatService *services.ChatService
	chatRepo    *repository.ChatRepo
	quota       *services.QuotaService
	ai          *services.OpenAIService
}

func NewChatHandler(chatService *services.ChatService, chatRepo *repository.ChatRepo, quota *services.QuotaService, ai *services.OpenAIService) *ChatHandler {
	return &ChatHandler{chatService: chatService, chatRepo: chatRepo, quota: quota, ai: ai}
}

// Chat serves one tutoring exchange for guests and signed-in users alike.
// Guests are capped by guest-ID and IP counters; the limit response is a 200
// so the frontend can render the signup nudge inline.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Prompt is required", r))
		return
	}
	if len(req.Prompt) > maxPromptLength {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Prompt exceeds the 4000 character limit", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		h.guestChat(w, r, req)
		return
	}

	// History and persistence only apply when the exchange targets a chat.
	var history []models.ChatMessage
	var chatID uuid.UUID
	if req.ChatID != "" {
		id, err := uuid.Parse(req.ChatID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat_id", r))
			return
		}
		if _, err := h.chatService.GetWritable(r.Context(), id, userID); err != nil {
			handleServiceError(w, r, err)
			return
		}
		chatID = id

		recent, err := h.chatRepo.RecentHistory(r.Context(), chatID, 10)
		if err == nil {
			// RecentHistory is newest first; replay oldest first.
			for i := len(recent) - 1; i >= 0; i-- {
				history = append(history,
					models.ChatMessage{Role: "user", Content: recent[i].Prompt},
					models.ChatMessage{Role: "assistant", Content: recent[i].Response},
				)
			}
		}
	}

	reply, err := h.ai.Chat(r.Context(), req.Prompt, req.Style, history)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", "The study buddy is unavailable right now. Please try again.", r))
		return
	}

	resp := models.ChatResponse{Response: reply}
	if chatID != uuid.Nil {
		entry := &models.ChatHistory{
			ChatID:   chatID,
			UserID:   userID,
			Prompt:   req.Prompt,
			Response: reply,
		}
		if err := h.chatRepo.AddHistory(r.Context(), entry); err == nil {
			h.chatRepo.Touch(r.Context(), chatID)
		}
		resp.ChatID = chatID.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) guestChat(w http.ResponseWriter, r *http.Request, req models.ChatRequest) {
	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		// Absent or malformed guest IDs get a fresh identity.
		guestID = uuid.New()
	}
	ip := clientIP(r)

	remaining, err := h.quota.GuestAllowance(r.Context(), guestID, ip)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if remaining <= 0 {
		zero := 0
		writeJSON(w, http.StatusOK, models.ChatResponse{
			GuestID:        guestID.String(),
			LimitExceeded:  true,
			RemainingChats: &zero,
			Response:       "You've used all your free chats. Create a free account to keep studying with QwikStudi.",
		})
		return
	}

	reply, err := h.ai.Chat(r.Context(), req.Prompt, req.Style, nil)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", "The study buddy is unavailable right now. Please try again.", r))
		return
	}

	left, err := h.quota.RecordGuestChat(r.Context(), guestID, ip)
	if err != nil {
		left = remaining - 1
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response:       reply,
		GuestID:        guestID.String(),
		RemainingChats: &left,
	})
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	chats, err := h.chatRepo.ListForUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list chats", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	if _, err := h.chatService.GetAccessible(r.Context(), chatID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	history, err := h.chatRepo.ListHistory(r.Context(), chatID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load messages", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": history})
}

func (h *ChatHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	chat := &models.Chat{UserID: userID}
	if err := h.chatRepo.Create(r.Context(), chat); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create chat", r))
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	var req models.RenameChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	if _, err := h.chatService.GetOwned(r.Context(), chatID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.chatRepo.Rename(r.Context(), chatID, strings.TrimSpace(req.Title)); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to rename chat", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat renamed"})
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	if _, err := h.chatService.GetOwned(r.Context(), chatID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.chatRepo.SoftDelete(r.Context(), chatID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete chat", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted"})
}

// Commit titles a chat from its first exchange. Title generation failures
// fall back silently; the commit itself still succeeds.
func (h *ChatHandler) Commit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CommitChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat_id", r))
		return
	}

	if _, err := h.chatService.GetWritable(r.Context(), chatID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	prompt, response, err := h.chatRepo.FirstExchange(r.Context(), chatID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Chat has no messages to title", r))
		return
	}

	title := h.ai.GenerateTitle(r.Context(), prompt, response)
	if err := h.chatRepo.Rename(r.Context(), chatID, title); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save chat title", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

// clientIP trusts chi's RealIP middleware having normalized RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
