package handlers

import (
	"net/http"
	"strings"

	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/repository"
)

const userSearchLimit = 10

type UserHandler struct {
	userRepo *repository.UserRepo
}

func NewUserHandler(userRepo *repository.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Search powers the share dialog's user picker. Queries shorter than two
// characters return nothing rather than the whole user table.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"users": []interface{}{}})
		return
	}

	users, err := h.userRepo.Search(r.Context(), query, userID, userSearchLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "User search failed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
