package handlers

import (
	"net/http"
	"strings"

	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/models"
)

// Summarize condenses an uploaded document or pasted text into a normalized
// summary payload, optionally saving it as a chat card.
func (h *StudyToolsHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Expected multipart form data", r))
		return
	}

	length := strings.TrimSpace(r.FormValue("length"))
	switch length {
	case "brief", "detailed", "comprehensive":
	case "":
		length = defaultSummaryLen
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "length must be brief, detailed or comprehensive", r))
		return
	}

	format := strings.TrimSpace(r.FormValue("format"))
	switch format {
	case "bullets", "paragraphs":
	case "":
		format = defaultSummaryForm
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "format must be bullets or paragraphs", r))
		return
	}

	includeKeyTerms := r.FormValue("includeKeyTerms") == "true"

	material, sourceName, err := h.material(r, summaryFileExts, maxSummaryMaterial)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	payload, err := h.ai.Summarize(r.Context(), material, length, format, includeKeyTerms)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", "The AI could not summarize this material. Please try again.", r))
		return
	}

	resp := models.SummaryResponse{
		Summary:    payload.Summary,
		Takeaways:  payload.Takeaways,
		KeyTerms:   payload.KeyTerms,
		Length:     length,
		Format:     format,
		SourceName: sourceName,
	}

	h.saveCard(r, userID, r.FormValue("chat_id"), "Summarize "+cardLabel(sourceName), "summary", resp)

	writeJSON(w, http.StatusOK, resp)
}
