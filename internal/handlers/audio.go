package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/models"
	"qwikstudi-backend/internal/repository"
	"qwikstudi-backend/internal/services"
)

const (
	maxTTSChars     = 500
	wordsPerMinute  = 150.0
	minAudioMinutes = 0.01
)

type AudioHandler struct {
	chatService   *services.ChatService
	chatRepo      *repository.ChatRepo
	ttsRepo       *repository.TTSRepo
	quota         *services.QuotaService
	ai            *services.OpenAIService
	storagePath   string
	publicBaseURL string
}

func NewAudioHandler(chatService *services.ChatService, chatRepo *repository.ChatRepo, ttsRepo *repository.TTSRepo, quota *services.QuotaService, ai *services.OpenAIService, storagePath, publicBaseURL string) *AudioHandler {
	return &AudioHandler{
		chatService:   chatService,
		chatRepo:      chatRepo,
		ttsRepo:       ttsRepo,
		quota:         quota,
		ai:            ai,
		storagePath:   storagePath,
		publicBaseURL: publicBaseURL,
	}
}

// TextToSpeech renders short text to MP3. Free-tier usage is metered by
// estimated listening minutes (word count at a 150 wpm reading pace).
func (h *AudioHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Text is required", r))
		return
	}
	if len(text) > maxTTSChars {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Text exceeds the 500 character limit", r))
		return
	}

	minutes := estimateMinutes(text)
	remaining, err := h.quota.CheckAudioAllowance(r.Context(), userID, minutes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	audio, err := h.ai.Speech(r.Context(), text)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", "Audio generation failed. Please try again.", r))
		return
	}

	filename := fmt.Sprintf("tts_%s.mp3", uuid.New().String())
	if err := os.MkdirAll(h.storagePath, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store audio", r))
		return
	}
	if err := os.WriteFile(filepath.Join(h.storagePath, filename), audio, 0o644); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store audio", r))
		return
	}

	record := &models.TextToSpeech{
		UserID:    userID,
		Text:      text,
		AudioPath: filename,
	}
	h.ttsRepo.Create(r.Context(), record)
	h.quota.RecordAudioMinutes(r.Context(), userID, minutes)

	resp := models.TTSResponse{
		AudioURL:         h.mediaURL(filename),
		EstimatedMinutes: minutes,
		MinutesRemaining: remaining,
	}

	h.saveAudioCard(r, userID, req.ChatID, text, resp)

	writeJSON(w, http.StatusOK, resp)
}

const ttsHistoryLimit = 20

// History lists the caller's recent text-to-speech generations, newest first.
func (h *AudioHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	records, err := h.ttsRepo.ListByUser(r.Context(), userID, ttsHistoryLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	items := make([]models.TTSHistoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, models.TTSHistoryItem{
			ID:        rec.ID,
			Text:      rec.Text,
			AudioURL:  h.mediaURL(rec.AudioPath),
			CreatedAt: rec.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, models.TTSHistoryResponse{Items: items})
}

// Transcribe runs Whisper over an uploaded audio file.
func (h *AudioHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Expected multipart form data", r))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "An audio file is required", r))
		return
	}
	defer file.Close()

	text, err := h.ai.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", "Transcription failed. Please try again.", r))
		return
	}

	writeJSON(w, http.StatusOK, models.TranscribeResponse{Text: text})
}

// ServeMedia streams stored audio files. Paths are flattened to their base
// name so the handler cannot be walked out of the storage directory.
func (h *AudioHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(strings.TrimPrefix(r.URL.Path, "/api/v1/media/"))
	if name == "." || name == "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.storagePath, name))
}

func (h *AudioHandler) saveAudioCard(r *http.Request, userID uuid.UUID, rawChatID, text string, resp models.TTSResponse) {
	if rawChatID == "" {
		return
	}
	chatID, err := uuid.Parse(rawChatID)
	if err != nil {
		return
	}
	if _, err := h.chatService.GetWritable(r.Context(), chatID, userID); err != nil {
		return
	}

	metadata, _ := json.Marshal(resp)
	entry := &models.ChatHistory{
		ChatID:           chatID,
		UserID:           userID,
		Prompt:           text,
		ResponseType:     "audio",
		ResponseMetadata: metadata,
	}
	if err := h.chatRepo.AddHistory(r.Context(), entry); err == nil {
		h.chatRepo.Touch(r.Context(), chatID)
	}
}

func (h *AudioHandler) mediaURL(filename string) string {
	return fmt.Sprintf("%s/api/v1/media/%s", h.publicBaseURL, filename)
}

// estimateMinutes converts word count to listening minutes at 150 wpm,
// never below the metering floor.
func estimateMinutes(text string) float64 {
	minutes := float64(len(strings.Fields(text))) / wordsPerMinute
	if minutes < minAudioMinutes {
		minutes = minAudioMinutes
	}
	return minutes
}
