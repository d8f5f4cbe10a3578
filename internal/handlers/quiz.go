package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"qwikstudi-backend/internal/llmtext"
	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/models"
	"qwikstudi-backend/internal/repository"
	"qwikstudi-backend/internal/services"
)

const (
	maxUploadBytes      = 20 << 20 // 20 MiB multipart memory budget
	minMaterialChars    = 100
	maxQuizMaterial     = 10000
	maxSummaryMaterial  = 15000
	defaultQuizCount    = 10
	defaultDifficulty   = "medium"
	defaultSummaryLen   = "detailed"
	defaultSummaryForm  = "paragraphs"
	generationFailedMsg = "The AI could not generate usable questions from this material. Please try again."
)

var quizFileExts = map[string]bool{
	".pdf": true, ".txt": true, ".doc": true, ".docx": true, ".md": true,
}

var summaryFileExts = map[string]bool{
	".pdf": true, ".txt": true, ".doc": true, ".docx": true, ".md": true,
	".ppt": true, ".pptx": true,
}

type StudyToolsHandler struct {
	chatService *services.ChatService
	chatRepo    *repository.ChatRepo
	extract     *services.FileExtractService
	quota       *services.QuotaService
	ai          *services.OpenAIService
}

func NewStudyToolsHandler(chatService *services.ChatService, chatRepo *repository.ChatRepo, extract *services.FileExtractService, quota *services.QuotaService, ai *services.OpenAIService) *StudyToolsHandler {
	return &StudyToolsHandler{
		chatService: chatService,
		chatRepo:    chatRepo,
		extract:     extract,
		quota:       quota,
		ai:          ai,
	}
}

// GenerateQuiz builds a quiz from an uploaded document or pasted text.
// Premium gates apply before any model call so free users fail fast.
func (h *StudyToolsHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Expected multipart form data", r))
		return
	}

	questionType := llmtext.ParseQuestionType(r.FormValue("questionType"))
	difficulty := strings.TrimSpace(r.FormValue("difficulty"))
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	count := defaultQuizCount
	if raw := r.FormValue("questionCount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "questionCount must be a positive integer", r))
			return
		}
		count = n
	}

	if err := h.quota.CheckQuestionAllowance(r.Context(), userID, questionType, count); err != nil {
		handleServiceError(w, r, err)
		return
	}

	material, sourceName, err := h.material(r, quizFileExts, maxQuizMaterial)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	questions, err := h.ai.GenerateQuiz(r.Context(), material, questionType, count, difficulty)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", generationFailedMsg, r))
		return
	}
	if len(questions) == 0 {
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", generationFailedMsg, r))
		return
	}

	h.quota.RecordQuestions(r.Context(), userID, len(questions))

	resp := models.QuizResponse{
		Questions:    questions,
		QuestionType: string(questionType),
		Difficulty:   difficulty,
		SourceName:   sourceName,
	}

	h.saveCard(r, userID, r.FormValue("chat_id"), "Generate a quiz from "+cardLabel(sourceName), "quiz", resp)

	writeJSON(w, http.StatusOK, resp)
}

// ScoreQuestions grades free-form theory answers.
func (h *StudyToolsHandler) ScoreQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if len(req.Questions) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "questions is required", r))
		return
	}
	if len(req.UserAnswers) != len(req.Questions) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "userAnswers must match questions", r))
		return
	}

	scores, err := h.ai.ScoreAnswers(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", "Scoring failed. Please try again.", r))
		return
	}

	writeJSON(w, http.StatusOK, models.ScoreQuestionsResponse{Scores: scores})
}

// material resolves the study material: an uploaded file takes precedence,
// otherwise the pasted "text" form value. Extracted text must be long enough
// to be worth generating from and is capped to keep prompts bounded.
func (h *StudyToolsHandler) material(r *http.Request, allowedExts map[string]bool, limit int) (text, sourceName string, err error) {
	file, header, ferr := r.FormFile("file")
	if ferr == nil {
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedExts[ext] {
			return "", "", &uploadError{"Unsupported file type " + ext}
		}

		data, rerr := io.ReadAll(file)
		if rerr != nil {
			return "", "", &uploadError{"Failed to read uploaded file"}
		}

		text, err = h.extract.ExtractText(header.Filename, data)
		if err != nil {
			return "", "", &uploadError{"Could not extract text from the uploaded file"}
		}
		sourceName = header.Filename
	} else {
		text = strings.TrimSpace(r.FormValue("text"))
	}

	if len(text) < minMaterialChars {
		return "", "", &uploadError{"Study material must be at least 100 characters"}
	}
	if len(text) > limit {
		text = text[:limit]
	}
	return text, sourceName, nil
}

type uploadError struct{ msg string }

func (e *uploadError) Error() string { return e.msg }

// saveCard stores a structured result as a chat-history card when the
// request names a chat the user can write to. Failures are silent; the
// generation result still goes back to the client.
func (h *StudyToolsHandler) saveCard(r *http.Request, userID uuid.UUID, rawChatID, prompt, responseType string, payload interface{}) {
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

	metadata, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := &models.ChatHistory{
		ChatID:           chatID,
		UserID:           userID,
		Prompt:           prompt,
		Response:         "",
		ResponseType:     responseType,
		ResponseMetadata: metadata,
	}
	if err := h.chatRepo.AddHistory(r.Context(), entry); err == nil {
		h.chatRepo.Touch(r.Context(), chatID)
	}
}

func cardLabel(sourceName string) string {
	if sourceName == "" {
		return "pasted text"
	}
	return sourceName
}
