package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"qwikstudi-backend/internal/llmtext"
	"qwikstudi-backend/internal/models"
)

func multipartRequest(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestGenerateQuiz_NotMultipart(t *testing.T) {
	h := NewStudyToolsHandler(nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quiz/generate", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.GenerateQuiz(rr, authedRequest(req, uuid.New()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestGenerateQuiz_InvalidQuestionCount(t *testing.T) {
	h := NewStudyToolsHandler(nil, nil, nil, nil, nil)

	tests := []struct {
		name  string
		count string
	}{
		{"not a number", "ten"},
		{"zero", "0"},
		{"negative", "-3"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := multipartRequest(t, "/api/v1/quiz/generate", map[string]string{
				"questionCount": tc.count,
				"text":          strings.Repeat("material ", 20),
			})
			rr := httptest.NewRecorder()

			h.GenerateQuiz(rr, authedRequest(req, uuid.New()))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rr.Code)
			}
			if resp := decodeError(t, rr); !strings.Contains(resp.Error.Message, "questionCount") {
				t.Errorf("Expected message naming questionCount, got %q", resp.Error.Message)
			}
		})
	}
}

func TestScoreQuestions_Validation(t *testing.T) {
	h := NewStudyToolsHandler(nil, nil, nil, nil, nil)

	question := llmtext.ExamQuestion{Question: "Define osmosis.", Type: "theory"}

	tests := []struct {
		name string
		req  models.ScoreQuestionsRequest
	}{
		{"no questions", models.ScoreQuestionsRequest{UserAnswers: []string{"a"}}},
		{"answer count mismatch", models.ScoreQuestionsRequest{
			Questions:   []llmtext.ExamQuestion{question},
			UserAnswers: []string{"a", "b"},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/score", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			h.ScoreQuestions(rr, authedRequest(req, uuid.New()))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestCardLabel(t *testing.T) {
	if got := cardLabel(""); got != "pasted text" {
		t.Errorf("Expected fallback label, got %q", got)
	}
	if got := cardLabel("notes.pdf"); got != "notes.pdf" {
		t.Errorf("Expected source name, got %q", got)
	}
}
