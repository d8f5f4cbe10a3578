package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func chatRequest(t *testing.T, body map[string]string) *http.Request {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChat_EmptyPrompt(t *testing.T) {
	h := NewChatHandler(nil, nil, nil, nil)

	tests := []struct {
		name   string
		prompt string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := chatRequest(t, map[string]string{"prompt": tc.prompt})
			rr := httptest.NewRecorder()

			h.Chat(rr, authedRequest(req, uuid.New()))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestChat_PromptTooLong(t *testing.T) {
	h := NewChatHandler(nil, nil, nil, nil)

	req := chatRequest(t, map[string]string{"prompt": strings.Repeat("a", maxPromptLength+1)})
	rr := httptest.NewRecorder()

	h.Chat(rr, authedRequest(req, uuid.New()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); !strings.Contains(resp.Error.Message, "4000") {
		t.Errorf("Expected message naming the limit, got %q", resp.Error.Message)
	}
}

func TestChat_InvalidChatID(t *testing.T) {
	h := NewChatHandler(nil, nil, nil, nil)

	req := chatRequest(t, map[string]string{"prompt": "Explain photosynthesis", "chat_id": "not-a-uuid"})
	rr := httptest.NewRecorder()

	h.Chat(rr, authedRequest(req, uuid.New()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestChat_InvalidBody(t *testing.T) {
	h := NewChatHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("{broken"))
	rr := httptest.NewRecorder()

	h.Chat(rr, authedRequest(req, uuid.New()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestCommit_InvalidChatID(t *testing.T) {
	h := NewChatHandler(nil, nil, nil, nil)

	req := chatRequest(t, map[string]string{"chat_id": "garbage"})
	rr := httptest.NewRecorder()

	h.Commit(rr, authedRequest(req, uuid.New()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"203.0.113.7:52311", "203.0.113.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.7", "203.0.113.7"},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
		req.RemoteAddr = tc.remoteAddr
		if got := clientIP(req); got != tc.want {
			t.Errorf("clientIP(%q) = %q, want %q", tc.remoteAddr, got, tc.want)
		}
	}
}
