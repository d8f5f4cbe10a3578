package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestTextToSpeech_Validation(t *testing.T) {
	h := NewAudioHandler(nil, nil, nil, nil, nil, t.TempDir(), "http://localhost:8080")

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"over limit", strings.Repeat("x", maxTTSChars+1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"text": tc.text})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/tts", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			h.TextToSpeech(rr, authedRequest(req, uuid.New()))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	h := NewAudioHandler(nil, nil, nil, nil, nil, t.TempDir(), "http://localhost:8080")

	req := multipartRequest(t, "/api/v1/transcribe", map[string]string{"note": "no file here"})
	rr := httptest.NewRecorder()

	h.Transcribe(rr, authedRequest(req, uuid.New()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestEstimateMinutes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"one word floors to minimum", "hello", minAudioMinutes},
		{"150 words is one minute", strings.Repeat("word ", 150), 1.0},
		{"300 words is two minutes", strings.Repeat("word ", 300), 2.0},
		{"empty floors to minimum", "", minAudioMinutes},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := estimateMinutes(tc.text)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("estimateMinutes = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMediaURL(t *testing.T) {
	h := NewAudioHandler(nil, nil, nil, nil, nil, t.TempDir(), "http://localhost:8080")

	got := h.mediaURL("tts_abc.mp3")
	if got != "http://localhost:8080/api/v1/media/tts_abc.mp3" {
		t.Errorf("Unexpected media URL: %q", got)
	}
}

func TestServeMedia_UnknownFile(t *testing.T) {
	h := NewAudioHandler(nil, nil, nil, nil, nil, t.TempDir(), "http://localhost:8080")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/tts_missing.mp3", nil)
	rr := httptest.NewRecorder()

	h.ServeMedia(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

func TestServeMedia_RejectsTraversal(t *testing.T) {
	h := NewAudioHandler(nil, nil, nil, nil, nil, t.TempDir(), "http://localhost:8080")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/..%2F..%2Fetc%2Fpasswd", nil)
	rr := httptest.NewRecorder()

	h.ServeMedia(rr, req)

	if rr.Code == http.StatusOK {
		t.Fatal("Expected traversal attempt to be rejected")
	}
}
