package models

import (
	"time"

	"github.com/google/uuid"
)

type TextToSpeech struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	AudioPath string    `json:"audio_path"`
	CreatedAt time.Time `json:"created_at"`
}

type TTSRequest struct {
	Text   string `json:"text"`
	ChatID string `json:"chat_id"`
}

type TTSResponse struct {
	AudioURL         string  `json:"audio_url"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
	MinutesRemaining float64 `json:"minutes_remaining"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type TTSHistoryItem struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}

type TTSHistoryResponse struct {
	Items []TTSHistoryItem `json:"items"`
}
