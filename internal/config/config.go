package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// OpenAI
	OpenAIAPIKey    string
	ChatModel       string
	TTSModel        string
	TranscribeModel string

	// Google OAuth
	GoogleClientID string

	// Paystack
	PaystackSecretKey string
	PremiumAmount     string
	PremiumCurrency   string

	// Storage
	StoragePath   string
	PublicBaseURL string

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Frontend
	FrontendURL         string
	FrontendCallbackURL string

	// Limits
	GuestChatLimit   int
	FreeQuestionCap  int
	FreeAudioMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		DatabaseURL:       mustGetEnv("DATABASE_URL"),
		RedisURL:          mustGetEnv("REDIS_URL"),
		JWTSecret:         mustGetEnv("JWT_SECRET"),
		OpenAIAPIKey:      mustGetEnv("OPENAI_API_KEY"),
		ChatModel:         getEnvOrDefault("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		TTSModel:          getEnvOrDefault("OPENAI_TTS_MODEL", "tts-1"),
		TranscribeModel:   getEnvOrDefault("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		GoogleClientID:    getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
		PaystackSecretKey: mustGetEnv("PAYSTACK_SECRET_KEY"),
		PremiumAmount:     getEnvOrDefault("PREMIUM_AMOUNT", "3000"),
		PremiumCurrency:   getEnvOrDefault("PREMIUM_CURRENCY", "GHS"),
		StoragePath:       getEnvOrDefault("STORAGE_PATH", "./uploads"),
		PublicBaseURL:     getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		SMTPHost:          getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:          getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:          getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:          getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:          getEnvOrDefault("SMTP_FROM", "noreply@qwikstudi.app"),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		FrontendCallbackURL: getEnvOrDefault("FRONTEND_CALLBACK_URL",
			getEnvOrDefault("FRONTEND_URL", "http://localhost:5173")+"/payment/callback"),
		GuestChatLimit:   getEnvAsIntOrDefault("GUEST_CHAT_LIMIT", 10),
		FreeQuestionCap:  getEnvAsIntOrDefault("FREE_QUESTION_CAP", 20),
		FreeAudioMinutes: getEnvAsIntOrDefault("FREE_AUDIO_MINUTES", 10),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
