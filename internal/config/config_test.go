package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	required := map[string]string{
		"DATABASE_URL":        "postgres://localhost/qwikstudi_test",
		"REDIS_URL":           "redis://localhost:6379/1",
		"JWT_SECRET":          "test-secret",
		"OPENAI_API_KEY":      "sk-test",
		"PAYSTACK_SECRET_KEY": "sk_test_abc",
	}
	for k, v := range required {
		t.Setenv(k, v)
	}
	t.Setenv("GUEST_CHAT_LIMIT", "5")
	t.Setenv("FRONTEND_URL", "http://localhost:5173")
	os.Unsetenv("PORT")
	os.Unsetenv("PREMIUM_AMOUNT")
	os.Unsetenv("FRONTEND_CALLBACK_URL")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.PremiumAmount != "3000" || cfg.PremiumCurrency != "GHS" {
		t.Errorf("Unexpected premium pricing: %s %s", cfg.PremiumAmount, cfg.PremiumCurrency)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("Unexpected default chat model %q", cfg.ChatModel)
	}
	if cfg.GuestChatLimit != 5 {
		t.Errorf("Expected overridden guest limit 5, got %d", cfg.GuestChatLimit)
	}
	if cfg.FreeQuestionCap != 20 || cfg.FreeAudioMinutes != 10 {
		t.Errorf("Unexpected free-tier caps: %d questions, %d minutes", cfg.FreeQuestionCap, cfg.FreeAudioMinutes)
	}
	if cfg.FrontendCallbackURL != cfg.FrontendURL+"/payment/callback" {
		t.Errorf("Expected callback derived from frontend URL, got %q", cfg.FrontendCallbackURL)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("QS_TEST_STRING", "hello")
	if got := getEnvOrDefault("QS_TEST_STRING", "fallback"); got != "hello" {
		t.Errorf("Expected env value, got %q", got)
	}
	if got := getEnvOrDefault("QS_TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %q", got)
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback int
		want     int
	}{
		{"parses integer", "42", 10, 42},
		{"empty uses fallback", "", 10, 10},
		{"non-numeric uses fallback", "ten", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := "QS_TEST_INT"
			os.Unsetenv(key)
			if tc.value != "" {
				t.Setenv(key, tc.value)
			}
			if got := getEnvAsIntOrDefault(key, tc.fallback); got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestMustGetEnv_PanicsWhenMissing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("QS_TEST_REQUIRED_MISSING")
	mustGetEnv("QS_TEST_REQUIRED_MISSING")
}
