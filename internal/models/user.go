package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	GoogleID     *string    `json:"-"`
	AuthProvider string     `json:"auth_provider"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// UserProfile carries the quota and subscription state for one user.
// PremiumExpiry is only meaningful while IsPremium is true.
type UserProfile struct {
	UserID             uuid.UUID  `json:"user_id"`
	IsPremium          bool       `json:"is_premium"`
	PremiumExpiry      *time.Time `json:"premium_expiry"`
	QuestionsGenerated int        `json:"questions_generated"`
	AudioMinutesUsed   float64    `json:"audio_minutes_used"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts a username or an email in the identifier field.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// UserSummary is the trimmed shape returned by the user search endpoint.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}
