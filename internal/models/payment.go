package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

type UserPayment struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	PaystackReference string          `json:"paystack_reference"`
	Amount            string          `json:"amount"`
	Currency          string          `json:"currency"`
	PaymentMethod     *string         `json:"payment_method"`
	Status            string          `json:"status"`
	RawResponse       json.RawMessage `json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
}

type InitiatePaymentRequest struct {
	Email string `json:"email"`
}

type InitiatePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code,omitempty"`
}

type PaymentStatusResponse struct {
	IsPremium     bool       `json:"is_premium"`
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	Status        string     `json:"status,omitempty"`
}
