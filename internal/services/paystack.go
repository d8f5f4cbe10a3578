package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackService is a thin client for the two Paystack calls the backend
// makes plus webhook signature verification.
type PaystackService struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPaystackService(secretKey string) *PaystackService {
	return &PaystackService{
		secretKey: secretKey,
		baseURL:   paystackBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type PaystackInitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaystackVerifyResult struct {
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Channel   string          `json:"channel"`
	Amount    int64           `json:"amount"`
	Raw       json.RawMessage `json:"-"`
}

// InitializeTransaction starts a checkout session. Amount is in the
// currency's minor unit as Paystack expects.
func (s *PaystackService) InitializeTransaction(ctx context.Context, email, amount, currency, reference, callbackURL string) (*PaystackInitResult, error) {
	payload, _ := json.Marshal(map[string]string{
		"email":        email,
		"amount":       amount,
		"currency":     currency,
		"reference":    reference,
		"callback_url": callbackURL,
	})

	var envelope struct {
		Status  bool               `json:"status"`
		Message string             `json:"message"`
		Data    PaystackInitResult `json:"data"`
	}
	if err := s.post(ctx, "/transaction/initialize", payload, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Status {
		return nil, fmt.Errorf("paystack initialize rejected: %s", envelope.Message)
	}
	return &envelope.Data, nil
}

// VerifyTransaction fetches the settled state of a reference.
func (s *PaystackService) VerifyTransaction(ctx context.Context, reference string) (*PaystackVerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("paystack verify decode failed: %w", err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("paystack verify rejected: %s", envelope.Message)
	}

	result := &PaystackVerifyResult{Raw: envelope.Data}
	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return nil, fmt.Errorf("paystack verify payload malformed: %w", err)
	}
	return result, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: an
// HMAC-SHA512 of the raw body keyed with the secret, compared in constant
// time.
func (s *PaystackService) VerifyWebhookSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(s.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *PaystackService) post(ctx context.Context, path string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("paystack response decode failed: %w", err)
	}
	return nil
}
