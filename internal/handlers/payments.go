package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/models"
	"qwikstudi-backend/internal/repository"
	"qwikstudi-backend/internal/services"
)

const premiumDays = 30

type PaymentsHandler struct {
	paystack    *services.PaystackService
	paymentRepo *repository.PaymentRepo
	userRepo    *repository.UserRepo
	quota       *services.QuotaService
	amount      string
	currency    string
	// verifyURL is where Paystack sends the browser back (our verify
	// endpoint); frontendCallback is where we send it on from there.
	verifyURL        string
	frontendCallback string
}

func NewPaymentsHandler(paystack *services.PaystackService, paymentRepo *repository.PaymentRepo, userRepo *repository.UserRepo, quota *services.QuotaService, amount, currency, publicBaseURL, frontendCallback string) *PaymentsHandler {
	return &PaymentsHandler{
		paystack:         paystack,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		quota:            quota,
		amount:           amount,
		currency:         currency,
		verifyURL:        publicBaseURL + "/api/v1/payments/verify",
		frontendCallback: frontendCallback,
	}
}

// Initiate starts a premium checkout. Users who are already premium are
// rejected before touching Paystack.
func (h *PaymentsHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	premium, _, err := h.quota.IsPremium(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if premium {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "You already have an active premium subscription", r))
		return
	}

	var req models.InitiatePaymentRequest
	json.NewDecoder(r.Body).Decode(&req)

	email := strings.TrimSpace(req.Email)
	if email == "" {
		user, err := h.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
			return
		}
		email = user.Email
	}

	reference := "pay_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	payment := &models.UserPayment{
		UserID:            userID,
		PaystackReference: reference,
		Amount:            h.amount,
		Currency:          h.currency,
	}
	if err := h.paymentRepo.Create(r.Context(), payment); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record payment", r))
		return
	}

	init, err := h.paystack.InitializeTransaction(r.Context(), email, h.amount, h.currency, reference, h.verifyURL)
	if err != nil {
		log.Printf("paystack initialize failed for %s: %v", reference, err)
		writeJSON(w, http.StatusBadGateway, errorResp("PAYMENT_ERROR", "Could not start the payment. Please try again.", r))
		return
	}

	writeJSON(w, http.StatusOK, models.InitiatePaymentResponse{
		AuthorizationURL: init.AuthorizationURL,
		Reference:        reference,
		AccessCode:       init.AccessCode,
	})
}

// Verify is the browser return leg of the checkout: confirm the reference
// with Paystack, settle the row, then redirect to the frontend callback.
// Verification is idempotent, a reference already settled as success
// short-circuits to the success redirect.
func (h *PaymentsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		reference = r.URL.Query().Get("trxref")
	}
	if reference == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "reference is required", r))
		return
	}

	payment, err := h.paymentRepo.GetByReference(r.Context(), reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Unknown payment reference", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	if payment.Status == models.PaymentSuccess {
		h.redirect(w, r, models.PaymentSuccess, reference)
		return
	}

	result, err := h.paystack.VerifyTransaction(r.Context(), reference)
	if err != nil {
		log.Printf("paystack verify failed for %s: %v", reference, err)
		h.redirect(w, r, models.PaymentFailed, reference)
		return
	}

	if result.Status == "success" {
		h.settle(r, payment, result)
		h.redirect(w, r, models.PaymentSuccess, reference)
		return
	}

	h.paymentRepo.MarkCompleted(r.Context(), reference, models.PaymentFailed, nil, result.Raw)
	h.redirect(w, r, models.PaymentFailed, reference)
}

// Webhook handles Paystack's server-to-server charge notifications. The
// signature is an HMAC-SHA512 of the raw body; anything unsigned is dropped
// with a 401 and anything but charge.success is acknowledged and ignored.
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !h.paystack.VerifyWebhookSignature(body, r.Header.Get("x-paystack-signature")) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string          `json:"reference"`
			Status    string          `json:"status"`
			Channel   string          `json:"channel"`
			Raw       json.RawMessage `json:"-"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if event.Event != "charge.success" {
		w.WriteHeader(http.StatusOK)
		return
	}

	payment, err := h.paymentRepo.GetByReference(r.Context(), event.Data.Reference)
	if err != nil {
		// Unknown reference: acknowledge so Paystack stops retrying.
		w.WriteHeader(http.StatusOK)
		return
	}
	if payment.Status == models.PaymentSuccess {
		w.WriteHeader(http.StatusOK)
		return
	}

	result := &services.PaystackVerifyResult{
		Status:    event.Data.Status,
		Reference: event.Data.Reference,
		Channel:   event.Data.Channel,
		Raw:       body,
	}
	h.settle(r, payment, result)
	w.WriteHeader(http.StatusOK)
}

// Status reports the caller's premium state, with the lazy expiry downgrade
// applied, plus the state of a specific reference when asked. Without a
// reference it falls back to the caller's most recent payment.
func (h *PaymentsHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	premium, expiry, err := h.quota.IsPremium(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	resp := models.PaymentStatusResponse{
		IsPremium:     premium,
		PremiumExpiry: expiry,
	}

	if reference := r.URL.Query().Get("reference"); reference != "" {
		payment, err := h.paymentRepo.GetByReference(r.Context(), reference)
		if err == nil && payment.UserID == userID {
			resp.Reference = payment.PaystackReference
			resp.Status = payment.Status
		}
	} else if payment, err := h.paymentRepo.LatestForUser(r.Context(), userID); err == nil {
		resp.Reference = payment.PaystackReference
		resp.Status = payment.Status
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentsHandler) settle(r *http.Request, payment *models.UserPayment, result *services.PaystackVerifyResult) {
	var method *string
	if result.Channel != "" {
		method = &result.Channel
	}
	if err := h.paymentRepo.MarkCompleted(r.Context(), payment.PaystackReference, models.PaymentSuccess, method, result.Raw); err != nil {
		log.Printf("failed to settle payment %s: %v", payment.PaystackReference, err)
		return
	}
	if err := h.quota.ExtendPremium(r.Context(), payment.UserID, premiumDays); err != nil {
		log.Printf("failed to extend premium for %s: %v", payment.UserID, err)
	}
}

func (h *PaymentsHandler) redirect(w http.ResponseWriter, r *http.Request, status, reference string) {
	url := fmt.Sprintf("%s?status=%s&reference=%s", h.frontendCallback, status, reference)
	http.Redirect(w, r, url, http.StatusFound)
}
