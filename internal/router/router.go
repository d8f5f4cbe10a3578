package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"qwikstudi-backend/internal/handlers"
	"qwikstudi-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	collabHandler *handlers.CollabHandler,
	studyToolsHandler *handlers.StudyToolsHandler,
	audioHandler *handlers.AudioHandler,
	paymentsHandler *handlers.PaymentsHandler,
	userHandler *handlers.UserHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes ────
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/google", authHandler.GoogleLogin)
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		// ──── Chat Routes ────
		// POST /chat serves both guests and signed-in users, so the token
		// is optional here and the handler branches on its presence.
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.OptionalMiddleware)
			r.Post("/chat", chatHandler.Chat)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", chatHandler.ListChats)
			r.Post("/new", chatHandler.NewChat)
			r.Post("/commit", chatHandler.Commit)
			r.Get("/{id}/messages", chatHandler.Messages)
			r.Patch("/{id}", chatHandler.Rename)
			r.Delete("/{id}", chatHandler.Delete)

			// Collaboration
			r.Post("/{id}/share", collabHandler.Share)
			r.Post("/{id}/share-email", collabHandler.ShareByEmail)
			r.Post("/{id}/collaborators/add", collabHandler.Add)
			r.Post("/{id}/collaborators/remove", collabHandler.Remove)
			r.Get("/{id}/collaborators", collabHandler.List)
			r.Post("/{id}/approve", collabHandler.Approve)
			r.Post("/{id}/reject", collabHandler.Reject)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/collaborations/pending", collabHandler.Pending)
			r.Get("/users", userHandler.Search)
		})

		// ──── Study Tool Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/quiz/generate", studyToolsHandler.GenerateQuiz)
			r.Post("/questions/score", studyToolsHandler.ScoreQuestions)
			r.Post("/summarize", studyToolsHandler.Summarize)
		})

		// ──── Audio Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/tts", audioHandler.TextToSpeech)
			r.Get("/tts/history", audioHandler.History)
			r.Post("/transcribe", audioHandler.Transcribe)
		})

		// Generated audio is served by opaque filename, no auth needed.
		r.Get("/media/{filename}", audioHandler.ServeMedia)

		// ──── Payment Routes ────
		r.Route("/payments", func(r chi.Router) {
			// Paystack calls these without a token.
			r.Get("/verify", paymentsHandler.Verify)
			r.Post("/webhook", paymentsHandler.Webhook)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/initiate", paymentsHandler.Initiate)
				r.Get("/status", paymentsHandler.Status)
			})
		})
	})

	return r
}
