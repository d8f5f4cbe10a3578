package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qwikstudi-backend/internal/config"
	"qwikstudi-backend/internal/database"
	"qwikstudi-backend/internal/handlers"
	"qwikstudi-backend/internal/middleware"
	"qwikstudi-backend/internal/repository"
	"qwikstudi-backend/internal/router"
	"qwikstudi-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting QwikStudi Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	chatRepo := repository.NewChatRepo(pool)
	collabRepo := repository.NewCollaboratorRepo(pool)
	guestRepo := repository.NewGuestRepo(pool)
	paymentRepo := repository.NewPaymentRepo(pool)
	ttsRepo := repository.NewTTSRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	extractService := services.NewFileExtractService()
	aiService := services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.TTSModel, cfg.TranscribeModel)
	log.Println("✓ OpenAI client initialized")

	authService := services.NewAuthService(userRepo, profileRepo, redisClient, jwtAuth, cfg.GoogleClientID)
	chatService := services.NewChatService(chatRepo, collabRepo)
	quotaService := services.NewQuotaService(profileRepo, guestRepo, cfg.GuestChatLimit, cfg.FreeQuestionCap, cfg.FreeAudioMinutes)
	paystackService := services.NewPaystackService(cfg.PaystackSecretKey)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, userRepo)
	chatHandler := handlers.NewChatHandler(chatService, chatRepo, quotaService, aiService)
	collabHandler := handlers.NewCollabHandler(chatService, collabRepo, userRepo, emailService)
	studyToolsHandler := handlers.NewStudyToolsHandler(chatService, chatRepo, extractService, quotaService, aiService)
	audioHandler := handlers.NewAudioHandler(chatService, chatRepo, ttsRepo, quotaService, aiService, cfg.StoragePath, cfg.PublicBaseURL)
	paymentsHandler := handlers.NewPaymentsHandler(paystackService, paymentRepo, userRepo, quotaService, cfg.PremiumAmount, cfg.PremiumCurrency, cfg.PublicBaseURL, cfg.FrontendCallbackURL)
	userHandler := handlers.NewUserHandler(userRepo)

	// ──── Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		chatHandler,
		collabHandler,
		studyToolsHandler,
		audioHandler,
		paymentsHandler,
		userHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ QwikStudi Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
