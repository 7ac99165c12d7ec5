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

	"gemini-chat-backend/internal/config"
	"gemini-chat-backend/internal/database"
	"gemini-chat-backend/internal/handlers"
	"gemini-chat-backend/internal/middleware"
	"gemini-chat-backend/internal/prompt"
	"gemini-chat-backend/internal/repository"
	"gemini-chat-backend/internal/router"
	"gemini-chat-backend/internal/services"
	"gemini-chat-backend/internal/websocket"
	"gemini-chat-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Gemini Chat Backend...")

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

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	transcriptRepo := repository.NewTranscriptRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	modelRepo := repository.NewModelRepo(pool)
	templateRepo := repository.NewTemplateRepo(pool)
	credentialRepo, err := repository.NewCredentialRepo(pool, cfg.CredentialKeyHex)
	if err != nil {
		log.Fatalf("✗ Credential store initialization failed: %v", err)
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	geminiService := services.NewGeminiService()
	eventPublisher := services.NewEventPublisher(redisClients.PubSub)
	renameQueue := services.NewRenameQueue(redisClients.Queue)
	assembler := prompt.NewAssembler(templateRepo)
	authService := services.NewAuthService(jwtAuth, cfg.AccessPasswordHash)
	chatService := services.NewChatService(transcriptRepo, assembler, geminiService, credentialRepo, modelRepo, eventPublisher)
	sessionService := services.NewSessionService(sessionRepo, transcriptRepo, renameQueue, eventPublisher)
	modelService := services.NewModelService(modelRepo, geminiService, credentialRepo)
	settingsService := services.NewSettingsService(templateRepo, credentialRepo, modelRepo, geminiService)
	log.Println("✓ Gemini client ready")

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	modelHandler := handlers.NewModelHandler(modelService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// ──── Step 5: Start Rename Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		geminiService,
		renameQueue,
		sessionRepo,
		credentialRepo,
		eventPublisher,
		cfg.RenameModelID,
		cfg.RenameWorkers,
	)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.RenameWorkers)

	// Re-queue renames for sessions that never received a title, so jobs
	// lost to a restart are not lost forever.
	if ids, err := sessionRepo.ListUntitled(context.Background()); err == nil && len(ids) > 0 {
		for _, id := range ids {
			renameQueue.Enqueue(context.Background(), id)
		}
		log.Printf("✓ Re-queued %d pending session renames", len(ids))
	}

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		chatHandler,
		sessionHandler,
		modelHandler,
		settingsHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No write timeout: SSE responses stay open for the whole generation.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Gemini Chat Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
