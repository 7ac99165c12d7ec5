package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gemini-chat-backend/internal/handlers"
	"gemini-chat-backend/internal/middleware"
	"gemini-chat-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	sessionHandler *handlers.SessionHandler,
	modelHandler *handlers.ModelHandler,
	settingsHandler *handlers.SettingsHandler,
	wsHub *websocket.Hub,
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

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/login", authHandler.Login)
		})

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/messages", chatHandler.GetMessages)
			r.Post("/messages", chatHandler.SendMessage)
			r.Delete("/messages", chatHandler.ClearMessages)
			r.Post("/codeblock", chatHandler.Codeblock)
			r.Get("/export", chatHandler.Export)
		})

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", sessionHandler.Save)
			r.Get("/", sessionHandler.List)
			r.Get("/{id}", sessionHandler.Get)
			r.Put("/{id}", sessionHandler.Rename)
			r.Delete("/{id}", sessionHandler.Delete)
			r.Post("/{id}/restore", sessionHandler.Restore)
			r.Post("/{id}/smart-rename", sessionHandler.SmartRename)
		})

		// ──── Model Catalog Routes ────
		r.Route("/models", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", modelHandler.List)
			r.Post("/", modelHandler.Add)
			r.Delete("/{id}", modelHandler.Remove)
			r.Post("/reset", modelHandler.Reset)
			r.Post("/validate", modelHandler.Validate)
			r.Post("/validate-all", modelHandler.ValidateAll)
		})

		// ──── Settings Routes ────
		r.Route("/settings", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/template", settingsHandler.GetTemplate)
			r.Put("/template", settingsHandler.SetTemplate)
			r.Delete("/template", settingsHandler.ClearTemplate)
		})

		// ──── Credential Routes ────
		r.Route("/credential", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", settingsHandler.GetCredential)
			r.Put("/", settingsHandler.SetCredential)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
