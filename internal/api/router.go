package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/vittamhq/loan-widget/internal/api/handler"
	customMiddleware "github.com/vittamhq/loan-widget/internal/api/middleware"
	"github.com/vittamhq/loan-widget/internal/assist"
	"github.com/vittamhq/loan-widget/internal/config"
	"github.com/vittamhq/loan-widget/internal/llm"
	"github.com/vittamhq/loan-widget/internal/llm/gemini"
	"github.com/vittamhq/loan-widget/internal/llm/openai"
	"github.com/vittamhq/loan-widget/internal/loan"
	"github.com/vittamhq/loan-widget/internal/repository/mongo"
	"github.com/vittamhq/loan-widget/internal/repository/redis"
	"github.com/vittamhq/loan-widget/internal/security"
	"github.com/vittamhq/loan-widget/internal/storage"
	"github.com/vittamhq/loan-widget/internal/verification"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *mongo.DB, redisClient *redis.Client, store *storage.Store) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS: the widget embeds on arbitrary host pages
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Repositories
	sessionRepo := mongo.NewSessionRepository(db)
	conversationRepo := mongo.NewConversationRepository(db)
	documentRepo := mongo.NewDocumentRepository(db)
	sanctionRepo := mongo.NewSanctionRepository(db)
	customerRepo := mongo.NewCustomerRepository(db)
	offerRepo := mongo.NewOfferRepository(db)

	// LLM providers: one for chat, one for vision. The vision side always
	// needs image support, so it falls back to whichever provider has it
	// configured.
	chatProvider, visionProvider := buildProviders(cfg)

	// Services
	logger := log.Logger
	otpStore := redis.NewOTPStore(redisClient, cfg.Security.OTPTTL)
	loanService := loan.NewService(customerRepo, offerRepo, sanctionRepo, logger)
	verificationService := verification.NewService(documentRepo, store, visionProvider, logger)
	assistService := assist.NewService(
		sessionRepo, conversationRepo, documentRepo, customerRepo,
		loanService, otpStore, chatProvider, store, logger,
	)

	// Security
	jwtManager := security.NewJWTManager(cfg.Ops.JWTSecret, cfg.Ops.TokenTTL)
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	// Handlers
	sessionHandler := handler.NewSessionHandler(assistService)
	chatHandler := handler.NewChatHandler(assistService)
	uploadHandler := handler.NewUploadHandler(sessionRepo, documentRepo, store, cfg.Upload.MaxFileSize)
	documentHandler := handler.NewDocumentHandler(documentRepo, verificationService)
	adminHandler := handler.NewAdminHandler(cfg.Ops, jwtManager, sessionRepo, conversationRepo, documentRepo, sanctionRepo, assistService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, redisClient))

		// Widget-facing routes
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware.Limit)

			r.Post("/session", sessionHandler.Create)
			r.Get("/session/{sessionID}/history", sessionHandler.History)
			r.Delete("/session/{sessionID}", sessionHandler.Delete)

			r.Post("/chat", chatHandler.Send)

			r.Post("/upload", uploadHandler.Upload)
			r.Get("/documents/{sessionID}", documentHandler.List)
			r.Post("/documents/{sessionID}/verify", documentHandler.VerifySession)
			r.Post("/documents/verify/{documentID}", documentHandler.VerifyDocument)
		})

		// Operator routes
		r.Route("/ops", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)

				r.Get("/sessions", adminHandler.ListSessions)
				r.Get("/sessions/{sessionID}", adminHandler.GetSession)
				r.Delete("/sessions/{sessionID}", adminHandler.DeleteSession)
				r.Get("/sanctions", adminHandler.ListSanctions)
			})
		})
	})

	return r
}

func buildProviders(cfg *config.Config) (chat llm.Provider, vision llm.Provider) {
	openaiProvider := openai.NewProvider(cfg.LLM.OpenAI)
	geminiProvider := gemini.NewProvider(cfg.LLM.Gemini)

	chat = llm.Provider(openaiProvider)
	if cfg.LLM.DefaultProvider == "gemini" && geminiProvider.IsConfigured() {
		chat = geminiProvider
	}
	if !chat.IsConfigured() {
		if geminiProvider.IsConfigured() {
			chat = geminiProvider
		} else {
			log.Warn().Msg("no chat provider configured, model calls will fail")
		}
	}

	vision = llm.Provider(openaiProvider)
	if !openaiProvider.IsConfigured() && geminiProvider.IsConfigured() {
		vision = geminiProvider
	}

	log.Info().Str("chat", chat.Name()).Str("vision", vision.Name()).Msg("llm providers selected")
	return chat, vision
}
