// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/assist-link/support-agent/internal/config"
	"github.com/assist-link/support-agent/internal/events"
	"github.com/assist-link/support-agent/internal/handler"
	"github.com/assist-link/support-agent/internal/intent"
	"github.com/assist-link/support-agent/internal/llm"
	"github.com/assist-link/support-agent/internal/middleware"
	"github.com/assist-link/support-agent/internal/policy"
	"github.com/assist-link/support-agent/internal/sentiment"
	"github.com/assist-link/support-agent/internal/service"
	"github.com/assist-link/support-agent/internal/store"
	"github.com/assist-link/support-agent/internal/ticket"
	"github.com/assist-link/support-agent/internal/transcription"
	"github.com/assist-link/support-agent/pkg/logger"
	"github.com/assist-link/support-agent/pkg/tracing"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "support-agent", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Intent rule table misconfiguration is fatal at startup.
	intentClassifier, err := intent.NewClassifier()
	if err != nil {
		log.Error("invalid intent rule table", zap.Error(err))
		os.Exit(1)
	}

	// Optional NATS event publishing
	var (
		natsClient *events.Client
		publisher  events.Publisher = events.NopPublisher{}
	)
	if cfg.NATSURL != "" {
		natsClient, err = events.Connect(ctx, events.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer natsClient.Close()
			js, err := events.NewJetStreamPublisher(ctx, natsClient, log)
			if err != nil {
				log.Warn("failed to set up event stream, events disabled", zap.Error(err))
			} else {
				publisher = js
			}
		}
	}

	// Optional LLM ticket summaries
	var (
		llmClient llm.Client
		llmErr    error
	)
	switch {
	case cfg.DefaultLLM == string(llm.ProviderOpenAI) && cfg.OpenAIAPIKey != "":
		llmClient, llmErr = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, llmErr = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, llmErr = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	if llmErr != nil {
		log.Warn("failed to create LLM client, ticket summaries use templates", zap.Error(llmErr))
		llmClient = nil
	}

	// Collaborator adapters
	transcriber := transcription.NewClient(transcription.Config{
		APIKey:  cfg.DeepgramAPIKey,
		BaseURL: cfg.DeepgramBaseURL,
		Timeout: cfg.DeepgramTimeout,
	}, log)

	issuer := ticket.NewIssuer(ticket.Config{
		APIKey:  cfg.TrelloAPIKey,
		Token:   cfg.TrelloToken,
		ListID:  cfg.TrelloListID,
		BaseURL: cfg.TrelloBaseURL,
		Timeout: cfg.TrelloTimeout,
	}, ticket.NewSummarizer(llmClient, log), log)

	// Core service
	conversationSvc := service.NewConversationService(
		store.NewMemoryStore(),
		intentClassifier,
		sentiment.NewClassifier(),
		transcriber,
		issuer,
		policy.New(policy.Config{
			NegativeStreak: cfg.PolicyNegativeStreak,
			MaxTurns:       cfg.PolicyMaxTurns,
		}),
		publisher,
		log,
	)

	// Handlers
	healthHandler := handler.NewHealthHandler(transcriber, issuer, natsClient)
	conversationHandler := handler.NewConversationHandler(conversationSvc, log)
	voiceHandler := handler.NewVoiceHandler(conversationSvc, log)
	sentimentHandler := handler.NewSentimentHandler(conversationSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthJWTSecret != "" {
			r.Use(middleware.Auth(cfg.AuthJWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Conversations
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Start)
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Post("/messages", conversationHandler.Message)
				r.Post("/voice", voiceHandler.Turn)
				r.Post("/close", conversationHandler.Close)
			})
		})

		// Standalone sentiment analysis
		r.Route("/sentiment", func(r chi.Router) {
			r.Post("/text", sentimentHandler.Text)
			r.Post("/analyze", sentimentHandler.Analyze)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
