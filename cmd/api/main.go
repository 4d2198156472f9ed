package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"frontdesk-backend/cmd"
	"frontdesk-backend/internal/api"
	"frontdesk-backend/internal/chat"
	"frontdesk-backend/internal/config"
	"frontdesk-backend/internal/directory"
	"frontdesk-backend/internal/llm"
	"frontdesk-backend/internal/messaging"
	"frontdesk-backend/internal/metrics"
	"frontdesk-backend/internal/storage"
)

func createServer(cfg config.Config, stores *storage.Stores, pipeline *chat.Pipeline, dir *directory.Directory, feed *messaging.AlertFeed) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{api.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	chatHandler := api.NewChatService(pipeline)
	authHandler := api.NewAuthService(dir)
	adminHandler := api.NewAdminService(stores.Transcripts, stores.Knowledge, feed)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		api.WithTimeout(r).Get("/health", api.RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
		chatHandler.AddRoutes(r)
		authHandler.AddRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			if cfg.AdminPassword != "" {
				r.Use(middleware.BasicAuth("frontdesk-admin", map[string]string{cfg.AdminUser: cfg.AdminPassword}))
			} else {
				slog.Warn("ADMIN_PASSWORD not set, admin routes are unauthenticated")
			}
			adminHandler.AddRoutes(r)
		})
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
}

func main() {
	log.Println("Starting front desk API server...")

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logFile, err := cmd.SetupLogFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	slog.Info("starting backend", "port", cfg.Port, "llm_provider", cfg.LLMProvider, "model", cfg.LLMModel, "transcripts", cfg.TranscriptBackend, "knowledge", cfg.KnowledgeBackend, "queue", cfg.QueueBackend)

	if cfg.LLMAPIKey == "" {
		slog.Warn("OPENROUTER_API_KEY not set, model calls will fail")
	}

	stores, err := storage.OpenStores(context.Background(), cfg.Storage())
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			slog.Error("error closing storage", "error", err)
		}
	}()

	if err := storage.SeedKnowledge(context.Background(), stores.Knowledge, cfg.KnowledgeSeedFile); err != nil {
		log.Fatalf("Failed to seed knowledge base: %v", err)
	}

	client, err := llm.NewClient(cfg.LLMProvider, cfg.LLM())
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	dir, err := directory.Load()
	if err != nil {
		log.Fatalf("Failed to load student directory: %v", err)
	}

	publisher, reciever, err := cmd.CreateQueue(cfg)
	if err != nil {
		log.Fatalf("Failed to create escalation queue: %v", err)
	}
	defer publisher.Close()

	feed := messaging.NewAlertFeed(cfg.AlertFeedSize)
	worker := messaging.NewAlertWorker(reciever, feed)

	pipeline := chat.NewPipeline(stores.Transcripts, stores.Knowledge, client, nil, publisher)

	server := createServer(cfg, stores, pipeline, dir, feed)

	slog.Info("starting alert worker")
	go worker.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		slog.Info("shutting down alert worker")
		worker.Stop()
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	<-worker.Done()
	slog.Info("server stopped")
}
