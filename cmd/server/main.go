package main

import (
	"chat-rag/internal/api/handlers"
	"chat-rag/internal/api/middleware"
	"chat-rag/internal/app"
	"chat-rag/internal/config"
	"chat-rag/internal/logger"
	"chat-rag/internal/metrics"
	"chat-rag/internal/repository/postgres"
	"chat-rag/internal/service/llm"
	"chat-rag/internal/service/messaging"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	metrics.Init()

	logger.Log.WithField("dsn", appConfig.Database.Redacted()).Info("Initializing database...")
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := postgres.NewPostgresDB(initCtx, appConfig.Database)
	cancel()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	provider := llm.NewOpenRouterProvider(&appConfig.LLM, appConfig.Models)
	messenger := messaging.NewEvolutionClient(&appConfig.Messaging)
	deps := app.NewConfig(store, appConfig, provider, messenger)

	chatHandler := handlers.NewChatHandlers(deps)
	configHandler := handlers.NewConfigHandlers(deps)
	documentHandler := handlers.NewDocumentHandlers(deps)
	webhookHandler := handlers.NewWebhookHandlers(deps)

	mux := http.NewServeMux()

	// Resource routes dispatch on method themselves so that unsupported
	// methods get the JSON 405 body
	mux.HandleFunc("/api/chat", chatHandler.ChatHandler)
	mux.HandleFunc("/api/config", configHandler.ConfigHandler)
	mux.HandleFunc("/api/documents", documentHandler.DocumentsHandler)
	mux.HandleFunc("/api/webhook", webhookHandler.WebhookHandler)
	mux.HandleFunc("GET /api/models", chatHandler.GetModelsHandler)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Log.WithError(err).Warn("Health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.MetricsHandler())

	handler := middleware.Observe(middleware.MuxRoute(mux))(middleware.EnableCORS(mux))

	server := &http.Server{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      handler,
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(logrus.Fields{
			"port":      appConfig.Server.Port,
			"chat":      "/api/chat",
			"config":    "/api/config",
			"documents": "/api/documents",
			"webhook":   "/api/webhook",
			"health":    "/api/health",
			"metrics":   "/metrics",
		}).Info("Server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed to start")
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Log.Info("Shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
}
