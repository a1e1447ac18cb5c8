package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"blogvelocity/internal/adapters/agent"
	"blogvelocity/internal/adapters/classifier"
	"blogvelocity/internal/adapters/memstore"
	"blogvelocity/internal/api"
	"blogvelocity/internal/config"
	logging "blogvelocity/internal/log"
	"blogvelocity/internal/service"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, environment variables might be set manually
		log.Println("No .env file found")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.InitLog(cfg.Service.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting velocity service",
		zap.String("address", cfg.Service.Address),
		zap.String("agent_url", cfg.Agent.BaseURL),
		zap.String("classifier_url", cfg.Classifier.BaseURL))

	// Initialize adapters
	store := memstore.New(cfg.Jobs, logger.With(zap.String("component", "jobstore")))
	defer store.Close()

	scraper := agent.NewClient(cfg.Agent, logger.With(zap.String("component", "agent")))
	titleClassifier := classifier.NewClient(cfg.Classifier, logger.With(zap.String("component", "classifier")))

	// Create orchestrator and HTTP surface
	orchestrator := service.NewOrchestrator(scraper, titleClassifier, store, logger.With(zap.String("component", "orchestrator")))
	router := api.NewRouter(api.NewHandler(orchestrator, store, logger.With(zap.String("component", "api"))))

	server := &http.Server{
		Addr:    cfg.Service.Address,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
