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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/bot"
	"github.com/harsha86604/Backlog-excellence-bot/internal/config"
	"github.com/harsha86604/Backlog-excellence-bot/internal/devops"
	"github.com/harsha86604/Backlog-excellence-bot/internal/handler"
	"github.com/harsha86604/Backlog-excellence-bot/internal/intent"
	"github.com/harsha86604/Backlog-excellence-bot/internal/llm"
	"github.com/harsha86604/Backlog-excellence-bot/internal/repo"
	"github.com/harsha86604/Backlog-excellence-bot/internal/service"
	"github.com/harsha86604/Backlog-excellence-bot/internal/session"
	"github.com/harsha86604/Backlog-excellence-bot/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping the Database.")
	}
	logger.Info("Successfully connected to the Database!")

	directory := devops.New(devops.Options{
		Org:     cfg.DevOpsOrg,
		Project: cfg.DevOpsProject,
		PAT:     cfg.DevOpsPAT,
		Timeout: cfg.HTTPTimeout,
	})

	completer, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("Failed to create language model client: %v", err)
	}

	users := repo.NewUserRepo(pool)
	userService := service.NewUserService(users)
	sessions := session.NewManager(24 * time.Hour)

	classifier := intent.NewClassifier(completer, logger)
	chatBot := bot.New(directory, classifier, completer, logger)

	authHandler := handler.NewAuthHandler(userService, sessions, logger)
	chatHandler := handler.NewChatHandler(chatBot, users, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authHandler.RequireUser)
		r.Post("/api/logout", authHandler.Logout)
		r.Get("/api/profile", authHandler.Profile)
		r.Put("/api/profile", authHandler.UpdateProfile)
		r.Post("/api/chat", chatHandler.Chat)
		r.Get("/api/history", chatHandler.History)
		r.Delete("/api/history", chatHandler.DeleteHistory)
	})

	digest := worker.NewDigest(directory, logger, cfg.DigestInterval)
	digest.Start(ctx)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // chat turns wait on two network collaborators
	}

	go func() {
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	digest.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}
