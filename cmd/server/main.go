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

	"github.com/redis/go-redis/v9"

	"messenger/internal/blob"
	"messenger/internal/config"
	"messenger/internal/httpserver"
	"messenger/internal/logger"
	"messenger/internal/security"
	"messenger/internal/service"
	"messenger/internal/store/postgres"
	"messenger/internal/store/sqlite"
	"messenger/internal/store/sqlrepo"
)

// @title           Messenger API
// @version         1.0
// @description     Backend API for private chats, groups and channels.

// @host            localhost:8000
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logCloser, err := logger.Setup(cfg, "server")
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	ctx := context.Background()

	// Initialize database
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	encryptor, err := security.NewEncryptor([]byte(cfg.EncryptKey))
	if err != nil {
		log.Fatalf("failed to initialize encryptor: %v", err)
	}

	revocations, err := openRevocations(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	blobs, err := blob.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads", cfg.UploadMaxBytes, cfg.UploadAllowedExts)
	if err != nil {
		log.Fatalf("failed to initialize uploads: %v", err)
	}

	// Services
	deps := httpserver.Deps{
		Auth:     service.NewAuthService(store.Users(), tokenSvc, passwordHasher, revocations),
		Users:    service.NewUserService(store, passwordHasher),
		Chats:    service.NewChatService(store),
		Members:  service.NewMembershipService(store),
		Messages: service.NewMessageService(store, encryptor, blobs),
		Blobs:    blobs,
	}

	// Build HTTP router
	router := httpserver.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting %s server on %s (db=%s)", cfg.AppName, cfg.HTTPAddr(), cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*sqlrepo.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	case "sqlite":
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

// openRevocations picks the Redis store when REDIS_URL is set.
func openRevocations(ctx context.Context, cfg *config.Config) (security.Revocations, error) {
	if cfg.RedisURL == "" {
		log.Printf("REDIS_URL not set, keeping token revocations in memory")
		return security.NewMemoryRevocations(), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return security.NewRedisRevocations(client), nil
}
