package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"verification_portal/internal/api"
	"verification_portal/internal/config"
	"verification_portal/internal/logger"
	"verification_portal/internal/messaging"
	"verification_portal/internal/repository"
	"verification_portal/internal/service"
	"verification_portal/internal/session"
	"verification_portal/internal/transport"
)

func runMigrations(db *pgxpool.Pool, log *zap.Logger) error {
	log.Info("Running database migrations")

	migrationsDir := "migrations"
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrationFiles []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)

	for _, filename := range migrationFiles {
		log.Info("Running migration", zap.String("file", filename))

		content, err := os.ReadFile(filepath.Join(migrationsDir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if _, err := db.Exec(context.Background(), string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		log.Info("Migration completed", zap.String("file", filename))
	}

	log.Info("All migrations completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting verification portal gateway",
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Bool("fallback", cfg.Fallback.Enabled),
		zap.Bool("demo", cfg.Fallback.Demo))

	// Снимки нужны только для резервного чтения, без базы шлюз работает
	var snapshots repository.SnapshotRepository
	if cfg.Database.Enabled {
		db, err := pgxpool.New(context.Background(), cfg.DatabaseDSN())
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		log.Info("Connected to database")

		if err := runMigrations(db, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		snapshots = repository.NewSnapshotRepository(db, log)
	}

	tracker := session.NewTracker()
	defer tracker.Close()

	var events service.EventPublisher
	if cfg.NATS.Enabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS.URL, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsClient.Close()
		events = natsClient

		log.Info("Connected to NATS")

		// Запись, рассмотренную в другом месте, нужно перечитать
		err = natsClient.SubscribeToReviewed(context.Background(), func(msg messaging.ReviewedMessage) {
			tracker.Invalidate(msg.VerificationID)
			log.Info("Received verification reviewed notification",
				zap.String("verification_id", msg.VerificationID),
				zap.String("status", msg.Status))
		})
		if err != nil {
			log.Error("Failed to subscribe to verification reviewed", zap.Error(err))
		}
	}

	upstream := transport.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log)
	fallback := service.FallbackOptions{
		Enabled: cfg.Fallback.Enabled,
		Demo:    cfg.Fallback.Demo,
	}

	verificationRepo := repository.NewVerificationRepository(upstream, log)
	categoryRepo := repository.NewCategoryRepository(upstream, log)
	verificationService := service.NewVerificationService(verificationRepo, snapshots, events, fallback, log)
	categoryService := service.NewCategoryService(categoryRepo, snapshots, events, fallback, log)

	handler := api.NewHandler(verificationService, categoryService, tracker, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Starting server", zap.String("address", addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
