package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/parish/internal/backup"
	"github.com/dukerupert/parish/internal/database"
	"github.com/dukerupert/parish/internal/logging"
	"github.com/dukerupert/parish/internal/server"
)

func main() {
	port := os.Getenv("PARISH_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("PARISH_DB_PATH")
	if dbPath == "" {
		dbPath = "parish.db"
	}

	logger := logging.Setup(os.Getenv("PARISH_LOG_LEVEL"), os.Getenv("PARISH_LOG_FORMAT"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("PARISH_S3_ENDPOINT"),
			Bucket:    os.Getenv("PARISH_S3_BUCKET"),
			Region:    os.Getenv("PARISH_S3_REGION"),
			AccessKey: os.Getenv("PARISH_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("PARISH_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("PARISH_BACKUP_PASSPHRASE"),
		ScheduleHour:  envInt("PARISH_BACKUP_HOUR", 3),
		RetentionDays: envInt("PARISH_BACKUP_RETENTION_DAYS", 30),
	}

	srv := server.New(db, backupCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.BackupManager().Start(ctx)

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	srv.BackupManager().Stop()
	srv.Hub().Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
