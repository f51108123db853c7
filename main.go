// mediaq/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"mediaq/api"
	"mediaq/config"
	"mediaq/ffmpeg"
	"mediaq/queue"
	"mediaq/storage"
	"mediaq/store"
	"mediaq/task"
	"mediaq/worker"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&logrus.JSONFormatter{})

	tempDir, err := os.MkdirTemp("", "mediaq_")
	if err != nil {
		log.Fatalf("Could not create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)
	cfg.TempDir = tempDir

	// 2. Initialize dependencies
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatalf("Redis unreachable at %s: %v", cfg.RedisAddr, err)
	}
	cancelPing()

	engine, err := ffmpeg.NewEngine(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize transform engine: %v", err)
	}

	var backend storage.Backend = storage.Local{}
	if cfg.StorageBackend == "s3" {
		backend, err = storage.NewMinIO(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
	}

	records := store.New(rdb)
	jobQueue := queue.New(rdb, cfg.QueueKey)
	orchestrator := task.NewOrchestrator(cfg, engine, records, backend, log)
	jobWorker := worker.New(cfg, jobQueue, orchestrator, log)

	// 3. Start the worker loop with a cancellable context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		jobWorker.Run(ctx)
	}()

	// 4. Optionally serve the status query API
	var srv *http.Server
	if cfg.APIEnable {
		router := api.SetupRouter(records, cfg)
		srv = &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		}
		go func() {
			log.Infof("Status API listening on port %s", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("listen: %s", err)
			}
		}()
	}

	// 5. Wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	stop()
	log.Info("Shutting down gracefully, press Ctrl+C again to force")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Server forced to shutdown: %v", err)
		}
	}

	// The worker finishes its in-flight job before exiting; cancellation is
	// only observed between poll iterations.
	<-workerDone
	log.Info("Worker exiting")
}
