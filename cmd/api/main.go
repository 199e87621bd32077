package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
	"github.com/rafli4514/absensi-magang-sub001/internal/config"
	"github.com/rafli4514/absensi-magang-sub001/internal/dashboard"
	"github.com/rafli4514/absensi-magang-sub001/internal/httpapi"
	"github.com/rafli4514/absensi-magang-sub001/internal/httpmiddleware"
	"github.com/rafli4514/absensi-magang-sub001/internal/imagestore"
	"github.com/rafli4514/absensi-magang-sub001/internal/leave"
	"github.com/rafli4514/absensi-magang-sub001/internal/logbook"
	"github.com/rafli4514/absensi-magang-sub001/internal/participant"
	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
	"github.com/rafli4514/absensi-magang-sub001/internal/queue"
	"github.com/rafli4514/absensi-magang-sub001/internal/store"
	"github.com/rafli4514/absensi-magang-sub001/internal/user"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if db == nil {
		// Everything below dereferences the pool; an open failure is fatal.
		log.Fatalf("db open failed: %v", err)
	}
	if err != nil {
		log.Printf("warning: db not reachable: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisDialTO, cfg.RedisOpTO)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "absensi:admissions")
	}

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitPerMin > 0 {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	}

	// Cloudinary client (nil when not configured)
	var images *imagestore.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		images = imagestore.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	events := attendance.NewRepository(db.Client)
	participants := participant.NewRepository(db.Client)
	users := user.NewRepository(db.Client)
	settings := policy.NewRepository(db.Client)
	logbooks := logbook.NewRepository(db.Client)
	dashboards := dashboard.NewQueries(db.Client)

	admissions := attendance.NewService(participants, settings, events)
	leaves := leave.NewService(leave.NewRepository(db.Client), admissions, settings)

	srvAPI := httpapi.NewServer(httpapi.Deps{
		Cfg:          cfg,
		DB:           db,
		Redis:        redisClient,
		Admissions:   admissions,
		Events:       events,
		Participants: participants,
		Users:        users,
		Settings:     settings,
		Leaves:       leaves,
		Logbooks:     logbooks,
		Dashboards:   dashboards,
		Images:       images,
		Queue:        q,
		Limiter:      limiter,
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      srvAPI.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
