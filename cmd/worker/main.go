package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rafli4514/absensi-magang-sub001/internal/audit"
	"github.com/rafli4514/absensi-magang-sub001/internal/config"
	"github.com/rafli4514/absensi-magang-sub001/internal/queue"
	"github.com/rafli4514/absensi-magang-sub001/internal/store"
)

// Worker consumes queued admission outcomes and writes them to the audit log.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisDialTO, cfg.RedisOpTO)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "absensi:admissions")
	}

	trail := audit.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "admission" {
			continue
		}

		entry, err := audit.Unmarshal(msg.Body)
		if err != nil {
			log.Printf("skipping malformed audit entry: %v", err)
			continue
		}

		if err := trail.Insert(ctx, entry); err != nil {
			log.Printf("audit insert failed for participant %s: %v", entry.ParticipantID, err)
			continue
		}
		log.Printf("audit: %s %s %s", entry.ParticipantID, entry.Kind, entry.Outcome)
	}

	log.Println("worker stopped")
}
