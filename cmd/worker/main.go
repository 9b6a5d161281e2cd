package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rewaq/internal/config"
	"rewaq/internal/queue"
	"rewaq/internal/store"
	"rewaq/internal/transcript"
)

// Worker consumes transcript events from the queue and persists them.
// Failures are logged and skipped; a lost transcript row is acceptable,
// a duplicated one is not.
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

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rewaq:transcripts")
	}

	repo := transcript.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for transcript events...")
	for msg := range messages {
		if msg.Type != transcript.MessageType {
			continue
		}

		var evt transcript.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("bad transcript payload: %v", err)
			continue
		}

		if err := repo.Append(ctx, evt); err != nil {
			log.Printf("transcript append failed for %s: %v", evt.ID, err)
			continue
		}
	}

	log.Println("worker stopped")
}
