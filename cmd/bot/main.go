package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rewaq/internal/assistant"
	"rewaq/internal/auth"
	"rewaq/internal/clock"
	"rewaq/internal/config"
	"rewaq/internal/database"
	"rewaq/internal/engine"
	"rewaq/internal/httpmiddleware"
	"rewaq/internal/ledger"
	"rewaq/internal/lock"
	"rewaq/internal/metrics"
	"rewaq/internal/queue"
	"rewaq/internal/roster"
	"rewaq/internal/router"
	"rewaq/internal/store"
	"rewaq/internal/transcript"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		// The in-memory fallback loses every record on restart and answers
		// "not registered" to everyone; it is a dev convenience only.
		if cfg.Production() {
			return fmt.Errorf("db not reachable: %w", err)
		}
		log.Printf("warning: db not reachable, falling back to in-memory ledger: %v", err)
		db = nil
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	var (
		led     ledger.Ledger
		members *roster.Roster
	)
	if db != nil {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		members, err = roster.Load(ctx, db.Client)
		if err != nil {
			return err
		}
		log.Printf("roster loaded: %d participants", members.Size())
		led = ledger.NewPostgres(db.Client)
	} else {
		members = roster.New(nil)
		led = ledger.NewMemory()
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rewaq:transcripts")
	}

	var locker lock.Locker
	if cfg.LockBackend == "redis" {
		locker = lock.NewRedis(redisClient.Client, 10*time.Second)
	} else {
		locker = lock.NewMemory()
	}

	llm := assistant.New(cfg.AssistantURL, cfg.AssistantAPIKey, cfg.AssistantModel, cfg.AssistantSkip)
	if cfg.AssistantSkip {
		log.Println("assistant in skip mode (ASSISTANT_API_KEY not required)")
	}

	col := metrics.NewCollector(prometheus.DefaultRegisterer)
	eng := engine.New(members, led, locker, clock.NewSystem())
	disp := router.New(eng, llm, col)

	var authRepo *auth.Repository
	if db != nil {
		authRepo = auth.NewRepository(db.Client)
	}

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(corsMiddleware())

	// Security headers
	r.Use(securityHeaders())

	// Rate limiting
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/transport/register", func(c *gin.Context) {
		var req struct {
			BridgeID string `json:"bridge_id" binding:"required"`
			Secret   string `json:"secret" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Secret != cfg.BridgeSecret {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid bridge secret"})
			return
		}

		tokens, err := auth.Issue(req.BridgeID, "bridge", cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		if authRepo != nil {
			_ = authRepo.SaveRefreshToken(c.Request.Context(), req.BridgeID, tokens.RefreshToken, tokens.RefreshExp)
		}

		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	// Endpoints the chat transport bridge calls with a bearer token.
	authGroup := r.Group("/v1", auth.BridgeAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.POST("/updates", func(c *gin.Context) {
		var req struct {
			ChatID string `json:"chat_id" binding:"required"`
			Text   string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		reply := disp.Dispatch(c.Request.Context(), req.Text)

		evt := transcript.NewEvent(req.ChatID, req.Text, reply, time.Now().UTC())
		if body, err := json.Marshal(evt); err == nil {
			if err := q.Publish(ctx, queue.Message{Type: transcript.MessageType, Body: body}); err != nil {
				log.Printf("queue publish failed: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"reply": reply})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
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

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
