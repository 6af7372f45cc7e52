package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"ridechat/backend/internal/api/handler"
	"ridechat/backend/internal/chathub"
	"ridechat/backend/internal/models"
	"ridechat/backend/internal/safety"
	"ridechat/backend/internal/storage"
	"ridechat/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "ridechatdb"),
		envOr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.RideRoom{},
		&models.ChatHistory{},
		&models.Report{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log.Println("Starting RideChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// Ops notifier is optional: without a bot token, reports are still
	// stored and scored, just not paged anywhere.
	var notifier safety.Notifier
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_OPS_CHAT_ID"), 10, 64)
		if err != nil {
			log.Fatalf("TELEGRAM_OPS_CHAT_ID is not a valid chat id: %v", err)
		}
		tg, err := telegram.NewNotifier(token, chatID)
		if err != nil {
			log.Fatalf("Failed to start Telegram notifier: %v", err)
		}
		notifier = tg
	}

	hub := chathub.NewHub(s)
	safetySvc := safety.NewService(s, notifier)

	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s, safetySvc)

	r.POST("/auth/token", h.IssueToken)
	r.GET("/ws", h.ServeWebSocket)

	authed := r.Group("/", h.RequireAuth)
	authed.POST("/rooms", h.CreateRoom)
	authed.POST("/rooms/:id/join", h.JoinRoom)
	authed.POST("/rooms/:id/leave", h.LeaveRoom)
	authed.GET("/rooms/:id/history", h.GetHistory)
	authed.POST("/reports", h.FileReport)

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
