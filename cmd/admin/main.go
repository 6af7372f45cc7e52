package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"ridechat/backend/internal/config"
	"ridechat/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	})

	storageSvc := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "ban":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin ban <user_id> [duration_in_hours]")
			os.Exit(1)
		}
		userID := os.Args[2]
		duration := config.BanLevel3Duration
		if len(os.Args) > 3 {
			hours, err := strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer.")
				os.Exit(1)
			}
			duration = time.Duration(hours) * time.Hour
		}
		if err := storageSvc.BanUser(userID, duration); err != nil {
			log.Fatalf("Error banning user: %v", err)
		}
		fmt.Printf("User %s has been banned for %s.\n", userID, duration)

	case "unban":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unban <user_id>")
			os.Exit(1)
		}
		if err := storageSvc.UnbanUser(os.Args[2]); err != nil {
			log.Fatalf("Error unbanning user: %v", err)
		}
		fmt.Printf("User %s has been unbanned.\n", os.Args[2])

	case "close-room":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close-room <room_id>")
			os.Exit(1)
		}
		if err := storageSvc.CloseRoom(os.Args[2]); err != nil {
			log.Fatalf("Error closing room: %v", err)
		}
		fmt.Printf("Room %s has been closed.\n", os.Args[2])

	case "active-rooms":
		ids, err := storageSvc.GetActiveRoomIDs()
		if err != nil {
			log.Fatalf("Error listing rooms: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}

	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: admin <ban|unban|close-room|active-rooms> [args]")
	os.Exit(1)
}
