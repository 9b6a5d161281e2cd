package main

import (
	"log"

	"rewaq/internal/config"
	"rewaq/internal/database"
)

func main() {
	cfg := config.Load()
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	log.Println("migrations applied")
}
