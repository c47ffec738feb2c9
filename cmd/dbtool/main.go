package main

import (
	"context"
	"log"
	"strings"
	"time"
	"transport-simulator/internal/adapters/repositories"
	"transport-simulator/internal/config"
	"transport-simulator/internal/platform/db"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool prepares the shared Postgres geocode cache used by every simulator.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("initializing database schema")
	if err := repositories.InitPostgresSchema(ctx, db); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
	logger.Info("schema ready")
}
