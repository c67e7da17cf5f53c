package main

import (
	"context"
	"log"
	"os"

	"plugdrop/internal/config"
	"plugdrop/internal/db"
	productrepo "plugdrop/internal/repository/product"
	userrepo "plugdrop/internal/repository/user"
	"plugdrop/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	users := userrepo.NewPostgres(pool)
	products := productrepo.NewPostgres(pool, logger)

	if err := seed.Apply(ctx, users, products, logger); err != nil {
		logger.Fatalf("seed: %v", err)
	}

	logger.Println("seed data applied")
}
