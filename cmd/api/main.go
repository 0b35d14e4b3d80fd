package main

import (
	"context"
	"log"

	"github.com/itnnovator/annota-backend/config"
	"github.com/itnnovator/annota-backend/internal/bootstrap"
	"github.com/itnnovator/annota-backend/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer database.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	app := bootstrap.BuildApp(cfg, database.Pool, rdb)

	if err := app.Sweeper.Start(); err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	defer app.Sweeper.Stop()

	log.Printf("annota api listening on :%s", cfg.Server.Port)
	if err := app.Router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
