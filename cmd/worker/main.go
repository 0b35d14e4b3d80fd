package main

import (
	"context"
	"flag"
	"log"

	"github.com/itnnovator/annota-backend/config"
	approvalcron "github.com/itnnovator/annota-backend/internal/approval/cron"
	approvalrepo "github.com/itnnovator/annota-backend/internal/approval/repository"
	"github.com/itnnovator/annota-backend/internal/db"
)

// Standalone maintenance worker. With -once it runs a single sweep and
// exits, which is what a container cron job wants.
func main() {
	once := flag.Bool("once", false, "run one sweep and exit")
	flag.Parse()

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

	sweeper := approvalcron.NewSweeper(approvalrepo.NewRepo(database.Pool))

	if *once {
		sweeper.Run(ctx)
		return
	}

	if err := sweeper.Start(); err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	select {}
}
