package main

import (
	"log"

	"github.com/bibliaplan/internal/config"
	"github.com/bibliaplan/internal/db"
	"github.com/bibliaplan/internal/handler"
	"github.com/bibliaplan/internal/plan"
	"github.com/bibliaplan/internal/router"
)

func main() {
	cfg := config.Load()

	if err := plan.Load(); err != nil {
		log.Fatalf("failed to load reading plan: %v", err)
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureAdmin(cfg.AdminNome, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to bootstrap admin user: %v", err)
	}

	api := handler.NewAPI(db.DB, nil)
	api.Limiter().StartSweeper()
	defer api.Limiter().StopSweeper()

	r := router.SetupRouter(api, cfg.SessionSecret, cfg.Production)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
