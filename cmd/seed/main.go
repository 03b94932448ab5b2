package main

import (
	"context"
	"flag"
	"log"

	"github.com/legalcms/backend/internal/config"
	"github.com/legalcms/backend/internal/db"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/seed"
	"github.com/legalcms/backend/internal/services"
	"github.com/legalcms/backend/internal/session"
)

func main() {
	file := flag.String("file", "", "seed file (default data/initial-users.json)")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFile)

	gdb, err := db.Connect(cfg.Database, cfg.LogLevel)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Running database migrations...", nil)
	if err := db.AutoMigrate(gdb); err != nil {
		logger.Fatal("Migrations failed", map[string]interface{}{"error": err.Error()})
	}

	data, err := seed.Load(*file)
	if err != nil {
		logger.Fatal("Failed to load seed data", map[string]interface{}{"error": err.Error()})
	}

	repos := repository.NewGormRepositories(gdb)
	svc := services.New(repos, services.Options{
		Issuer:   session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Location: cfg.Location(),
	})

	logger.Info("Seeding database with sample data...", nil)
	res, err := seed.Run(context.Background(), repos, svc, data)
	if err != nil {
		logger.Fatal("Seeding failed", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("Database seeding completed successfully", map[string]interface{}{
		"usersCreated": res.UsersCreated,
		"usersSkipped": res.UsersSkipped,
		"casesCreated": res.CasesCreated,
		"casesSkipped": res.CasesSkipped,
	})
}
