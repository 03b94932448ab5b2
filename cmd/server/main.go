package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/legalcms/backend/internal/config"
	"github.com/legalcms/backend/internal/controllers"
	"github.com/legalcms/backend/internal/db"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/middleware"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/routes"
	"github.com/legalcms/backend/internal/seed"
	"github.com/legalcms/backend/internal/services"
	"github.com/legalcms/backend/internal/session"
	"github.com/legalcms/backend/internal/storage"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.LogLevel, cfg.LogFile)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		logger.Fatal("Server stopped with error", map[string]interface{}{
			"error": err.Error(),
		})
	}
	logger.Info("Server exited gracefully", nil)
}

func run(cfg config.Config) error {
	gdb, err := db.Connect(cfg.Database, cfg.LogLevel)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}

	healthChecks := map[string]controllers.Pinger{}
	var revoker session.TokenRevoker = session.NewMemoryRevoker()
	if cfg.RedisAddr != "" {
		redisRevoker, err := session.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer redisRevoker.Close()
		revoker = redisRevoker
		healthChecks["redis"] = redisRevoker
	}

	repos := repository.NewGormRepositories(gdb)
	svc := services.New(repos, services.Options{
		Issuer:         session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Revoker:        revoker,
		Store:          store,
		Location:       cfg.Location(),
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == "development" {
		logger.Info("Seeding database with initial data", nil)
		if err := seedDatabase(ctx, repos, svc); err != nil {
			logger.Warn("Failed to seed database", map[string]interface{}{"error": err.Error()})
		}
	}

	router := routes.NewRouter(routes.Dependencies{
		DB:           gdb,
		Services:     svc,
		CORSOrigin:   cfg.CORSOrigin,
		AuthLimiter:  middleware.NewRateLimiter(ctx, cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst),
		HealthChecks: healthChecks,
	})
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting legal case management API", map[string]interface{}{
			"port":     cfg.Port,
			"gin_mode": gin.Mode(),
			"env":      cfg.Env,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server gracefully...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
		return nil
	})

	return g.Wait()
}

func seedDatabase(ctx context.Context, repos repository.Repositories, svc *services.Services) error {
	data, err := seed.Load(os.Getenv("SEED_FILE"))
	if err != nil {
		return err
	}
	res, err := seed.Run(ctx, repos, svc, data)
	if err != nil {
		return err
	}
	logger.Info("Database seeding completed", map[string]interface{}{
		"usersCreated": res.UsersCreated,
		"casesCreated": res.CasesCreated,
	})
	return nil
}
