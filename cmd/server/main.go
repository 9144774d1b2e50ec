package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/job-application-tracker/internal/config"
	"github.com/iliyamo/job-application-tracker/internal/database"
	"github.com/iliyamo/job-application-tracker/internal/handler"
	"github.com/iliyamo/job-application-tracker/internal/middleware"
	"github.com/iliyamo/job-application-tracker/internal/queue"
	"github.com/iliyamo/job-application-tracker/internal/repository"
	"github.com/iliyamo/job-application-tracker/internal/router"
	queue_publisher "github.com/iliyamo/job-application-tracker/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepo(db)
	jobs := repository.NewJobRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Rate limiting degrades to a no-op when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	}
	e.Use(middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb))

	events := queue_publisher.New("", logger)

	authHandler := handler.NewAuthHandler(cfg, users)
	jobHandler := handler.NewJobHandler(jobs, events)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterJobs(e, jobHandler, cfg.JWTSecret)

	// Background consumer keeps its own reconnect loop; it never stops the
	// server when the broker is down.
	go func() {
		if err := queue.StartActivityConsumer(logger); err != nil {
			logger.Warn("activity consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
