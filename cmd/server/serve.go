package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"studentrecords/docs"
	"studentrecords/internal/auth"
	"studentrecords/internal/cache"
	"studentrecords/internal/config"
	"studentrecords/internal/db"
	"studentrecords/internal/handler"
	"studentrecords/internal/logger"
	"studentrecords/internal/metrics"
	"studentrecords/internal/repository"
	"studentrecords/internal/router"
	"studentrecords/internal/service"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel, ServiceName: "studentrecords"})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(gormDB, cfg.Database.Driver, db.Up); err != nil {
			return err
		}
		log.Info("migrations applied", zap.String("driver", cfg.Database.Driver))
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if cacheClient == nil {
		log.Warn("REDIS_ADDR not set, login throttling disabled")
	} else {
		defer cacheClient.Close()
		if err := cacheClient.Ping(ctx); err != nil {
			log.Warn("redis unreachable, login throttling fails open", zap.Error(err))
		}
	}

	// Initialize repositories
	studentRepo := repository.NewStudentRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	limiter := auth.NewLoginLimiter(cacheClient, cfg.Login.MaxAttempts, cfg.Login.LockWindow)

	// Initialize services
	studentService := service.NewStudentService(studentRepo, service.NewStudentValidator())
	authService := service.NewAuthService(userRepo, jwtService, limiter)

	m, err := metrics.New(prometheus.NewRegistry(), sqlDB)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HidePort = true
	router.Register(e, cfg, jwtService, m, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Student: handler.NewStudentHandler(studentService),
		Health:  handler.NewHealthHandler(cfg.Version),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.ServerPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", addr),
			zap.String("swagger", "http://"+docs.SwaggerInfo.Host+"/api-docs"))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
