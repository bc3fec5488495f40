package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dairyflow/internal/api"
	"dairyflow/internal/bootstrap"
	"dairyflow/internal/config"
	"dairyflow/internal/metrics"
	"dairyflow/internal/middleware"
	"dairyflow/internal/repository"
	"dairyflow/internal/service"
	"dairyflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("mock backend startup failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := bootstrap.OpenBackend(ctx, cfg.Server.SessionBackend, cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	farm := service.NewFarmService()
	authSvc := service.NewAuthService(repository.NewMemoryUserRepository(), farm, sessions, service.AuthConfig{
		SigningKey:          cfg.Auth.SigningKey,
		AccessTokenTTL:      cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL:     cfg.Auth.RefreshTokenTTL,
		RotateRefreshTokens: cfg.Auth.RotateRefresh,
	})

	// A redis session backend also backs the shared rate limit buckets.
	var limiter *middleware.RateLimiter
	if sessions.Redis != nil {
		limiter = middleware.NewRateLimiter(sessions.Redis, cfg.RateLimit.RequestsPerSecond)
	} else {
		limiter = middleware.NewRateLimiter(nil, cfg.RateLimit.RequestsPerSecond)
	}

	r := api.RegisterRoutes(
		api.NewAuthHandler(authSvc),
		api.NewCompanyHandler(farm, nil),
		farm,
		limiter,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("mock backend starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("env", cfg.Environment),
			zap.String("sessions", cfg.Server.SessionBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen failed", zap.Error(err))
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler()}
		go func() {
			logger.Info("metrics listener starting", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listen failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down mock backend...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("mock backend exited properly")
	return nil
}
