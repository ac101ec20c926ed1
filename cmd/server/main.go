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

	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/config"
	"github.com/prasanthzodiac/College-connect-sub001/internal/api/handler"
	"github.com/prasanthzodiac/College-connect-sub001/internal/api/router"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/database"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	applogger "github.com/prasanthzodiac/College-connect-sub001/pkg/logger"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/mailer"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting college connect api",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// 3. database + schema
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db, cfg.Database.Driver, logger, model.All()...); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}

	// 4. redis (optional): without it events stay on this instance
	var (
		rdb *redis.Client
		pub realtime.Publisher
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, realtime events limited to this instance", zap.Error(err))
		} else {
			pub = rdb
		}
	}

	// 5. identity verifier, chosen once for the process lifetime
	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	verifier, err := identity.Select(startCtx, &cfg.Auth, logger)
	cancelStart()
	if err != nil {
		logger.Fatal("identity provider key set could not be loaded", zap.Error(err))
	}

	// 6. realtime hub
	m := metrics.New(cfg.Metrics.Namespace)
	hub := realtime.NewHub(pub, cfg.Server.CORS.AllowOrigins, logger, m)

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go func() {
		if err := hub.Run(runCtx); err != nil {
			logger.Error("realtime relay stopped", zap.Error(err))
		}
	}()

	// 7. wiring: repository -> service -> handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, service.Deps{
		Broadcaster: hub,
		Mailer:      mailer.New(&cfg.Mail, logger),
		Metrics:     m,
		Logger:      logger,
	})
	h := handler.NewHandler(svc, verifier.Mode(), hub, sqlDB)

	// 8. router
	engine := router.Setup(cfg, h, verifier, svc.Directory, m, logger)

	// 9. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("identity_mode", string(verifier.Mode())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	stopRun()

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
