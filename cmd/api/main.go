package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobly/internal/cache"
	"github.com/justsurfingit/jobly/internal/cache/redis"
	"github.com/justsurfingit/jobly/internal/config"
	"github.com/justsurfingit/jobly/internal/database"
	"github.com/justsurfingit/jobly/internal/handlers"
	"github.com/justsurfingit/jobly/internal/logging"
	"github.com/justsurfingit/jobly/internal/services"
	"github.com/justsurfingit/jobly/internal/telemetry"
)

const serviceName = "jobly-api"

func newDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

// newCache returns the redis cache when REDIS_ADDR is set and a no-op cache otherwise.
func newCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		logger.Info("cache disabled")
		return cache.Noop{}
	}

	c := redis.New(cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	logger.Info("redis cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	return c
}

func newJobHandler(jobs *services.JobService) *handlers.JobHandler {
	return handlers.NewJobHandler(jobs)
}

func newCompanyHandler(companies *services.CompanyService) *handlers.CompanyHandler {
	return handlers.NewCompanyHandler(companies)
}

func newRouter(cfg *config.Config, logger *zap.Logger, jobs *handlers.JobHandler, companies *handlers.CompanyHandler) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	return handlers.NewRouter(cfg, logger, jobs, companies)
}

func registerTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if cfg.OTELCollectorURL == "" {
		return nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELCollectorURL)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	logger.Info("tracing enabled", zap.String("collector", cfg.OTELCollectorURL))
	return nil
}

func registerServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, router *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			logging.NewLogger,
			newDatabase,
			newCache,
			services.NewCompanyService,
			services.NewJobService,
			newJobHandler,
			newCompanyHandler,
			newRouter,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(registerTracing, registerServer),
		fx.StartTimeout(cfg.ShutdownTimeout),
		fx.StopTimeout(cfg.ShutdownTimeout),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
