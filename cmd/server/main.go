package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/citycat-users/internal/config"
	"github.com/iliyamo/citycat-users/internal/database"
	"github.com/iliyamo/citycat-users/internal/handler"
	"github.com/iliyamo/citycat-users/internal/logging"
	"github.com/iliyamo/citycat-users/internal/middleware"
	"github.com/iliyamo/citycat-users/internal/queue"
	"github.com/iliyamo/citycat-users/internal/repository"
	"github.com/iliyamo/citycat-users/internal/router"
	"github.com/iliyamo/citycat-users/internal/service"
	"github.com/iliyamo/citycat-users/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.SlogLogger) error {
	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	codec, err := utils.NewTokenCodec(cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return err
	}
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		events = queue.NewAMQPPublisher(cfg.Events.URL)
		logger.Info(ctx, "user events enabled", "queue", queue.QueueName)
	}
	if cfg.Events.Enabled && cfg.Events.ConsumerEnabled {
		consumer := &queue.Consumer{URL: cfg.Events.URL, LogPath: cfg.Events.LogPath, Log: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error(ctx, "event consumer stopped", "error", err)
			}
		}()
	}

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil && cfg.Cache.Enabled {
		logger.Warn(ctx, "redis unavailable, response cache disabled", "addr", cfg.Redis.Addr)
	}
	if rdb != nil {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, logger)

	auth := service.NewAuthService(repos, hasher, codec)
	users := service.NewUserService(repos, hasher, events, logger)

	e := echo.New()
	router.Setup(e, logger)
	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewUserHandler(users, auth, cache, logger), auth, cache)
	router.RegisterSession(e, handler.NewSessionHandler(auth, logger), auth)

	addr := ":" + cfg.Port
	logger.Info(ctx, "listening", "addr", addr, "env", cfg.Env, "store", cfg.Store)

	errCh := make(chan error, 1)
	go func() {
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore returns the repository manager selected by STORE together with a
// function releasing its resources.
func openStore(ctx context.Context, cfg config.Config, logger logging.Logger) (repository.Manager, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn(ctx, "using in-memory store, data is lost on restart")
		return repository.NewMemoryManager(), func() {}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewMySQLManager(db), func() { _ = db.Close() }, nil
}
