package main

import (
	"Bookshelf/internal/config"
	"Bookshelf/internal/handlers"
	"Bookshelf/internal/middleware"
	"Bookshelf/internal/policy"
	"Bookshelf/internal/repo"
	"Bookshelf/internal/service"
	"Bookshelf/internal/storage"
	"Bookshelf/internal/throttle"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	//context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobs, err := storage.New(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize blob storage", "driver", cfg.StorageDriver, "error", err)
	}

	thr, closeThrottle := newThrottle(ctx, cfg, sugar)
	defer closeThrottle()

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	bookService := service.NewBookService(
		repo.NewBookRepository(gormDB),
		blobs,
		policy.New(cfg.Admins()),
		thr,
		sugar,
	)

	h := handlers.NewHandler(userService, bookService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"StorageDriver", cfg.StorageDriver,
		"DestroyDelay", cfg.DestroyDelay,
		"Admins", cfg.Admins(),
	)

	srv := &http.Server{Addr: addr, Handler: h.Router, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

// newThrottle: при заданном REDIS_ADDR повторные удаления отсекаются через redis, иначе только пауза.
func newThrottle(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (throttle.Throttle, func()) {
	if cfg.RedisAddr == "" {
		return throttle.Pause(cfg.DestroyDelay), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		sugar.Warnw("Redis unavailable, destroy guard disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return throttle.Pause(cfg.DestroyDelay), func() {}
	}
	sugar.Infow("Destroy guard enabled", "addr", cfg.RedisAddr, "ttl", cfg.DestroyGuardTTL)
	return throttle.NewRedisGuard(client, cfg.DestroyGuardTTL, cfg.DestroyDelay), func() { _ = client.Close() }
}
