package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userhub/internal/cache"
	"userhub/internal/config"
	"userhub/internal/database"
	"userhub/internal/realtime"
	"userhub/internal/router"
	"userhub/internal/service"
	"userhub/internal/store"
	"userhub/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	_ "userhub/docs" // 引入 swag 產出的 docs
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

const (
	eventQueueSize  = 256
	shutdownTimeout = 10 * time.Second
)

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	listenBroker    = func(ctx context.Context, b *realtime.RedisBroker, h *realtime.Hub) error {
		return b.Listen(ctx, h)
	}
	notifyShutdown = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	}
)

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

func newLogger(level string) *log.Logger {
	l := log.New("userhub")
	l.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`)
	if lvl, ok := logLevels[level]; ok {
		l.SetLevel(lvl)
	}
	return l
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	ctx, stop := notifyShutdown(context.Background())
	defer stop()

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer rdb.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	// 關閉順序：先停 HTTP，再停 hub 與事件佇列
	wp := newWorkerPool(cfg.WorkerCount, eventQueueSize)
	defer wp.Stop()

	hub := realtime.NewHub(logger)
	defer hub.Close()

	broker := realtime.NewRedisBroker(rdb)
	go func() {
		if err := listenBroker(ctx, broker, hub); err != nil {
			logger.Errorf("realtime 訂閱中斷: %v", err)
		}
	}()

	svc := service.NewUserService(
		store.NewPostgresUserStore(db),
		realtime.NewNotifier(broker, wp, logger),
		logger,
		cfg.ListLimit,
	)

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Validator = &CustomValidator{validator: service.NewValidator()}

	router.Setup(e, router.Deps{
		DB:        db,
		Cache:     rdb,
		Users:     svc,
		Hub:       hub,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
	})

	// Start 在 Shutdown 開始時即回傳 ErrServerClosed，需等進行中的請求結束後才釋放資源
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(sctx); err != nil {
			logger.Warnf("HTTP 關閉失敗: %v", err)
		}
	}()

	logger.Infof("listening on %s", cfg.HTTPAddr)
	serveErr := startServer(e, cfg.HTTPAddr)
	stop()
	<-shutdownDone

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}
