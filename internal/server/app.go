// Package server initializes and runs the main application server.
// It wires the relational store, cache, blob storage, and notification
// queue, and starts the HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/jbarakanov/videohost/internal/server/blob"
	"github.com/jbarakanov/videohost/internal/server/cache"
	"github.com/jbarakanov/videohost/internal/server/config"
	"github.com/jbarakanov/videohost/internal/server/httpapi"
	"github.com/jbarakanov/videohost/internal/server/notify"
	"github.com/jbarakanov/videohost/internal/server/services"
	sharedb "github.com/jbarakanov/videohost/internal/server/shared/db"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger()

	manager, err := sharedb.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	var pages cache.UserPages
	var dispatcher notify.Dispatcher
	if cfg.RedisAddr != "" {
		pages = cache.NewRedisUserPages(cfg.RedisAddr)
		dispatcher = notify.NewRedisDispatcher(cfg.RedisAddr, cfg.MailQueueKey, logger)
	} else {
		pages = cache.NewMemoryUserPages()
		dispatcher = notify.NoopDispatcher{}
	}

	us := services.NewUserService(manager.Conn(), manager, pages, blobs, dispatcher, logger, cfg)
	vs := services.NewVideoService(manager.Conn(), manager, blobs, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		httpServer: httpapi.NewServer(cfg, logger, us, vs),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
