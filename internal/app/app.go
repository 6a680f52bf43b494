// Package app wires configuration, logging, the user store, the carousel
// and the HTTP router together and runs the server with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/useradmin/internal/carousel"
	"github.com/patric-chuzhbe/useradmin/internal/config"
	"github.com/patric-chuzhbe/useradmin/internal/logger"
	"github.com/patric-chuzhbe/useradmin/internal/router"
	"github.com/patric-chuzhbe/useradmin/internal/usersource"
	"github.com/patric-chuzhbe/useradmin/internal/userstore"
)

const shutdownTimeout = 10 * time.Second

// App owns the long-lived pieces of the service.
type App struct {
	cfg         *config.Config
	store       *userstore.Store
	carousel    *carousel.Carousel
	httpHandler http.Handler
}

type InitOption func(*initOptions)

type initOptions struct {
	configOptions []config.InitOption
}

// WithConfigOptions is passed through to config.New.
func WithConfigOptions(configOptions ...config.InitOption) InitOption {
	return func(options *initOptions) {
		options.configOptions = append(options.configOptions, configOptions...)
	}
}

// New loads the configuration, initializes the logger and builds the
// store, the carousel and the router. Nothing is started yet.
func New(optionsProto ...InitOption) (*App, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	var err error
	app := &App{}

	app.cfg, err = config.New(options.configOptions...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	source := usersource.New(
		app.cfg.UsersSourceURL,
		usersource.WithTimeout(app.cfg.FetchTimeout),
	)
	app.store = userstore.New(source)

	app.carousel = carousel.New(
		carousel.WithInterval(app.cfg.CarouselInterval),
		carousel.WithFade(app.cfg.CarouselFade),
	)

	app.httpHandler = router.New(app.store, app.carousel)

	return app, nil
}

func (a *App) Handler() http.Handler {
	return a.httpHandler
}

func (a *App) Store() *userstore.Store {
	return a.store
}

// Start launches the initial fetch and the carousel ticker. Both stop when
// ctx is done.
func (a *App) Start(ctx context.Context) {
	go func() {
		if err := a.store.FetchAll(ctx); err != nil {
			logger.Log.Warnw("initial users fetch failed", "url", a.cfg.UsersSourceURL, "error", err)
		}
	}()

	go a.carousel.Run(ctx)
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backgroundCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	a.Start(backgroundCtx)

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:              a.cfg.RunAddr,
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Stopping background work and exiting...")
		stopBackground()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
