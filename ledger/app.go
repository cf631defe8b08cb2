package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/RyRy79261/intake-tracker-sub000/internal/config"
	"github.com/RyRy79261/intake-tracker-sub000/internal/logging"
)

// App owns the service lifecycle: it builds the logger and the service from
// configuration, drives the periodic cache refresh, and shuts down cleanly
// on SIGINT/SIGTERM.
type App struct {
	config  *config.Config
	logger  logging.Logger
	service *Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	svc, err := New(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("service init error: %w", err)
	}

	return &App{config: c, logger: logger, service: svc}, nil
}

// Service returns the assembled ledger service.
func (app *App) Service() *Service {
	return app.service
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// flushes and closes the service.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.service.Run(ctx)

	if err := app.service.Close(context.Background()); err != nil {
		app.logger.Error(context.Background(), "shutdown error", "error", err)
	}
}
