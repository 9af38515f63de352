package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
)

// Closer is a named resource released on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// Task is a background loop that must return when ctx is done.
type Task func(ctx context.Context)

// App encapsulates the entire application lifecycle.
type App struct {
	log        *applogger.Logger
	httpServer *xhttp.Server
	closers    []Closer
	tasks      []Task
	wg         sync.WaitGroup
}

// New creates a new App instance. Closers run in reverse order on shutdown.
func New(log *applogger.Logger, httpServer *xhttp.Server) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{log: log, httpServer: httpServer}
}

// OnShutdown registers a resource to release after the HTTP server stops.
func (a *App) OnShutdown(name string, fn func() error) {
	a.closers = append(a.closers, Closer{Name: name, Close: fn})
}

// Go registers a background task started by Run.
func (a *App) Go(t Task) {
	a.tasks = append(a.tasks, t)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with the stop signal supplied by ctx.
func (a *App) RunContext(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, t := range a.tasks {
		a.wg.Add(1)
		go func(t Task) {
			defer a.wg.Done()
			t(ctx)
		}(t)
	}

	errCh := a.httpServer.Start()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			a.log.Error("http server error", applogger.Error(err))
			runErr = err
		}
	}
	cancel()

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	timeout := a.httpServer.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	a.wg.Wait()

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.Name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", c.Name, err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
