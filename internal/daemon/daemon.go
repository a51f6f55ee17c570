package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gritforge/grit/internal/api"
	"github.com/gritforge/grit/internal/app/store"
	_ "github.com/gritforge/grit/internal/infra/metrics" // Register Prometheus metrics
	"github.com/gritforge/grit/internal/infra/poll"
	"github.com/gritforge/grit/internal/infra/sqlite"
)

// Daemon is the core Grit runtime. It wires together the store, the poller,
// and the HTTP API.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Store  *store.Store
	Poller *poll.Poller
	Server *api.Server
	Log    *logrus.Logger

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	logger := newLogger(cfg.Logging)

	db, err := sqlite.Open(gritHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	st, err := store.Open(db, cfg.Engine(), logger, time.Now())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	// The task table doubles as the overdue feed for the reset check.
	poller, err := poll.New(st, db, logger, poll.WithIntervals(
		time.Duration(cfg.Poll.TickSeconds)*time.Second,
		time.Duration(cfg.Poll.ResetCheckSeconds)*time.Second,
	))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init poller: %w", err)
	}

	srv := api.NewServer(st, db, logger)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		DB:     db,
		Store:  st,
		Poller: poller,
		Server: srv,
		Log:    logger,
	}, nil
}

// Serve starts the poller and HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.Poller.Start()

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		_ = d.Poller.Stop()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	d.Log.WithField("addr", addr).Info("grit serving")
	if d.Config.Telemetry.Prometheus {
		d.Log.WithField("url", fmt.Sprintf("http://%s/metrics", addr)).Info("metrics enabled")
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down background services without serving.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	_ = d.Poller.Stop()
	_ = d.DB.Close()
}

func newLogger(cfg LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
