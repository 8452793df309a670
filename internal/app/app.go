package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/multimediallc/movie-awards/internal/config"
	"github.com/multimediallc/movie-awards/internal/ingest"
	"github.com/multimediallc/movie-awards/internal/server"
	"github.com/multimediallc/movie-awards/internal/store"
	"github.com/multimediallc/movie-awards/pkg/awards"
)

const shutdownTimeout = 5 * time.Second

// Config holds the application configuration. Non-empty Listen and Database
// override the values read from awards.toml.
type Config struct {
	ConfigDir     string
	Listen        string
	Database      string
	Verbose       bool
	InfoBuffer    io.Writer
	WarningBuffer io.Writer
}

// App represents the application with its dependencies
type App struct {
	Conf   *config.Config
	config *Config
	store  store.Store
	logger *slog.Logger
}

// New reads awards.toml, applies overrides and opens the store
func New(cfg Config) (*App, error) {
	if cfg.InfoBuffer == nil {
		cfg.InfoBuffer = io.Discard
	}
	if cfg.WarningBuffer == nil {
		cfg.WarningBuffer = io.Discard
	}
	a := &App{config: &cfg}

	conf, err := config.ReadConfig(cfg.ConfigDir, nil)
	if err != nil {
		a.printWarn("Error reading %s - using default config: %v\n", config.FileName, err)
	}
	if cfg.Listen != "" {
		conf.Listen = cfg.Listen
	}
	if cfg.Database != "" {
		conf.Database = cfg.Database
	}
	a.Conf = conf

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cfg.InfoBuffer, &slog.HandlerOptions{Level: level}))

	s, err := store.Open(conf.Database, cfg.WarningBuffer, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("Open store Error: %v", err)
	}
	a.store = s
	a.printDebug("Database: %s\n", conf.Database)
	return a, nil
}

func (a *App) printDebug(format string, args ...interface{}) {
	if a.config.Verbose {
		_, _ = fmt.Fprintf(a.config.InfoBuffer, format, args...)
	}
}

func (a *App) printWarn(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.config.WarningBuffer, format, args...)
}

func (a *App) Store() store.Store {
	return a.store
}

func (a *App) Close() error {
	return a.store.Close()
}

// Import loads the catalogue files selected by the [import] config table.
// A missing import root is reported as a warning and nothing is imported.
func (a *App) Import(ctx context.Context) (store.ImportSummary, error) {
	imp := a.Conf.Import
	if !imp.Enabled {
		a.printDebug("Import disabled\n")
		return store.ImportSummary{}, nil
	}
	if rootStat, err := os.Stat(imp.Root); err != nil || !rootStat.IsDir() {
		a.printWarn("WARNING: Import root not found: %s\n", imp.Root)
		return store.ImportSummary{}, nil
	}

	files, err := ingest.Discover(imp.Root, imp.Patterns)
	if err != nil {
		return store.ImportSummary{}, fmt.Errorf("Discover Error: %v", err)
	}
	if len(files) == 0 {
		a.printWarn("WARNING: No catalogue files matched %v under %s\n", imp.Patterns, imp.Root)
		return store.ImportSummary{}, nil
	}
	a.printDebug("Catalogue files: %v\n", files)

	rows, err := ingest.ReadFiles(files, imp.SeparatorRune())
	if err != nil {
		return store.ImportSummary{}, fmt.Errorf("ReadFiles Error: %w", err)
	}
	summary, err := a.store.Import(ctx, rows)
	if err != nil {
		return store.ImportSummary{}, fmt.Errorf("Import Error: %w", err)
	}
	a.logger.Info("app: catalogue imported",
		"files", len(files),
		"movies", summary.Movies,
		"winners", summary.Winners,
		"producers", summary.Producers,
	)
	return summary, nil
}

// Intervals computes the producer win-interval report from the stored catalogue
func (a *App) Intervals(ctx context.Context) (awards.ProducerIntervalReport, error) {
	return awards.ComputeWinIntervals(ctx, a.store)
}

func (a *App) Handler() http.Handler {
	return server.New(a.store, a.logger).Handler()
}

// Run imports the catalogue and serves HTTP on the configured address until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Import(ctx); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", a.Conf.Listen)
	if err != nil {
		return fmt.Errorf("Listen Error: %v", err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is cancelled, then shuts down gracefully
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()
	a.logger.Info("app: listening", "addr", ln.Addr().String())

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("Shutdown Error: %v", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info("app: stopped")
	return nil
}
