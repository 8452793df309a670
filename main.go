package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/multimediallc/movie-awards/internal/app"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func ignoreError[V any, E error](res V, _ E) V {
	return res
}

var (
	configDir = flag.String("dir", getEnv("AWARDS_DIR", "."), "Directory containing awards.toml")
	listen    = flag.String("listen", getEnv("AWARDS_LISTEN", ""), "HTTP listen address (overrides awards.toml)")
	database  = flag.String("db", getEnv("AWARDS_DATABASE", ""), "SQLite DSN (overrides awards.toml)")
	verbose   = flag.Bool("v", ignoreError(strconv.ParseBool(getEnv("AWARDS_VERBOSE", "0"))), "Verbose output")
)

func errorAndExit(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(app.Config{
		ConfigDir:     *configDir,
		Listen:        *listen,
		Database:      *database,
		Verbose:       *verbose,
		InfoBuffer:    os.Stdout,
		WarningBuffer: os.Stderr,
	})
	if err != nil {
		errorAndExit("%v\n", err)
	}
	defer func() { _ = a.Close() }()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		errorAndExit("Run Error: %v\n", err)
	}
}
