package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/KilimcininKorOglu/ldapwire/internal/config"
	"github.com/KilimcininKorOglu/ldapwire/internal/logging"
	"github.com/KilimcininKorOglu/ldapwire/internal/server"
)

// shutdownTimeout bounds the graceful shutdown after a signal.
const shutdownTimeout = 30 * time.Second

// serveCmd handles the serve command. It runs until SIGINT or SIGTERM.
func serveCmd(opts options, stderr io.Writer) int {
	cfg, ok := loadConfig(opts.config, stderr)
	if !ok {
		return ExitError
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, stderr)
}

// serve runs the server until ctx is done, then shuts it down.
func serve(ctx context.Context, cfg *config.Config, stderr io.Writer) int {
	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}

	srv := server.NewServer(cfg, server.NewHandler(), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "Shutdown error: %v\n", err)
			return ExitError
		}
		if err := <-errCh; err != nil && !errors.Is(err, server.ErrServerClosed) {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitSuccess

	case err := <-errCh:
		fmt.Fprintf(stderr, "Server error: %v\n", err)
		return ExitError
	}
}
