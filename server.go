package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// listenFrom binds the first free port in [port, port+attempts). Only
// address-in-use moves on to the next port; other errors are returned.
func listenFrom(host string, port, attempts int, log *zap.Logger) (net.Listener, int, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		p := port + i
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err == nil {
			return ln, p, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, 0, fmt.Errorf("listen on %d: %w", p, err)
		}
		log.Warn("port busy, trying next", zap.Int("port", p), zap.Int("next", p+1))
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in %d..%d: %w", port, port+attempts-1, lastErr)
}

// serve runs srv on ln until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
