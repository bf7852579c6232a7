// Package server exposes the line codec over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"linecode/internal/ctxlog"
	"linecode/internal/history"
	"linecode/internal/linecode"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type Server struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
}

// New panics on incomplete config. store may be nil.
func New(config Config, store *history.Store) *Server {
	if config.Port == 0 {
		panic("server: port is required")
	}
	if config.ShutdownTimeout == 0 {
		panic("server: shutdownTimeout is required")
	}
	if config.MaxBodyBytes == 0 {
		panic("server: maxBodyBytes is required")
	}

	mux := http.NewServeMux()

	slog.Info("registering handler", "path", "/decode")
	mux.Handle("POST /decode", codecHandler("decode", linecode.Decode, config.MaxBodyBytes, store))

	slog.Info("registering handler", "path", "/encode")
	mux.Handle("POST /encode", codecHandler("encode", linecode.Encode, config.MaxBodyBytes, store))

	handler := http.Handler(mux)
	handler = recoverMiddleware(handler)
	handler = logMiddleware(handler)

	return &Server{
		addr:            fmt.Sprintf("0.0.0.0:%d", config.Port),
		handler:         handler,
		shutdownTimeout: config.ShutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run(ctx context.Context) error {
	logger := ctxlog.Get(ctx)

	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErrCh := make(chan error, 1)
	go func() {
		defer cancel()
		logger.Info("server is running", "addr", s.addr)
		serveErrCh <- srv.ListenAndServe()
	}()

	<-ctx.Done()

	logger.Info("server is shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer stopCancel()
	shutdownErr := srv.Shutdown(stopCtx)
	if errors.Is(shutdownErr, context.DeadlineExceeded) {
		logger.Error("server shutdown timeout exceeded")
	}

	serveErr := <-serveErrCh
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	return errors.Join(serveErr, shutdownErr)
}
