package main

import (
	"context"
	"fmt"
	"linecode/internal/config"
	"linecode/internal/ctxlog"
	"linecode/internal/history"
	"linecode/internal/rec"
	"linecode/internal/server"
	"os"
	"os/signal"
	"syscall"
)

func run(ctx context.Context, c config.Config) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	var store *history.Store
	if c.History.File != "" {
		logger.Info("opening history", "file", c.History.File)
		store, err = history.Open(c.History)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		defer ctxlog.Close(ctx, "history", store)
	}

	logger.Info("starting server")
	srv := server.New(c.Server, store)

	return srv.Run(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configFile := "config.yaml"
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	c, err := config.Load(ctx, configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx = ctxlog.Setup(ctx, "linecoded", c.Log)

	logger := ctxlog.Get(ctx)

	err = run(ctx, c)
	if err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		cancel()
		os.Exit(1)
	}
	logger.Info("server gracefully stopped")
}
