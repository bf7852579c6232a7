package main

import (
	"context"
	"flag"
	"fmt"
	"linecode/internal/config"
	"linecode/internal/ctxlog"
	"linecode/internal/history"
	"linecode/internal/job"
	"linecode/internal/linecode"
	"linecode/internal/ran"
	"linecode/internal/rec"
	"os"
	"os/signal"
	"syscall"
)

func run(ctx context.Context, c config.Config, path string, variant ran.Variant) (err error) {
	defer rec.Error(&err)

	var store *history.Store
	if c.History.File != "" {
		store, err = history.Open(c.History)
		if err != nil {
			return err
		}
		defer ctxlog.Close(ctx, "history", store)
	}

	_, err = job.File(ctx, "decode", linecode.Decode, path, variant, os.Stdout, store)
	return err
}

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	variantName := flag.String("variant", ran.Schrage.String(), "generator variant: schrage or true-division")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: decode [-config file] [-variant v] <file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := config.Load(ctx, *configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Keep stderr quiet unless asked; stdout carries the output.
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	ctx = ctxlog.Setup(ctx, "decode", c.Log)
	logger := ctxlog.Get(ctx)

	variant, err := ran.ParseVariant(*variantName)
	if err != nil {
		logger.Error("invalid flag", "error", err)
		os.Exit(2)
	}

	err = run(ctx, c, flag.Arg(0), variant)
	if err != nil {
		logger.Error("decode failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
