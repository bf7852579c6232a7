package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"linecode/internal/config"
	"linecode/internal/ctxlog"
	"linecode/internal/history"
	"linecode/internal/rec"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func printRun(w io.Writer, id uint64, run history.Run) {
	status := okColor.Sprint("ok")
	if run.Error != "" {
		status = failColor.Sprint("fail")
	}

	digest := run.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}

	fmt.Fprintf(w, "%5d %s %-6s %-13s %s %s lines=%d numeric=%d bytes=%d %s\n",
		id,
		run.Started.Format(time.DateTime),
		run.Mode,
		run.Variant,
		status,
		run.Source,
		run.Stats.Lines,
		run.Stats.Numeric,
		run.Stats.Bytes,
		dimColor.Sprint(digest),
	)
	if run.Error != "" {
		failColor.Fprintf(w, "      %s\n", run.Error)
	}
}

func run(ctx context.Context, c config.Config, prune int) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	store, err := history.Open(c.History)
	if err != nil {
		return err
	}
	defer ctxlog.Close(ctx, "history", store)

	if prune >= 0 {
		removed, err := store.Prune(prune)
		if err != nil {
			return err
		}
		logger.Info("pruned history", "removed", removed, "kept", prune)
	}

	for id, r := range store.All() {
		printRun(color.Output, id, r)
	}

	return nil
}

func main() {
	configFile := flag.String("config", "config.yaml", "YAML config file")
	prune := flag.Int("prune", -1, "keep only the newest n runs")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := config.Load(ctx, *configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx = ctxlog.Setup(ctx, "history", c.Log)

	logger := ctxlog.Get(ctx)

	err = run(ctx, c, *prune)
	if err != nil {
		logger.Error("stopped unexpectedly", "error", err)
		cancel()
		os.Exit(1)
	}
}
