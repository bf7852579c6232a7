// Package job runs the codec over a file for the command line tools.
package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"linecode/internal/ctxlog"
	"linecode/internal/history"
	"linecode/internal/linecode"
	"linecode/internal/ran"
	"os"
	"time"
)

type Func func(context.Context, io.Reader, io.Writer, *ran.Generator) (linecode.Stats, error)

// File streams path through fn into w, starting from the initial seed.
// If store is not nil the run is recorded, failed or not.
func File(ctx context.Context, mode string, fn Func, path string, variant ran.Variant, w io.Writer, store *history.Store) (linecode.Stats, error) {
	logger := ctxlog.Get(ctx).With("mode", mode, "file", path, "variant", variant.String())

	file, err := os.Open(path)
	if err != nil {
		return linecode.Stats{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer ctxlog.Close(ctx, "input file", file)

	h := sha256.New()
	gen := ran.NewVariant(variant)

	start := time.Now()
	stats, err := fn(ctx, io.TeeReader(file, h), w, gen)
	dur := time.Since(start)

	if store != nil {
		run := history.Run{
			Mode:     mode,
			Source:   path,
			Digest:   hex.EncodeToString(h.Sum(nil)),
			Variant:  variant.String(),
			Started:  start,
			Duration: dur,
			Stats:    stats,
		}
		if err != nil {
			run.Error = err.Error()
		}

		id, rerr := store.Record(run)
		if rerr != nil {
			logger.Error("failed to record run", "error", rerr)
		} else {
			logger.Debug("recorded run", "id", id)
		}
	}

	if err != nil {
		return stats, fmt.Errorf("%s %q: %w", mode, path, err)
	}

	logger.Info("run completed", "lines", stats.Lines, "numeric", stats.Numeric, "generator_calls", gen.Calls(), "duration", dur.String())
	return stats, nil
}
