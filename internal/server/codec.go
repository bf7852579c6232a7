package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"linecode/internal/ctxlog"
	"linecode/internal/history"
	"linecode/internal/linecode"
	"linecode/internal/ran"
	"net/http"
	"strconv"
	"time"
)

type codecFunc func(context.Context, io.Reader, io.Writer, *ran.Generator) (linecode.Stats, error)

// codecHandler runs fn over the request body with a fresh generator.
// Output is buffered so that malformed input never yields a partial 200.
func codecHandler(mode string, fn codecFunc, maxBody int64, store *history.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := ctxlog.Get(r.Context())

		variant, err := ran.ParseVariant(r.URL.Query().Get("variant"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		h := sha256.New()
		body := io.TeeReader(http.MaxBytesReader(w, r.Body, maxBody), h)
		out := &bytes.Buffer{}

		start := time.Now()
		stats, err := fn(r.Context(), body, out, ran.NewVariant(variant))

		if store != nil {
			run := history.Run{
				Mode:     mode,
				Source:   r.RemoteAddr,
				Digest:   hex.EncodeToString(h.Sum(nil)),
				Variant:  variant.String(),
				Started:  start,
				Duration: time.Since(start),
				Stats:    stats,
			}
			if err != nil {
				run.Error = err.Error()
			}
			if _, rerr := store.Record(run); rerr != nil {
				log.Error("failed to record run", "error", rerr)
			}
		}

		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			case errors.Is(err, linecode.ErrMalformed):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				log.Error("codec failed", "mode", mode, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(out.Bytes()); err != nil {
			log.Error("failed to write response", "error", err)
			return
		}
	})
}
