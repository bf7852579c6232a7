package job

import (
	"bytes"
	"context"
	"errors"
	"linecode/internal/history"
	"linecode/internal/linecode"
	"linecode/internal/ran"
	"os"
	"path/filepath"
	"testing"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestFile(t *testing.T) {
	store, err := history.Open(history.Config{File: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	out := &bytes.Buffer{}
	stats, err := File(context.Background(), "decode", linecode.Decode, writeInput(t, "974\r\n138\r\neol\r\n"), ran.Schrage, out, store)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := out.String(), "hi\n"; have != want {
		t.Fatalf("decoded %q != %q", have, want)
	}
	if stats.Numeric != 2 {
		t.Fatalf("numeric lines %d != 2", stats.Numeric)
	}

	run, ok, err := store.Get(1)
	if err != nil || !ok {
		t.Fatalf("run not recorded: %v", err)
	}
	// sha256 of the input file
	if have, want := len(run.Digest), 64; have != want {
		t.Fatalf("digest length %d != %d", have, want)
	}
}

func TestFileMalformed(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := File(context.Background(), "decode", linecode.Decode, writeInput(t, "974\n\n"), ran.Schrage, out, nil)
	if !errors.Is(err, linecode.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if have, want := out.String(), "h"; have != want {
		t.Fatalf("flushed %q != %q", have, want)
	}
}

func TestFileMissing(t *testing.T) {
	_, err := File(context.Background(), "decode", linecode.Decode, filepath.Join(t.TempDir(), "missing"), ran.Schrage, &bytes.Buffer{}, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}
