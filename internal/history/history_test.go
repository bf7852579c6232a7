package history

import (
	"linecode/internal/linecode"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{File: filepath.Join(t.TempDir(), "db", "history.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordGet(t *testing.T) {
	s := openStore(t)

	run := Run{
		Mode:     "decode",
		Source:   "in.txt",
		Digest:   "abc",
		Variant:  "schrage",
		Started:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration: 3 * time.Millisecond,
		Stats:    linecode.Stats{Lines: 4, EOL: 1, Numeric: 3, Bytes: 4},
	}

	id, err := s.Record(run)
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("first id %d != 1", id)
	}

	have, ok, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("run not found")
	}
	if !have.Started.Equal(run.Started) {
		t.Fatalf("started %v != %v", have.Started, run.Started)
	}
	have.Started = run.Started
	if have != run {
		t.Fatalf("run %+v != %+v", have, run)
	}

	if _, ok, err := s.Get(42); err != nil || ok {
		t.Fatalf("missing run: found=%v err=%v", ok, err)
	}
}

func TestAllPrune(t *testing.T) {
	s := openStore(t)

	for _, src := range []string{"a", "b", "c", "d"} {
		if _, err := s.Record(Run{Mode: "decode", Source: src}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.Prune(2)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Fatalf("removed %d != 2", removed)
	}

	var ids []uint64
	var srcs []string
	for id, run := range s.All() {
		ids = append(ids, id)
		srcs = append(srcs, run.Source)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 4 {
		t.Fatalf("remaining ids %v", ids)
	}
	if srcs[0] != "c" || srcs[1] != "d" {
		t.Fatalf("remaining sources %v", srcs)
	}

	for range s.All() {
		break
	}
}

func TestOpenRequiresFile(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatal("expected error without file")
	}
}

func TestAllAllowsWrites(t *testing.T) {
	s := openStore(t)

	for _, src := range []string{"a", "b"} {
		if _, err := s.Record(Run{Mode: "decode", Source: src}); err != nil {
			t.Fatal(err)
		}
	}

	done := make(chan error, 1)
	go func() {
		for _, run := range s.All() {
			if _, err := s.Record(Run{Mode: "encode", Source: run.Source}); err != nil {
				done <- err
				return
			}
			if _, err := s.Prune(10); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("writing inside All did not return")
	}

	n := 0
	for range s.All() {
		n++
	}
	if n != 4 {
		t.Fatalf("stored %d runs, want 4", n)
	}
}
