package rec

import (
	"errors"
	"strings"
	"testing"
)

var errInput = errors.New("input")

func TestError(t *testing.T) {
	run := func() (err error) {
		defer Error(&err)
		panic(errInput)
	}

	err := run()
	if !errors.Is(err, errInput) {
		t.Fatalf("expected wrapped panic, got %v", err)
	}
}

func TestWrap(t *testing.T) {
	fail := func() (err error) {
		defer Wrap(&err, "decode %s: %w", "in.txt")
		return errInput
	}
	if err := fail(); !errors.Is(err, errInput) || !strings.HasPrefix(err.Error(), "decode in.txt: input") {
		t.Fatalf("unexpected error %v", err)
	}

	panics := func() (err error) {
		defer Wrap(&err, "decode %s: %w", "in.txt")
		panic("index out of range")
	}
	if err := panics(); err == nil || !strings.Contains(err.Error(), "recovered panic: index out of range") {
		t.Fatalf("unexpected error %v", err)
	}

	ok := func() (err error) {
		defer Wrap(&err, "decode: %w")
		return nil
	}
	if err := ok(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
