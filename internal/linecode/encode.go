package linecode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"linecode/internal/ran"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type Encoder struct {
	gen   *ran.Generator
	stats Stats
}

func NewEncoder(gen *ran.Generator) *Encoder {
	return &Encoder{gen: gen}
}

// Rune returns the token line for r, without the trailing newline.
func (e *Encoder) Rune(r rune) (string, error) {
	if !utf8.ValidRune(r) {
		return "", malformed("invalid rune %U", r)
	}

	e.stats.Lines++

	switch {
	case r == '\n':
		e.stats.EOL++
		return EOL, nil
	case r == ' ':
		e.stats.Escapes++
		return string([]rune{Escape, Escape, Escape}), nil
	case r < 'A' && !unicode.IsSpace(r) && unicode.IsPrint(r):
		e.stats.Escapes++
		return string([]rune{Escape, Escape, r}), nil
	}

	// Whitespace and control runes would be trimmed or garbled as escapes,
	// so they go through the numeric form like letters.
	code := int64(r)
	if r <= 'z' {
		code -= lowerOffset
	} else {
		code -= upperOffset
	}

	e.stats.Numeric++
	return strconv.FormatInt(code+int64(e.gen.Offset()), 10), nil
}

func (e *Encoder) Stats() Stats {
	return e.stats
}

// Encode writes one token per line for every rune read from r.
func Encode(ctx context.Context, r io.Reader, w io.Writer, gen *ran.Generator) (Stats, error) {
	e := NewEncoder(gen)
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	err := func() error {
		for n := 1; ; n++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			c, size, err := br.ReadRune()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if c == utf8.RuneError && size == 1 {
				return &LineError{Line: n, Err: malformed("invalid utf-8")}
			}

			tok, err := e.Rune(c)
			if err != nil {
				return &LineError{Line: n, Text: string(c), Err: err}
			}

			k, err := bw.WriteString(tok + "\n")
			e.stats.Bytes += int64(k)
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}()

	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", ferr)
	}
	return e.stats, err
}
