// Package linecode decodes and encodes the line token format: one token per
// line, either the eol marker, a backtick escape or a masked character code.
package linecode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"linecode/internal/ran"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	EOL    = "eol"
	Escape = '`'

	// Codes below split map to lowercase letters.
	split       = 27
	lowerOffset = 96
	upperOffset = 38
)

var ErrMalformed = errors.New("malformed input")

type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func malformed(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, a...))
}

type Stats struct {
	Lines   int   `json:"lines"`
	EOL     int   `json:"eol"`
	Escapes int   `json:"escapes"`
	Numeric int   `json:"numeric"`
	Bytes   int64 `json:"bytes"`
}

type Decoder struct {
	gen   *ran.Generator
	stats Stats
}

func NewDecoder(gen *ran.Generator) *Decoder {
	return &Decoder{gen: gen}
}

// Line decodes a single line. Numeric lines consume exactly one generator
// value, the other forms consume none. Lines counts decoded lines only;
// Numeric counts consumed generator values, even when the code is rejected.
func (d *Decoder) Line(line string) (string, error) {
	out, err := d.line(strings.TrimSpace(line))
	if err != nil {
		return "", err
	}
	d.stats.Lines++
	return out, nil
}

func (d *Decoder) line(line string) (string, error) {
	if line == EOL {
		d.stats.EOL++
		return "\n", nil
	}

	if line == "" {
		return "", malformed("empty line")
	}

	if line[0] == Escape {
		r, ok := thirdRune(line)
		if !ok {
			return "", malformed("escape needs three characters")
		}
		d.stats.Escapes++
		if r == Escape {
			return " ", nil
		}
		return string(r), nil
	}

	v, err := strconv.ParseInt(line, 10, 32)
	if err != nil {
		return "", malformed("coded value: %v", err)
	}

	d.stats.Numeric++
	code := v - int64(d.gen.Offset())

	if code < split {
		code += lowerOffset
	} else {
		code += upperOffset
	}

	r := rune(code)
	if int64(r) != code || !utf8.ValidRune(r) {
		return "", malformed("character code %d out of range", code)
	}
	return string(r), nil
}

func thirdRune(s string) (rune, bool) {
	for i := 0; i < 2; i++ {
		_, size := utf8.DecodeRuneInString(s)
		if size == 0 {
			return 0, false
		}
		s = s[size:]
	}
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

func (d *Decoder) Stats() Stats {
	return d.stats
}

// Decode streams r line by line into w. On error everything decoded before
// the failing line has been flushed to w.
func Decode(ctx context.Context, r io.Reader, w io.Writer, gen *ran.Generator) (Stats, error) {
	d := NewDecoder(gen)
	bw := bufio.NewWriter(w)

	err := func() error {
		sc := bufio.NewScanner(r)
		for n := 1; sc.Scan(); n++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			out, err := d.Line(sc.Text())
			if err != nil {
				return &LineError{Line: n, Text: sc.Text(), Err: err}
			}

			k, err := bw.WriteString(out)
			d.stats.Bytes += int64(k)
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		if err := sc.Err(); errors.Is(err, bufio.ErrTooLong) {
			return &LineError{Line: d.stats.Lines + 1, Err: malformed("%v", err)}
		} else if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		return nil
	}()

	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", ferr)
	}
	return d.stats, err
}
