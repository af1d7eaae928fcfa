package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
)

// ErrLoad is the sentinel all catalog load failures wrap. A failed load never
// yields a partial catalog.
var ErrLoad = errors.New("stream catalog load failed")

// ErrMalformedRecord reports an unparseable line in the stream input.
//
// The underlying parse error (if any) can be accessed via errors.Unwrap.
type ErrMalformedRecord struct {
	Line  int
	Text  string
	cause error
}

func (e *ErrMalformedRecord) Error() string {
	return fmt.Sprintf("malformed stream record on line %d: %q", e.Line, e.Text)
}

func (e *ErrMalformedRecord) Unwrap() error { return e.cause }

// Load reads the stream definition format:
//
//	line 1:  N                                   (segment count)
//	line i:  X_start Y_start X_end Y_end Q_rate Width
//
// where Width is the half-width of the footprint strip. Any malformed line or
// a short file fails the whole load; degenerate geometry does not (it is
// tagged and logged during construction, see New).
func Load(r io.Reader, optFns ...func(o *Options)) (*Catalog, error) {
	scanner := bufio.NewScanner(r)

	countLine, line, ok := nextLine(scanner, 0)
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		return nil, fmt.Errorf("%w: missing segment count", ErrLoad)
	}
	count, err := strconv.Atoi(countLine)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: %w", ErrLoad, &ErrMalformedRecord{Line: line, Text: countLine, cause: err})
	}

	records := make([]Record, 0, count)
	for range count {
		text, n, ok := nextLine(scanner, line)
		if !ok {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoad, err)
			}
			return nil, fmt.Errorf("%w: expected %d records, got %d", ErrLoad, count, len(records))
		}
		line = n

		rec, err := parseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, &ErrMalformedRecord{Line: line, Text: text, cause: err})
		}
		records = append(records, rec)
	}

	return New(records, optFns...), nil
}

// LoadFile loads a stream definition file from disk.
func LoadFile(path string, optFns ...func(o *Options)) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, optFns...)
}

// nextLine returns the next non-blank line and its 1-based line number.
func nextLine(scanner *bufio.Scanner, line int) (string, int, bool) {
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			return text, line, true
		}
	}
	return "", line, false
}

func parseRecord(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) != 6 {
		return Record{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}

	vals := make([]float64, 6)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, err
		}
		vals[i] = v
	}

	return Record{
		A:         geom.Point{X: vals[0], Y: vals[1]},
		B:         geom.Point{X: vals[2], Y: vals[3]},
		Rate:      vals[4],
		HalfWidth: vals[5],
	}, nil
}
