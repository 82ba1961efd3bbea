// Package tsv streams tab-separated extracts into records without buffering
// whole files. IMDB dumps are TSV with a header row, `\N` for null and no
// quoting, and are usually gzip-compressed; compression is detected from the
// magic bytes rather than the file name.
package tsv

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"moviemart/internal/config"
	"moviemart/pkg/records"
)

const utf8BOM = "\uFEFF"

var gzipMagic = []byte{0x1f, 0x8b}

// Options configures the reader. The zero value reads tab-separated,
// unquoted input.
type Options struct {
	// Comma is the field delimiter; '\t' when zero.
	Comma rune
	// Quoted switches to encoding/csv quoting rules (LazyQuotes enabled).
	// IMDB data must be read unquoted: titles contain bare double quotes.
	Quoted bool
	// TrimSpace trims each field.
	TrimSpace bool
	// HeaderMap maps raw header names to canonical keys before the default
	// camelCase -> snake_case normalization.
	HeaderMap map[string]string
}

// OptionsFrom reads parser options from the pipeline file.
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:     o.Rune("comma", '\t'),
		Quoted:    o.Bool("quoted", false),
		TrimSpace: o.Bool("trim_space", false),
		HeaderMap: o.StringMap("header_map"),
	}
}

// Stream reads r and hands records to emit in batches of batchSize. Rows with
// the wrong number of fields are reported through onError and skipped; line
// counts non-blank rows, with the header as line 1. Stream returns nil at EOF, the
// first error from emit, or a fatal read error.
func Stream(
	ctx context.Context,
	r io.Reader,
	opt Options,
	batchSize int,
	emit func([]records.Record) error,
	onError func(line int, err error),
) error {
	if batchSize <= 0 {
		batchSize = 4096
	}
	in, closeFn, err := maybeGunzip(r)
	if err != nil {
		return err
	}
	defer closeFn()

	rows := newRowReader(in, opt)
	head, err := rows.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("read header: empty input")
		}
		return fmt.Errorf("read header: %w", err)
	}
	headers := normalizeHeaders(head, opt)

	batch := make([]records.Record, 0, batchSize)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				if onError != nil {
					onError(line, fmt.Errorf("parse: %w", err))
				}
				continue
			}
			return fmt.Errorf("read line %d: %w", line, err)
		}
		if len(fields) != len(headers) {
			if onError != nil {
				onError(line, fmt.Errorf("incorrect number of fields: expected %d, got %d", len(headers), len(fields)))
			}
			continue
		}

		rec := make(records.Record, len(headers))
		for i, v := range fields {
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			rec[headers[i]] = v
		}
		batch = append(batch, rec)
		if len(batch) == batchSize {
			if err := emit(batch); err != nil {
				return err
			}
			batch = make([]records.Record, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		return emit(batch)
	}
	return nil
}

// maybeGunzip wraps r in a gzip reader when the stream starts with the gzip
// magic number.
func maybeGunzip(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReaderSize(r, 256*1024)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("peek: %w", err)
	}
	if !bytes.Equal(magic, gzipMagic) {
		return br, func() {}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("gzip: %w", err)
	}
	return bufio.NewReaderSize(zr, 256*1024), func() { _ = zr.Close() }, nil
}

type rowReader struct {
	next func() ([]string, error)
}

func newRowReader(r io.Reader, opt Options) rowReader {
	comma := opt.Comma
	if comma == 0 {
		comma = '\t'
	}
	if opt.Quoted {
		cr := csv.NewReader(r)
		cr.Comma = comma
		cr.LazyQuotes = true
		cr.FieldsPerRecord = -1
		return rowReader{next: cr.Read}
	}

	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	sep := string(comma)
	return rowReader{next: func() ([]string, error) {
		for {
			s, err := br.ReadString('\n')
			if s == "" && err != nil {
				return nil, err
			}
			s = strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
			if s == "" {
				continue // blank line
			}
			return strings.Split(s, sep), nil
		}
	}}
}

func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if m, ok := opt.HeaderMap[c]; ok {
			res[i] = m
			continue
		}
		res[i] = snake(c)
	}
	return res
}

// snake converts "primaryName" and "Primary Name" to "primary_name".
func snake(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}
