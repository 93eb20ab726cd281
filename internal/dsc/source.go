package dsc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultMaxLineBytes bounds a single input line.
const DefaultMaxLineBytes = 1 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// lineSource yields the lines of a possibly compressed, possibly non-UTF-8
// PostScript stream.
type lineSource struct {
	*bufio.Scanner
	closers []func()
}

func newLineSource(r io.Reader, opts Options) (*lineSource, error) {
	src := &lineSource{}

	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))
	var in io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip header: %w", ErrRead, err)
		}
		src.closers = append(src.closers, func() { zr.Close() })
		in = zr
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd header: %w", ErrRead, err)
		}
		src.closers = append(src.closers, zr.Close)
		in = zr
	}

	if opts.Encoding != "" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("%w: %q", ErrEncoding, opts.Encoding)
		}
		in = enc.NewDecoder().Reader(in)
	}

	limit := opts.MaxLineBytes
	if limit <= 0 {
		limit = DefaultMaxLineBytes
	}
	src.Scanner = bufio.NewScanner(in)
	src.Scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)
	src.Scanner.Split(scanLines)
	return src, nil
}

func (s *lineSource) Close() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// scanLines splits on "\n", "\r\n" and a lone "\r".
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			// Need one more byte to tell "\r" from "\r\n".
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
