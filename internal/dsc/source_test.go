package dsc

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func readLines(t *testing.T, r io.Reader, opts Options) []string {
	t.Helper()
	src, err := newLineSource(r, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer src.Close()
	var lines []string
	for src.Scan() {
		lines = append(lines, src.Text())
	}
	if err := src.Err(); err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	return lines
}

func TestLineSource_LineEndings(t *testing.T) {
	input := "unix\nwindows\r\nmac\rlast"
	got := readLines(t, strings.NewReader(input), Options{})
	want := []string{"unix", "windows", "mac", "last"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLineSource_CRLFSplitAcrossReads(t *testing.T) {
	// OneByteReader forces "\r" and "\n" into separate reads.
	got := readLines(t, iotest.OneByteReader(strings.NewReader("a\r\nb\r\n")), Options{})
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLineSource_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("%%Pages: 4\n%%BoundingBox: 0 0 612 792\n"))
	zw.Close()

	doc, err := Parse(&buf, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PageTotals() != 4 {
		t.Errorf("expected 4 pages, got %d", doc.PageTotals())
	}
}

func TestLineSource_Zstd(t *testing.T) {
	raw, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zw.Write(raw)
	zw.Close()

	doc, err := Parse(&buf, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(doc.PageData(3).Links); got != 3 {
		t.Errorf("expected 3 links on page 3, got %d", got)
	}
}

func TestLineSource_Latin1(t *testing.T) {
	input := []byte("%%Title: R\xe9sum\xe9.pdf\n")
	doc, err := Parse(bytes.NewReader(input), Options{Encoding: "latin1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := doc.Attrs.Get("Title"); v != "Résumé.pdf" {
		t.Errorf("expected decoded title, got %q", v)
	}
}

func TestLineSource_UnknownEncoding(t *testing.T) {
	_, err := Parse(strings.NewReader(""), Options{Encoding: "klingon"})
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("expected ErrEncoding, got %v", err)
	}
}

func TestParse_ReadFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader("%%Pages: 4\n%%BoundingBox: 0 0 612 792\n"), iotest.ErrReader(boom))
	doc, err := Parse(r, Options{})
	if doc != nil {
		t.Errorf("expected no document on read failure, got %+v", doc)
	}
	if !errors.Is(err, ErrRead) {
		t.Errorf("expected ErrRead, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected underlying cause, got %v", err)
	}
}

func TestParse_LineTooLong(t *testing.T) {
	input := "%%Pages: 1\n" + strings.Repeat("x", 200) + "\n"
	_, err := Parse(strings.NewReader(input), Options{MaxLineBytes: 64})
	if !errors.Is(err, ErrRead) {
		t.Errorf("expected ErrRead, got %v", err)
	}
}
