package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pslinks/internal/dsc"
)

// Parser converts raw document bytes into a link model.
type Parser interface {
	Parse(r io.Reader, filename string) (*dsc.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = []string{
	".ps",
	".eps",
	".ps.gz",
	".ps.zst",
	".pdf",
}

// ForFile returns the appropriate parser for a filename. opts applies to
// PostScript input only.
func ForFile(filename string, opts dsc.Options) (Parser, error) {
	switch ext := extension(filename); ext {
	case ".ps", ".eps", ".ps.gz", ".ps.zst":
		return &PostScriptParser{Options: opts}, nil
	case ".pdf":
		return &PDFParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return extension(filename) != ""
}

// extension returns the longest supported suffix of filename, lower-cased,
// or "" if none matches.
func extension(filename string) string {
	lower := strings.ToLower(filename)
	best := ""
	for _, ext := range SupportedExtensions {
		if strings.HasSuffix(lower, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	return best
}
