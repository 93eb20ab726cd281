package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/pslinks/internal/dsc"
)

// PostScriptParser handles Distiller-style PostScript, optionally gzip or
// zstd compressed.
type PostScriptParser struct {
	Options dsc.Options
}

func (p *PostScriptParser) Parse(r io.Reader, filename string) (*dsc.Document, error) {
	doc, err := dsc.Parse(r, p.Options)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}
