package dsc

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Options tunes a parse. The zero value reads UTF-8 (or plain ASCII) input
// with lines of up to DefaultMaxLineBytes and logs nothing.
type Options struct {
	Logger *slog.Logger

	// Encoding is a WHATWG label ("latin1", "windows-1252", ...) for the
	// input text. Empty means no decoding.
	Encoding string

	MaxLineBytes int
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

type tagStack []Tag

func (s *tagStack) push(t Tag) { *s = append(*s, t) }

func (s *tagStack) pop() Tag {
	n := len(*s)
	if n == 0 {
		return TagNone
	}
	t := (*s)[n-1]
	*s = (*s)[:n-1]
	return t
}

func (s tagStack) top() Tag {
	if len(s) == 0 {
		return TagNone
	}
	return s[len(s)-1]
}

// parser is the state of one parse: both stacks and the node that non-tag
// lines write into. A nil node discards writes.
type parser struct {
	doc  *Document
	tags tagStack
	cmds commandStack
	node node
	log  *slog.Logger
	line int
}

func newParser(log *slog.Logger) *parser {
	doc := NewDocument()
	return &parser{doc: doc, node: doc, log: log}
}

// handle feeds one line through the state machines.
func (p *parser) handle(text string) {
	p.line++
	l := Classify(text)
	if l.Has(SectionTag) {
		p.transition(l)
		return
	}
	p.openCommands(l)
	extractAttribute(l, p.node)
	p.runCommands(l)
}

func (p *parser) transition(l Line) {
	switch l.Tag {
	case TagBeginProlog, TagBeginPageSetup:
		p.pushTag(l.Tag)
	case TagBeginResource:
		if id, ok := resourceID(l.TagArg); ok {
			p.node = p.doc.AddResource(id, l.TagArg)
		} else {
			p.node = nil
		}
		p.pushTag(l.Tag)
	case TagPage:
		p.node = p.doc.AddPage(firstField(l.TagArg))
		p.pushTag(l.Tag)
	case TagEndProlog:
		p.popTag(l.Tag)
	case TagEndPageSetup:
		p.popTag(l.Tag)
		p.cmds.reset()
	case TagEndResource, TagPageTrailer:
		p.popTag(l.Tag)
		p.cmds.reset()
		p.node = p.doc
	}
}

func (p *parser) pushTag(t Tag) {
	p.tags.push(t)
	p.log.Debug("enter section", "tag", t.String(), "line", p.line, "depth", len(p.tags))
}

func (p *parser) popTag(closing Tag) {
	opened := p.tags.pop()
	p.log.Debug("leave section", "tag", closing.String(), "opened", opened.String(), "line", p.line, "depth", len(p.tags))
}

func firstField(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' {
			return s[:i]
		}
	}
	return s
}

// Parse reads DSC lines from r until EOF. The first read failure aborts the
// parse and is returned wrapped in ErrRead.
func Parse(r io.Reader, opts Options) (*Document, error) {
	src, err := newLineSource(r, opts)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	p := newParser(opts.logger())
	for src.Scan() {
		p.handle(src.Text())
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("%w after line %d: %w", ErrRead, p.line, err)
	}
	p.log.Debug("parse complete", "lines", p.line, "pages", len(p.doc.pageOrder), "resources", len(p.doc.resourceOrder))
	return p.doc, nil
}

// ParseFile opens path and parses it. The file is closed on every path out.
func ParseFile(path string, opts Options) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()
	return Parse(f, opts)
}
