// Command pslinks prints the link structure of a distilled PostScript file.
//
//	pslinks [-format json|markdown|html] [-encoding label] [-verify source.pdf] [-v] file.ps
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/pslinks/internal/dsc"
	"github.com/dgallion1/pslinks/internal/parser"
	"github.com/dgallion1/pslinks/internal/report"
	"github.com/dgallion1/pslinks/internal/verify"
	"golang.org/x/term"
)

func main() {
	indent := term.IsTerminal(int(os.Stdout.Fd()))
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, indent))
}

func run(args []string, stdout, stderr io.Writer, indent bool) int {
	fs := flag.NewFlagSet("pslinks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "output format: json, markdown or html")
	encoding := fs.String("encoding", "", "input character encoding (WHATWG label, e.g. latin1)")
	verifyPDF := fs.String("verify", "", "source PDF to check the links against")
	verbose := fs.Bool("v", false, "log parser decisions to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pslinks [flags] file.ps")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	path := fs.Arg(0)
	doc, err := parseFile(path, dsc.Options{Logger: log, Encoding: *encoding})
	if err != nil {
		log.Error("parse failed", "file", path, "error", err)
		return 1
	}

	if *verifyPDF != "" {
		return runVerify(doc, *verifyPDF, stdout, log)
	}

	title, _ := doc.Attrs.Get("Title")
	if title == "" {
		title = filepath.Base(path)
	}
	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		if indent {
			enc.SetIndent("", "  ")
		}
		err = enc.Encode(doc)
	case "markdown":
		_, err = stdout.Write(report.Markdown(doc, title))
	case "html":
		var out []byte
		if out, err = report.HTML(doc, title); err == nil {
			_, err = stdout.Write(out)
		}
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}
	if err != nil {
		log.Error("write output", "error", err)
		return 1
	}
	return 0
}

func runVerify(doc *dsc.Document, pdfPath string, stdout io.Writer, log *slog.Logger) int {
	src, err := parseFile(pdfPath, dsc.Options{Logger: log})
	if err != nil {
		log.Error("read source pdf failed", "file", pdfPath, "error", err)
		return 1
	}
	rep := verify.Compare(doc, src)
	fmt.Fprintf(stdout, "pages: postscript %d, pdf %d; %d links matched\n", rep.PostScriptPages, rep.PDFPages, rep.Matched)
	for _, m := range rep.Mismatches {
		fmt.Fprintln(stdout, m)
	}
	if !rep.OK() {
		return 1
	}
	fmt.Fprintln(stdout, "ok")
	return 0
}

func parseFile(path string, opts dsc.Options) (*dsc.Document, error) {
	p, err := parser.ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dsc.ErrOpen, err)
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}
