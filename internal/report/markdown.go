// Package report renders a parsed link model for people: a Markdown summary,
// the same summary as HTML, and HTML image maps for individual pages.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/pslinks/internal/dsc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the document as a Markdown summary with one link table
// per page.
func Markdown(doc *dsc.Document, title string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	fmt.Fprintf(&b, "- Pages: %d\n", doc.PageTotals())
	if dims, ok := doc.Dimensions(); ok {
		fmt.Fprintf(&b, "- Dimensions: %s x %s\n", num(dims.Width), num(dims.Height))
	}
	if created, ok := doc.CreationDate(); ok {
		fmt.Fprintf(&b, "- Created: %s\n", created.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")

	for _, p := range doc.Pages() {
		fmt.Fprintf(&b, "## Page %s\n\n", escape(p.Label))
		if len(p.Links) == 0 {
			b.WriteString("No links.\n\n")
			continue
		}
		b.WriteString("| Link | X | Y | Width | Height | Target |\n")
		b.WriteString("| --- | ---: | ---: | ---: | ---: | --- |\n")
		for _, id := range p.Links {
			r := doc.ResourceData(id)
			if r == nil {
				fmt.Fprintf(&b, "| %s | | | | | unresolved |\n", escape(id))
				continue
			}
			var x, y, w, h string
			if r.Rect != nil {
				x, y, w, h = num(r.Rect.X), num(r.Rect.Y), num(r.Rect.Width), num(r.Rect.Height)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", escape(id), x, y, w, h, target(doc, r))
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

// HTML renders the Markdown summary to an HTML fragment.
func HTML(doc *dsc.Document, title string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var out bytes.Buffer
	if err := md.Convert(Markdown(doc, title), &out); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return out.Bytes(), nil
}

func target(doc *dsc.Document, r *dsc.Resource) string {
	if p := doc.DestinationPage(r.ID); p != nil {
		return "page " + escape(p.Label)
	}
	if r.Destination != "" {
		return "object " + escape(r.Destination)
	}
	return ""
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var mdEscaper = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`", `<`, `&lt;`)

func escape(s string) string {
	return mdEscaper.Replace(s)
}
