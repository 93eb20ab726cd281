package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgallion1/pslinks/internal/dsc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoPage is returned by ImageMap when the page is not in the document.
var ErrNoPage = errors.New("page not found")

// ImageMap renders a <map> element for page n, one rect <area> per link with
// a hit area. Links to a known page point at "#page-<N>"; the rest point at
// "#<resource id>".
func ImageMap(doc *dsc.Document, n int, name string) ([]byte, error) {
	p := doc.PageData(n)
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoPage, n)
	}

	m := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Map,
		Data:     "map",
		Attr:     []html.Attribute{{Key: "name", Val: name}},
	}
	for _, id := range p.Links {
		r := doc.ResourceData(id)
		if r == nil || r.Rect == nil {
			continue
		}
		m.AppendChild(area(doc, r))
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, m); err != nil {
		return nil, fmt.Errorf("render image map: %w", err)
	}
	return buf.Bytes(), nil
}

func area(doc *dsc.Document, r *dsc.Resource) *html.Node {
	box := r.Rect
	coords := fmt.Sprintf("%s,%s,%s,%s", num(box.X), num(box.Y), num(box.X+box.Width), num(box.Y+box.Height))

	href := "#" + r.ID
	if p := doc.DestinationPage(r.ID); p != nil {
		href = "#page-" + p.Label
	}
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Area,
		Data:     "area",
		Attr: []html.Attribute{
			{Key: "shape", Val: "rect"},
			{Key: "coords", Val: coords},
			{Key: "href", Val: href},
			{Key: "alt", Val: r.ID},
		},
	}
}
