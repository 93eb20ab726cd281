// Package dsc reads Distiller-style PostScript files and reconstructs the
// link structure they carry: media box, page count, creation date, the
// annotation references declared for each page, and the hit rectangle and
// destination of every link annotation resource.
package dsc

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BoundingBox is a rectangle expressed as origin plus extent.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// boxFromCorners builds a declaration bounding box from a DSC "llx lly urx ury"
// tuple. No axis flip.
func boxFromCorners(a, b, c, d float64) BoundingBox {
	return BoundingBox{X: a, Y: b, Width: c - a, Height: d - b}
}

// HitRect converts a PDF /Rect [x1 y1 x2 y2] into a top-left origin pixel
// rectangle on a page of the given height. Values are rounded half-up, and
// the width is measured from the already rounded x.
func HitRect(raw [4]float64, height float64) BoundingBox {
	x := roundHalfUp(raw[0])
	return BoundingBox{
		X:      x,
		Y:      roundHalfUp(height - raw[1]),
		Width:  roundHalfUp(raw[2] - x),
		Height: roundHalfUp(raw[1] - raw[3]),
	}
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Attribute is a single "%%Key: value" comment. Box is set when the value was
// four numbers.
type Attribute struct {
	Raw string
	Box *BoundingBox
}

// Attributes is the attribute bag of a document, page or resource.
type Attributes map[string]Attribute

// Get returns the verbatim value of key.
func (a Attributes) Get(key string) (string, bool) {
	attr, ok := a[key]
	if !ok {
		return "", false
	}
	return attr.Raw, true
}

// Box returns key as a bounding box, if it was declared as one.
func (a Attributes) Box(key string) (BoundingBox, bool) {
	attr, ok := a[key]
	if !ok || attr.Box == nil {
		return BoundingBox{}, false
	}
	return *attr.Box, true
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if v.Box != nil {
			out[k] = v.Box
		} else {
			out[k] = v.Raw
		}
	}
	return json.Marshal(out)
}

// Page is one %%Page: section.
type Page struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	Number int        `json:"number"`
	ObjID  string     `json:"objId,omitempty"`
	Links  []string   `json:"links"`
	Attrs  Attributes `json:"attributes"`
}

// Resource is one %%BeginResource section that names an embedded object.
// Rect and Destination are only set for link annotations.
type Resource struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Rect        *BoundingBox `json:"rect,omitempty"`
	Destination string       `json:"destination,omitempty"`
	Attrs       Attributes   `json:"attributes"`
}

// Document is the result of a parse. Pages are keyed "page<N>", resources
// "obj_<N>"; the two key spaces never overlap.
type Document struct {
	Attrs Attributes

	pages         map[string]*Page
	pageOrder     []string
	resources     map[string]*Resource
	resourceOrder []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Attrs:     make(Attributes),
		pages:     make(map[string]*Page),
		resources: make(map[string]*Resource),
	}
}

// SetAttr stores a plain attribute on the document root.
func (d *Document) SetAttr(key, value string) {
	d.Attrs[key] = Attribute{Raw: value}
}

// SetBox stores a bounding box attribute on the document root.
func (d *Document) SetBox(key string, box BoundingBox) {
	d.Attrs[key] = Attribute{Raw: formatBox(box), Box: &box}
}

// AddPage creates the page keyed "page"+label, replacing any page already
// registered under that key.
func (d *Document) AddPage(label string) *Page {
	key := "page" + label
	n, _ := strconv.Atoi(label)
	p := &Page{Key: key, Label: label, Number: n, Attrs: make(Attributes)}
	if _, exists := d.pages[key]; !exists {
		d.pageOrder = append(d.pageOrder, key)
	}
	d.pages[key] = p
	return p
}

// AddResource creates the resource with the given id.
func (d *Document) AddResource(id, description string) *Resource {
	r := &Resource{ID: id, Description: description, Attrs: make(Attributes)}
	if _, exists := d.resources[id]; !exists {
		d.resourceOrder = append(d.resourceOrder, id)
	}
	d.resources[id] = r
	return r
}

// Pages returns the pages in declaration order.
func (d *Document) Pages() []*Page {
	out := make([]*Page, 0, len(d.pageOrder))
	for _, key := range d.pageOrder {
		out = append(out, d.pages[key])
	}
	return out
}

// Resources returns the resources in declaration order.
func (d *Document) Resources() []*Resource {
	out := make([]*Resource, 0, len(d.resourceOrder))
	for _, id := range d.resourceOrder {
		out = append(out, d.resources[id])
	}
	return out
}

// PageTotals returns the declared %%Pages count. Absent and malformed values
// both yield 0.
func (d *Document) PageTotals() int {
	v, ok := d.Attrs.Get("Pages")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// Dimensions returns the root %%BoundingBox.
func (d *Document) Dimensions() (BoundingBox, bool) {
	return d.Attrs.Box("BoundingBox")
}

var creationDateRe = regexp.MustCompile(`^D:(\d{4})(\d{2})(\d{2})(\d{2})(\d{2})(\d{2})([-+]\d{2})`)

// CreationDate parses the CreationDate attribute (D:YYYYMMDDHHMMSS±HH...).
// The result is in the local zone: the declared UTC offset is not applied.
func (d *Document) CreationDate() (time.Time, bool) {
	v, ok := d.Attrs.Get("CreationDate")
	if !ok {
		return time.Time{}, false
	}
	m := creationDateRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return time.Time{}, false
	}
	var f [6]int
	for i := range f {
		f[i], _ = strconv.Atoi(m[i+1])
	}
	return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], 0, time.Local), true
}

// PageData returns the page declared as %%Page: n, or nil.
func (d *Document) PageData(n int) *Page {
	return d.pages["page"+strconv.Itoa(n)]
}

// PageDataFor looks a page up by its textual number. Anything that is not a
// number is looked up under the bare key "page".
func (d *Document) PageDataFor(label string) *Page {
	if _, err := strconv.ParseFloat(label, 64); err != nil {
		label = ""
	}
	return d.pages["page"+label]
}

// ResourceData returns the resource with the given id, or nil.
func (d *Document) ResourceData(id string) *Resource {
	return d.resources[id]
}

// DestinationPage returns the page whose content object is the destination
// of the given link resource.
func (d *Document) DestinationPage(resourceID string) *Page {
	r := d.resources[resourceID]
	if r == nil || r.Destination == "" {
		return nil
	}
	for _, key := range d.pageOrder {
		if p := d.pages[key]; p.ObjID == r.Destination {
			return p
		}
	}
	return nil
}

func formatBox(b BoundingBox) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.X) + " " + f(b.Y) + " " + f(b.X+b.Width) + " " + f(b.Y+b.Height)
}
