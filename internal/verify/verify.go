// Package verify checks that a distilled PostScript file kept the links of
// the PDF it was produced from.
package verify

import (
	"fmt"
	"math"
	"sort"

	"github.com/dgallion1/pslinks/internal/dsc"
)

// Tolerance is the largest per-edge difference, in the rounded pixel space of
// hit rectangles, that still counts as the same rectangle.
const Tolerance = 1.0

// Mismatch describes one disagreement between the two models.
type Mismatch struct {
	Page    int              `json:"page"`
	Kind    string           `json:"kind"`
	Link    string           `json:"link,omitempty"`
	HitArea *dsc.BoundingBox `json:"hitArea,omitempty"`
}

func (m Mismatch) String() string {
	if m.HitArea == nil {
		return fmt.Sprintf("page %d: %s", m.Page, m.Kind)
	}
	return fmt.Sprintf("page %d: %s %s at %v,%v %vx%v", m.Page, m.Kind, m.Link,
		m.HitArea.X, m.HitArea.Y, m.HitArea.Width, m.HitArea.Height)
}

// Report is the outcome of Compare.
type Report struct {
	PostScriptPages int        `json:"postscriptPages"`
	PDFPages        int        `json:"pdfPages"`
	Matched         int        `json:"matched"`
	Mismatches      []Mismatch `json:"mismatches"`
}

// OK reports whether the models agree.
func (r Report) OK() bool {
	return r.PostScriptPages == r.PDFPages && len(r.Mismatches) == 0
}

const (
	KindPageCount   = "page count differs"
	KindMissingInPS = "missing in postscript"
	KindExtraInPS   = "not in pdf"
	KindMissingPage = "page missing in postscript"
)

// Compare matches the hit areas of every page of the PDF model against the
// same page of the PostScript model. Links are matched by geometry, not id,
// since the two sources number objects differently.
func Compare(ps, pdf *dsc.Document) Report {
	rep := Report{
		PostScriptPages: ps.PageTotals(),
		PDFPages:        pdf.PageTotals(),
		Mismatches:      []Mismatch{},
	}
	if rep.PostScriptPages != rep.PDFPages {
		rep.Mismatches = append(rep.Mismatches, Mismatch{Kind: KindPageCount})
	}

	for _, want := range pdf.Pages() {
		got := ps.PageData(want.Number)
		wantAreas := hitAreas(pdf, want)
		if got == nil {
			if len(wantAreas) > 0 {
				rep.Mismatches = append(rep.Mismatches, Mismatch{Page: want.Number, Kind: KindMissingPage})
			}
			continue
		}
		gotAreas := hitAreas(ps, got)

		used := make([]bool, len(gotAreas))
		for _, w := range wantAreas {
			idx := -1
			for i, g := range gotAreas {
				if !used[i] && within(w.box, g.box) {
					idx = i
					break
				}
			}
			if idx < 0 {
				box := w.box
				rep.Mismatches = append(rep.Mismatches, Mismatch{Page: want.Number, Kind: KindMissingInPS, Link: w.id, HitArea: &box})
				continue
			}
			used[idx] = true
			rep.Matched++
		}
		for i, g := range gotAreas {
			if !used[i] {
				box := g.box
				rep.Mismatches = append(rep.Mismatches, Mismatch{Page: want.Number, Kind: KindExtraInPS, Link: g.id, HitArea: &box})
			}
		}
	}
	return rep
}

type area struct {
	id  string
	box dsc.BoundingBox
}

// hitAreas returns a page's resolved link rectangles, top-to-bottom then
// left-to-right.
func hitAreas(doc *dsc.Document, p *dsc.Page) []area {
	var out []area
	for _, id := range p.Links {
		r := doc.ResourceData(id)
		if r == nil || r.Rect == nil {
			continue
		}
		out = append(out, area{id: id, box: *r.Rect})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].box.Y != out[j].box.Y {
			return out[i].box.Y < out[j].box.Y
		}
		return out[i].box.X < out[j].box.X
	})
	return out
}

func within(a, b dsc.BoundingBox) bool {
	return math.Abs(a.X-b.X) <= Tolerance &&
		math.Abs(a.Y-b.Y) <= Tolerance &&
		math.Abs(a.Width-b.Width) <= Tolerance &&
		math.Abs(a.Height-b.Height) <= Tolerance
}
