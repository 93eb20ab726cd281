package verify

import (
	"strconv"
	"testing"

	"github.com/dgallion1/pslinks/internal/dsc"
	"github.com/google/go-cmp/cmp"
)

type link struct {
	id   string
	rect dsc.BoundingBox
}

func buildDoc(pages int, links map[int][]link) *dsc.Document {
	doc := dsc.NewDocument()
	doc.SetAttr("Pages", strconv.Itoa(pages))
	for n := 1; n <= pages; n++ {
		p := doc.AddPage(strconv.Itoa(n))
		p.Links = []string{}
		for _, l := range links[n] {
			r := doc.AddResource(l.id, "")
			rect := l.rect
			r.Rect = &rect
			p.Links = append(p.Links, l.id)
		}
	}
	return doc
}

func TestCompare_Match(t *testing.T) {
	ps := buildDoc(2, map[int][]link{
		1: {{"obj_15", dsc.BoundingBox{X: 200, Y: 310, Width: 212, Height: 77}}},
	})
	pdf := buildDoc(2, map[int][]link{
		1: {{"pdf_1_0", dsc.BoundingBox{X: 200, Y: 310, Width: 213, Height: 77}}},
	})

	rep := Compare(ps, pdf)
	if !rep.OK() {
		t.Fatalf("expected match within tolerance, got %+v", rep.Mismatches)
	}
	if rep.Matched != 1 {
		t.Errorf("expected 1 matched link, got %d", rep.Matched)
	}
}

func TestCompare_OrderIndependent(t *testing.T) {
	a := dsc.BoundingBox{X: 10, Y: 10, Width: 5, Height: 5}
	b := dsc.BoundingBox{X: 10, Y: 50, Width: 5, Height: 5}
	ps := buildDoc(1, map[int][]link{1: {{"obj_2", b}, {"obj_1", a}}})
	pdf := buildDoc(1, map[int][]link{1: {{"pdf_1_0", a}, {"pdf_1_1", b}}})

	if rep := Compare(ps, pdf); !rep.OK() || rep.Matched != 2 {
		t.Errorf("expected 2 matches regardless of order, got %+v", rep)
	}
}

func TestCompare_Mismatches(t *testing.T) {
	kept := dsc.BoundingBox{X: 10, Y: 10, Width: 5, Height: 5}
	lost := dsc.BoundingBox{X: 100, Y: 100, Width: 20, Height: 10}
	extra := dsc.BoundingBox{X: 300, Y: 300, Width: 20, Height: 10}

	ps := buildDoc(1, map[int][]link{1: {{"obj_1", kept}, {"obj_9", extra}}})
	pdf := buildDoc(2, map[int][]link{
		1: {{"pdf_1_0", kept}, {"pdf_1_1", lost}},
		2: {{"pdf_2_0", kept}},
	})

	rep := Compare(ps, pdf)
	if rep.OK() {
		t.Fatal("expected mismatches")
	}
	want := []Mismatch{
		{Kind: KindPageCount},
		{Page: 1, Kind: KindMissingInPS, Link: "pdf_1_1", HitArea: &lost},
		{Page: 1, Kind: KindExtraInPS, Link: "obj_9", HitArea: &extra},
		{Page: 2, Kind: KindMissingPage},
	}
	if diff := cmp.Diff(want, rep.Mismatches); diff != "" {
		t.Errorf("mismatches (-want +got):\n%s", diff)
	}
	if rep.Matched != 1 {
		t.Errorf("expected 1 matched link, got %d", rep.Matched)
	}
}

func TestCompare_OutsideTolerance(t *testing.T) {
	ps := buildDoc(1, map[int][]link{1: {{"obj_1", dsc.BoundingBox{X: 10, Y: 10, Width: 5, Height: 5}}}})
	pdf := buildDoc(1, map[int][]link{1: {{"pdf_1_0", dsc.BoundingBox{X: 12, Y: 10, Width: 5, Height: 5}}}})

	rep := Compare(ps, pdf)
	if len(rep.Mismatches) != 2 {
		t.Errorf("expected missing and extra entries, got %+v", rep.Mismatches)
	}
}

func TestMismatch_String(t *testing.T) {
	box := dsc.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}
	m := Mismatch{Page: 3, Kind: KindMissingInPS, Link: "pdf_3_0", HitArea: &box}
	if got, want := m.String(), "page 3: missing in postscript pdf_3_0 at 1,2 3x4"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
