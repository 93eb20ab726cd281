package dsc

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDocument_PageTotals(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{"declared", "4", true, 4},
		{"padded", " 12 ", true, 12},
		{"atend", "(atend)", true, 0},
		{"two numbers", "4 1", true, 0},
		{"absent", "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			if tt.set {
				doc.SetAttr("Pages", tt.value)
			}
			if got := doc.PageTotals(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDocument_CreationDateMalformed(t *testing.T) {
	for _, v := range []string{"yesterday", "D:2016", "D:20160902094038Z", ""} {
		doc := NewDocument()
		doc.SetAttr("CreationDate", v)
		if d, ok := doc.CreationDate(); ok {
			t.Errorf("CreationDate(%q): expected no result, got %v", v, d)
		}
	}
}

func TestDocument_CreationDateIgnoresOffset(t *testing.T) {
	a, b := NewDocument(), NewDocument()
	a.SetAttr("CreationDate", "D:20160902094038-04'00'")
	b.SetAttr("CreationDate", "D:20160902094038+09'00'")
	da, _ := a.CreationDate()
	db, _ := b.CreationDate()
	if !da.Equal(db) {
		t.Errorf("expected offsets to be ignored, got %v and %v", da, db)
	}
}

func TestDocument_PageDataFor(t *testing.T) {
	doc := NewDocument()
	doc.AddPage("7")
	if p := doc.PageDataFor("7"); p == nil || p.Number != 7 {
		t.Errorf("expected page 7, got %+v", p)
	}
	if p := doc.PageDataFor("seven"); p != nil {
		t.Errorf("expected nil for non-numeric label, got %+v", p)
	}

	doc.AddPage("")
	if p := doc.PageDataFor("seven"); p == nil || p.Key != "page" {
		t.Errorf("expected non-numeric label to hit the bare \"page\" key, got %+v", p)
	}
}

func TestDocument_AddPageKeepsOrder(t *testing.T) {
	doc := NewDocument()
	doc.AddPage("2")
	doc.AddPage("1")
	doc.AddPage("2")
	var keys []string
	for _, p := range doc.Pages() {
		keys = append(keys, p.Key)
	}
	if diff := cmp.Diff([]string{"page2", "page1"}, keys); diff != "" {
		t.Errorf("page order mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_Export(t *testing.T) {
	doc := parseFixture(t)
	exp := doc.Export()

	if exp.TotalPages != 4 {
		t.Errorf("expected totalPages 4, got %d", exp.TotalPages)
	}
	if len(exp.Pages) != 4 {
		t.Fatalf("expected 4 exported pages, got %d", len(exp.Pages))
	}
	for i, pe := range exp.Pages {
		declared := doc.PageData(pe.Page).Links
		if len(pe.Links) != len(declared) {
			t.Errorf("page %d: expected %d links, got %d", i+1, len(declared), len(pe.Links))
		}
		for _, le := range pe.Links {
			if le.Link == "" || le.HitArea == nil {
				t.Errorf("page %d: incomplete link entry %+v", i+1, le)
			}
		}
	}

	want := []LinkExport{
		{Link: "obj_15", HitArea: &BoundingBox{X: 200, Y: 310, Width: 212, Height: 77}, Destination: "obj_9", TargetPage: 1},
		{Link: "obj_16", HitArea: &BoundingBox{X: 72, Y: 92, Width: 73, Height: 12}, Destination: "obj_33", TargetPage: 4},
		{Link: "obj_17", HitArea: &BoundingBox{X: 300, Y: 692, Width: 50, Height: 20}, Destination: "obj_21", TargetPage: 2},
	}
	if diff := cmp.Diff(want, exp.Pages[2].Links); diff != "" {
		t.Errorf("page 3 links mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_ExportOmitsDanglingLinks(t *testing.T) {
	doc := NewDocument()
	p := doc.AddPage("1")
	p.Links = []string{"obj_1", "obj_2"}
	r := doc.AddResource("obj_2", "file (PDF Annot obj_2)")
	r.Rect = &BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}

	exp := doc.Export()
	if len(exp.Pages[0].Links) != 1 || exp.Pages[0].Links[0].Link != "obj_2" {
		t.Errorf("expected only obj_2 in export, got %+v", exp.Pages[0].Links)
	}
	if exp.Dimensions != nil {
		t.Errorf("expected nil dimensions, got %+v", exp.Dimensions)
	}
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc := NewDocument()
	doc.SetAttr("Pages", "1")
	doc.SetBox("BoundingBox", BoundingBox{Width: 612, Height: 792})
	doc.AddPage("1")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"totalPages":1,"dimensions":{"x":0,"y":0,"width":612,"height":792},"pages":[{"page":1,"links":[]}]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestAttributes_MarshalJSON(t *testing.T) {
	attrs := Attributes{}
	attrs["Title"] = Attribute{Raw: "x.pdf"}
	box := BoundingBox{Width: 10, Height: 20}
	attrs["BoundingBox"] = Attribute{Raw: "0 0 10 20", Box: &box}

	data, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"BoundingBox":{"x":0,"y":0,"width":10,"height":20},"Title":"x.pdf"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestDocument_SetBoxRaw(t *testing.T) {
	doc := NewDocument()
	doc.SetBox("BoundingBox", BoundingBox{X: 10, Y: 20, Width: 100, Height: 200.5})
	if v, _ := doc.Attrs.Get("BoundingBox"); v != "10 20 110 220.5" {
		t.Errorf("expected raw %q, got %q", "10 20 110 220.5", v)
	}
}
