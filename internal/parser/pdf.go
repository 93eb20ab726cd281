package parser

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/dgallion1/pslinks/internal/dsc"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser reads the link annotations of a source PDF into the same model
// the PostScript parser produces, so a distilled file can be checked against
// its origin. Resource ids are "pdf_<page>_<n>"; destinations are left
// unresolved because the library does not expose object numbers.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*dsc.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "pslinks-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := readPDFLinks(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf links %s: %w", filename, err)
	}
	return doc, nil
}

func readPDFLinks(path string) (*dsc.Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc := dsc.NewDocument()
	numPages := reader.NumPage()
	doc.SetAttr("Pages", strconv.Itoa(numPages))

	info := reader.Trailer().Key("Info")
	for _, key := range []string{"Title", "CreationDate", "Producer"} {
		if v := info.Key(key); !v.IsNull() {
			doc.SetAttr(key, v.Text())
		}
	}

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		media, ok := mediaBox(page.V)
		if i == 1 && ok {
			doc.SetBox("BoundingBox", media)
		}

		pg := doc.AddPage(strconv.Itoa(i))
		pg.Links = []string{}
		if ok {
			raw := fmt.Sprintf("%g %g %g %g", media.X, media.Y, media.X+media.Width, media.Y+media.Height)
			pg.Attrs["PageBoundingBox"] = dsc.Attribute{Raw: raw, Box: &media}
		}

		annots := page.V.Key("Annots")
		if annots.Kind() != pdflib.Array {
			continue
		}
		for j := 0; j < annots.Len(); j++ {
			annot := annots.Index(j)
			if annot.IsNull() || annot.Key("Subtype").Name() != "Link" {
				continue
			}
			rect, ok := linkRect(annot.Key("Rect"), media)
			if !ok {
				continue
			}
			id := fmt.Sprintf("pdf_%d_%d", i, j)
			res := doc.AddResource(id, fmt.Sprintf("page %d annotation %d", i, j))
			res.Rect = &rect
			pg.Links = append(pg.Links, id)
		}
	}
	return doc, nil
}

// mediaBox returns the page's MediaBox, following /Parent for inherited
// values.
func mediaBox(page pdflib.Value) (dsc.BoundingBox, bool) {
	v := page
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdflib.Array && box.Len() >= 4 {
			llx, lly := box.Index(0).Float64(), box.Index(1).Float64()
			urx, ury := box.Index(2).Float64(), box.Index(3).Float64()
			return dsc.BoundingBox{X: llx, Y: lly, Width: urx - llx, Height: ury - lly}, true
		}
		v = v.Key("Parent")
	}
	return dsc.BoundingBox{}, false
}

// linkRect reads a PDF /Rect and converts it to a hit rectangle.
func linkRect(rect pdflib.Value, media dsc.BoundingBox) (dsc.BoundingBox, bool) {
	if rect.Kind() != pdflib.Array || rect.Len() < 4 {
		return dsc.BoundingBox{}, false
	}
	return hitArea(rect.Index(0).Float64(), rect.Index(1).Float64(),
		rect.Index(2).Float64(), rect.Index(3).Float64(), media), true
}

// hitArea normalizes corners to the [left top right bottom] order that
// distilled PostScript carries, then flips against the media height only.
func hitArea(x1, y1, x2, y2 float64, media dsc.BoundingBox) dsc.BoundingBox {
	raw := [4]float64{
		math.Min(x1, x2),
		math.Max(y1, y2),
		math.Max(x1, x2),
		math.Min(y1, y2),
	}
	return dsc.HitRect(raw, media.Height)
}
