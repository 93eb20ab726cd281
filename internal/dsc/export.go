package dsc

import "encoding/json"

// Export is the consumer-facing projection of a document.
type Export struct {
	TotalPages int          `json:"totalPages"`
	Dimensions *BoundingBox `json:"dimensions"`
	Pages      []PageExport `json:"pages"`
}

type PageExport struct {
	Page  int          `json:"page"`
	ObjID string       `json:"objId,omitempty"`
	Links []LinkExport `json:"links"`
}

type LinkExport struct {
	Link        string       `json:"link"`
	HitArea     *BoundingBox `json:"hitArea"`
	Destination string       `json:"destination,omitempty"`
	TargetPage  int          `json:"targetPage,omitempty"`
}

// Export resolves every page's link ids through the resource map. Link ids
// without a resource are left out.
func (d *Document) Export() Export {
	out := Export{
		TotalPages: d.PageTotals(),
		Pages:      make([]PageExport, 0, len(d.pageOrder)),
	}
	if dims, ok := d.Dimensions(); ok {
		out.Dimensions = &dims
	}

	for _, p := range d.Pages() {
		pe := PageExport{
			Page:  p.Number,
			ObjID: p.ObjID,
			Links: make([]LinkExport, 0, len(p.Links)),
		}
		for _, id := range p.Links {
			r := d.resources[id]
			if r == nil {
				continue
			}
			le := LinkExport{
				Link:        r.ID,
				HitArea:     r.Rect,
				Destination: r.Destination,
			}
			if target := d.DestinationPage(id); target != nil {
				le.TargetPage = target.Number
			}
			pe.Links = append(pe.Links, le)
		}
		out.Pages = append(out.Pages, pe)
	}
	return out
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Export())
}
