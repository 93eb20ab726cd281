package dsc

// node is anything the current-node pointer can address.
type node interface {
	attributes() Attributes
}

func (d *Document) attributes() Attributes { return d.Attrs }
func (p *Page) attributes() Attributes     { return p.Attrs }
func (r *Resource) attributes() Attributes { return r.Attrs }

// extractAttribute writes a bounding-box or generic attribute line into n.
// Bounding boxes take precedence; values are stored verbatim.
func extractAttribute(l Line, n node) bool {
	if n == nil {
		return false
	}
	switch {
	case l.Has(BBoxAttr):
		box := l.Box
		n.attributes()[l.Key] = Attribute{Raw: l.Value, Box: &box}
	case l.Has(GenericAttr):
		n.attributes()[l.Key] = Attribute{Raw: l.Value}
	default:
		return false
	}
	return true
}
