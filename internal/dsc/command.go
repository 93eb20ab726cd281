package dsc

// command is an embedded PDF-object construct the parser is inside of.
type command int

const (
	cmdAnnotation command = iota + 1
	cmdResourceAnnotation
	cmdResourceRect
	cmdResourceDest
)

func (c command) String() string {
	switch c {
	case cmdAnnotation:
		return "Annots"
	case cmdResourceAnnotation:
		return "/Type/Annot"
	case cmdResourceRect:
		return "/Rect"
	case cmdResourceDest:
		return "/Dest"
	}
	return "none"
}

type commandStack []command

func (s *commandStack) push(c command) { *s = append(*s, c) }

func (s *commandStack) pop() {
	if n := len(*s); n > 0 {
		*s = (*s)[:n-1]
	}
}

func (s commandStack) top() command {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func (s *commandStack) reset() { *s = (*s)[:0] }

// openCommands starts the commands a line opens in the given section.
func (p *parser) openCommands(l Line) {
	switch p.tags.top() {
	case TagBeginPageSetup:
		page, _ := p.node.(*Page)
		if page != nil && l.Has(ObjectDecl) {
			page.ObjID = l.ObjID
		}
		if l.Has(AnnotsOpen) {
			p.cmds.push(cmdAnnotation)
			if page != nil && page.Links == nil {
				page.Links = []string{}
			}
		}
	case TagBeginResource:
		if l.Has(AnnotDictOpen) {
			p.cmds.push(cmdResourceAnnotation)
		}
	}
}

// runCommands lets the active command consume the line. A command that opens
// a nested one hands the same line to it, so single-line forms such as
// "/Rect [1 2 3 4]" complete immediately.
func (p *parser) runCommands(l Line) {
	for len(p.cmds) > 0 {
		if !p.step(p.cmds.top(), l) {
			return
		}
	}
}

// step applies one command to l and reports whether it pushed a new one.
func (p *parser) step(c command, l Line) bool {
	switch c {
	case cmdAnnotation:
		if page, ok := p.node.(*Page); ok && l.Has(AnnotRef) {
			page.Links = append(page.Links, l.Refs...)
		}
		if l.Has(ArrayClose) {
			p.cmds.pop()
		}
	case cmdResourceAnnotation:
		switch {
		case l.Has(RectOpen):
			p.cmds.push(cmdResourceRect)
			return true
		case l.Has(DestOpen):
			p.cmds.push(cmdResourceDest)
			return true
		case l.Has(LinkEnd):
			p.cmds.pop()
		}
	case cmdResourceRect:
		if l.Has(RectValue) {
			if r, ok := p.node.(*Resource); ok {
				rect := HitRect(l.Rect, p.pageHeight())
				r.Rect = &rect
			}
			p.cmds.pop()
		}
	case cmdResourceDest:
		if l.Has(DestValue) {
			if r, ok := p.node.(*Resource); ok {
				r.Destination = l.Dest
			}
			p.cmds.pop()
		}
	}
	return false
}

// pageHeight is the root bounding box height that hit rectangles are flipped
// against. Producers declare it in the header, ahead of any resource.
func (p *parser) pageHeight() float64 {
	dims, ok := p.doc.Dimensions()
	if !ok {
		p.log.Warn("hit rectangle before %%BoundingBox, y is not flipped against page height")
		return 0
	}
	return dims.Height
}
