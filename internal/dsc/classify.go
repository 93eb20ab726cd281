package dsc

import (
	"regexp"
	"strconv"
	"strings"
)

// Tag is a DSC section delimiter.
type Tag int

const (
	TagNone Tag = iota
	TagBeginProlog
	TagEndProlog
	TagBeginResource
	TagEndResource
	TagPage
	TagPageTrailer
	TagBeginPageSetup
	TagEndPageSetup
)

var tagNames = map[string]Tag{
	"BeginProlog":    TagBeginProlog,
	"EndProlog":      TagEndProlog,
	"BeginResource":  TagBeginResource,
	"EndResource":    TagEndResource,
	"Page":           TagPage,
	"PageTrailer":    TagPageTrailer,
	"BeginPageSetup": TagBeginPageSetup,
	"EndPageSetup":   TagEndPageSetup,
}

func (t Tag) String() string {
	for name, tag := range tagNames {
		if tag == t {
			return "%%" + name
		}
	}
	return "root"
}

// Kind is a set of line features. A line can carry several, e.g.
// "/Annots[15 0 R 16 0 R]" opens an array, references two objects and closes
// the array.
type Kind uint16

const (
	SectionTag Kind = 1 << iota
	ObjectDecl
	AnnotsOpen
	AnnotRef
	ArrayClose
	AnnotDictOpen
	RectOpen
	RectValue
	DestOpen
	DestValue
	LinkEnd
	GenericAttr
	BBoxAttr

	Unrecognized Kind = 0
)

// Line is a classified input line.
type Line struct {
	Text  string
	Kinds Kind

	Tag    Tag
	TagArg string

	Key   string
	Value string
	Box   BoundingBox

	ObjID string
	Refs  []string
	Rect  [4]float64
	Dest  string
}

// Has reports whether the line carries feature k.
func (l Line) Has(k Kind) bool {
	return l.Kinds&k != 0
}

const num = `([-+]?(?:\d+\.?\d*|\.\d+))`

var (
	tagRe     = regexp.MustCompile(`^%%([A-Za-z]+)(?::\s*(.*))?`)
	bboxRe    = regexp.MustCompile(`^%%([A-Za-z]+):\s*` + num + `\s+` + num + `\s+` + num + `\s+` + num + `\s*$`)
	attribRe  = regexp.MustCompile(`^%%([A-Za-z]+):\s*(.*)$`)
	objDeclRe = regexp.MustCompile(`\b(\d+)\s+\d+\s+obj\b`)
	objRefRe  = regexp.MustCompile(`\b(\d+)\s+\d+\s+R\b`)
	annotsRe  = regexp.MustCompile(`^\s*/Annots\s*\[`)
	annotRe   = regexp.MustCompile(`^\s*<<\s*/Type\s*/Annot\b`)
	rectRe    = regexp.MustCompile(`^\s*/Rect\b`)
	rectValRe = regexp.MustCompile(`\[\s*` + num + `\s+` + num + `\s+` + num + `\s+` + num + `\s*\]`)
	destRe    = regexp.MustCompile(`^\s*/Dest\b`)
	destValRe = regexp.MustCompile(`\[\s*(\d+)\s+\d+\s+R\b[^\]]*\]`)
	linkEndRe = regexp.MustCompile(`^\s*/Subtype\s*/Link\s*>>`)
)

// Classify recognizes everything the parser cares about in one line. It holds
// no state; deciding which features matter is up to the caller.
func Classify(text string) Line {
	l := Line{Text: text}

	if m := tagRe.FindStringSubmatch(text); m != nil {
		if tag, ok := tagNames[m[1]]; ok {
			l.Kinds |= SectionTag
			l.Tag = tag
			l.TagArg = strings.TrimSpace(m[2])
			return l
		}
	}

	if strings.HasPrefix(text, "%%") {
		m := attribRe.FindStringSubmatch(text)
		if m == nil {
			return l
		}
		l.Key, l.Value = m[1], m[2]
		if b := bboxRe.FindStringSubmatch(text); b != nil {
			var v [4]float64
			for i := range v {
				v[i], _ = strconv.ParseFloat(b[i+2], 64)
			}
			l.Kinds |= BBoxAttr
			l.Box = boxFromCorners(v[0], v[1], v[2], v[3])
		} else {
			l.Kinds |= GenericAttr
		}
		return l
	}

	if m := objDeclRe.FindStringSubmatch(text); m != nil {
		l.Kinds |= ObjectDecl
		l.ObjID = "obj_" + m[1]
	}
	if annotsRe.MatchString(text) {
		l.Kinds |= AnnotsOpen
	}
	// References after a closing bracket belong to other keys.
	refText := text
	if i := strings.IndexByte(text, ']'); i >= 0 {
		refText = text[:i]
	}
	if refs := objRefRe.FindAllStringSubmatch(refText, -1); refs != nil {
		l.Kinds |= AnnotRef
		for _, m := range refs {
			l.Refs = append(l.Refs, "obj_"+m[1])
		}
	}
	if strings.Contains(text, "]") {
		l.Kinds |= ArrayClose
	}
	if annotRe.MatchString(text) {
		l.Kinds |= AnnotDictOpen
	}
	if rectRe.MatchString(text) {
		l.Kinds |= RectOpen
	}
	if m := rectValRe.FindStringSubmatch(text); m != nil {
		l.Kinds |= RectValue
		for i := range l.Rect {
			l.Rect[i], _ = strconv.ParseFloat(m[i+1], 64)
		}
	}
	if destRe.MatchString(text) {
		l.Kinds |= DestOpen
	}
	if m := destValRe.FindStringSubmatch(text); m != nil {
		l.Kinds |= DestValue
		l.Dest = "obj_" + m[1]
	}
	if linkEndRe.MatchString(text) {
		l.Kinds |= LinkEnd
	}
	return l
}

var resourceIDRe = regexp.MustCompile(`\(.*\b(obj_\d+)\)\s*$`)

// resourceID extracts the embedded object id from a %%BeginResource
// description such as "file (PDF Annot obj_15)".
func resourceID(desc string) (string, bool) {
	m := resourceIDRe.FindStringSubmatch(desc)
	if m == nil {
		return "", false
	}
	return m[1], true
}
