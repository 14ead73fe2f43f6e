package crdt

import "github.com/dshills/quill/internal/dom"

// ElemKind discriminates the element variants of the sequence.
type ElemKind int

const (
	// ElemText holds one UTF-16 code unit.
	ElemText ElemKind = iota
	// ElemBreak is an atomic line break.
	ElemBreak
	// ElemMention is an atomic mention object.
	ElemMention
	// ElemBoundary separates two blocks and carries the descriptor of
	// the block it opens.
	ElemBoundary
)

// StyleField names one LWW-merged style register of an element.
type StyleField int

const (
	FieldBold StyleField = iota
	FieldItalic
	FieldStrikeThrough
	FieldUnderline
	FieldInlineCode
	FieldLink

	numStyleFields
)

// FieldForFormat maps an inline style to its register.
func FieldForFormat(f dom.Format) StyleField {
	switch f {
	case dom.FormatBold:
		return FieldBold
	case dom.FormatItalic:
		return FieldItalic
	case dom.FormatStrikeThrough:
		return FieldStrikeThrough
	case dom.FormatUnderline:
		return FieldUnderline
	default:
		return FieldInlineCode
	}
}

// StyleValue is one stamped register value. URL is meaningful only for
// FieldLink. The zero value (stamp 0) loses to any written value.
type StyleValue struct {
	On      bool
	URL     string
	Stamp   uint64
	Replica string
}

// newer reports whether a should win a last-writer merge against b.
func (a StyleValue) newer(b StyleValue) bool {
	if a.Stamp != b.Stamp {
		return a.Stamp > b.Stamp
	}
	return a.Replica > b.Replica
}

// StyleSet holds every style register of an element.
type StyleSet [numStyleFields]StyleValue

// Attrs collapses the registers into the flattened formatting state.
func (s StyleSet) Attrs() dom.Attrs {
	return dom.Attrs{
		Bold:          s[FieldBold].On,
		Italic:        s[FieldItalic].On,
		StrikeThrough: s[FieldStrikeThrough].On,
		Underline:     s[FieldUnderline].On,
		InlineCode:    s[FieldInlineCode].On,
		LinkURL:       s[FieldLink].URL,
	}
}

// stylesFor stamps the registers needed to represent attrs.
func stylesFor(attrs dom.Attrs, stamp uint64, replica string) StyleSet {
	var s StyleSet
	for _, f := range dom.Formats {
		if attrs.Has(f) {
			s[FieldForFormat(f)] = StyleValue{On: true, Stamp: stamp, Replica: replica}
		}
	}
	if attrs.LinkURL != "" {
		s[FieldLink] = StyleValue{On: true, URL: attrs.LinkURL, Stamp: stamp, Replica: replica}
	}
	return s
}

// BlockKind classifies the block a boundary opens.
type BlockKind int

const (
	BlockGeneric BlockKind = iota
	BlockParagraph
	BlockQuote
	BlockCode
	BlockListItem
)

// BlockDesc describes one block of the flattened document. NewQuote
// marks a block that opens a fresh quote container even when the block
// before it is also quoted; without it two adjacent quotes would fuse
// on lowering.
type BlockDesc struct {
	Kind     BlockKind
	InQuote  bool
	NewQuote bool
	Ordered  bool
	Depth    int
}

// Visibility is the stamped tombstone register. Elements are never
// removed; deletes and undo revives are last-writer writes here.
type Visibility struct {
	Deleted bool
	Stamp   uint64
	Replica string
}

func (a Visibility) newer(b Visibility) bool {
	if a.Stamp != b.Stamp {
		return a.Stamp > b.Stamp
	}
	return a.Replica > b.Replica
}

// Element is one unit of the replicated sequence: a code unit, an atomic
// object, or a block boundary. Every visible element occupies exactly
// one code unit of the flat document space.
type Element struct {
	Pos  Pos
	Kind ElemKind

	// Unit is the code unit of an ElemText element.
	Unit uint16

	// URL and Display describe an ElemMention element.
	URL     string
	Display string

	// Desc is the block descriptor of an ElemBoundary element, with its
	// own last-writer register.
	Desc        BlockDesc
	DescStamp   uint64
	DescReplica string

	Vis    Visibility
	Styles StyleSet
}

// clone deep-copies the element.
func (e *Element) clone() *Element {
	out := *e
	out.Pos = e.Pos.Clone()
	return &out
}
