package projection

import (
	"github.com/dshills/quill/internal/dom"
)

// BlockKind classifies a projected block the way hosts render them.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockQuote
	BlockCodeBlock
	BlockListItem
	BlockGeneric
)

// String returns the kind name used in logs.
func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockQuote:
		return "quote"
	case BlockCodeBlock:
		return "code-block"
	case BlockListItem:
		return "list-item"
	default:
		return "generic"
	}
}

// Block is one line-like region of the document in render order, located
// by flat code-unit offsets. Runs hold its inline content.
type Block struct {
	Handle  dom.Handle
	Kind    BlockKind
	InQuote bool
	// Ordered and Depth describe the innermost list for list items.
	Ordered bool
	Depth   int
	Start   dom.Location
	End     dom.Location
	Runs    []Run
}

// RunKind discriminates inline run variants.
type RunKind int

const (
	RunText RunKind = iota
	RunMention
	RunLineBreak
)

// Run is one leaf of a block with the flattened formatting in effect over
// it. Offsets are absolute document locations.
type Run struct {
	Handle  dom.Handle
	Kind    RunKind
	Start   dom.Location
	End     dom.Location
	Text    string
	Attrs   dom.Attrs
	URL     string
	Display string
}

// Project flattens the document into its render model. Both backends hand
// their current tree through here, so hosts and the suggestion scanner see
// one shape regardless of how the content is stored.
func Project(t *dom.Tree) []Block {
	spans := t.BlockSpans()
	blocks := make([]Block, 0, len(spans))
	for _, s := range spans {
		b := Block{
			Handle:  s.Handle,
			Kind:    blockKind(s.Node.Kind),
			InQuote: s.InQuote,
			Ordered: s.Ordered,
			Depth:   s.ListDepth,
			Start:   s.Start,
			End:     s.End,
		}
		r := t.Resolve(s.Start, s.End)
		b.Runs = make([]Run, 0, len(r.Segments))
		for _, seg := range r.Segments {
			b.Runs = append(b.Runs, segmentRun(t, seg))
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func blockKind(k dom.NodeKind) BlockKind {
	switch k {
	case dom.KindParagraph:
		return BlockParagraph
	case dom.KindQuote:
		return BlockQuote
	case dom.KindCodeBlock:
		return BlockCodeBlock
	case dom.KindListItem:
		return BlockListItem
	default:
		return BlockGeneric
	}
}

func segmentRun(t *dom.Tree, seg dom.Segment) Run {
	run := Run{
		Handle: seg.Handle,
		Start:  seg.Start + seg.LocalStart,
		End:    seg.Start + seg.LocalEnd,
		Attrs:  t.AttrsAt(seg.Handle),
	}
	switch seg.Leaf.Kind {
	case dom.KindLineBreak:
		run.Kind = RunLineBreak
	case dom.KindMention:
		run.Kind = RunMention
		run.URL = seg.Leaf.URL
		run.Display = seg.Leaf.Display
	default:
		run.Kind = RunText
		run.Text = seg.Text()
	}
	return run
}

// TextBefore returns the block's text strictly before the location,
// stopping at the nearest mention or line break. This is the window
// trigger scanning works on.
func (b Block) TextBefore(loc dom.Location) string {
	var out string
	for _, r := range b.Runs {
		if r.Start >= loc {
			break
		}
		if r.Kind != RunText {
			out = ""
			continue
		}
		end := r.End
		if loc < end {
			end = loc
		}
		out += dom.UTF16Slice(r.Text, 0, end-r.Start)
	}
	return out
}

// TextAfter returns the block's text at and after the location, stopping
// at the first mention or line break.
func (b Block) TextAfter(loc dom.Location) string {
	var out string
	for _, r := range b.Runs {
		if r.End <= loc {
			continue
		}
		if r.Kind != RunText {
			break
		}
		start := r.Start
		if loc > start {
			start = loc
		}
		out += dom.UTF16Slice(r.Text, start-r.Start, r.End-r.Start)
	}
	return out
}

// RunAt returns the run containing the location, preferring the run that
// starts there when the location sits on a seam.
func (b Block) RunAt(loc dom.Location) (Run, bool) {
	for _, r := range b.Runs {
		if loc >= r.Start && loc < r.End {
			return r, true
		}
	}
	if n := len(b.Runs); n > 0 && loc == b.Runs[n-1].End {
		return b.Runs[n-1], true
	}
	return Run{}, false
}
