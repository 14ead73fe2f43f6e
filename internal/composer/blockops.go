package composer

import (
	"strings"

	"github.com/dshills/quill/internal/dom"
	"github.com/dshills/quill/internal/projection"
)

// runeLen16 matches utf16.RuneLen, which requires Go 1.23: the number of
// 16-bit words encoding r, or -1 if r cannot be encoded in UTF-16.
func runeLen16(r rune) int {
	switch {
	case 0 <= r && r < 0xD800, 0xE000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= 0x10FFFF:
		return 2
	default:
		return -1
	}
}

// The helpers here are the shared substance of the structural commands.
// Both backends express a block-level edit as flatten, pure transform
// over the flattened shapes, rebuild; keeping the transforms free of
// backend state is what keeps the two implementations in agreement.

// textInlines converts entered text into runs carrying the given
// formatting. Newlines become line breaks.
func textInlines(text string, attrs dom.Attrs) []dom.Inline {
	var out []dom.Inline
	for i, part := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, dom.Inline{Kind: dom.InlineBreak, Attrs: attrs})
		}
		if part != "" {
			out = append(out, dom.Inline{Kind: dom.InlineText, Text: part, Attrs: attrs})
		}
	}
	return out
}

// mentionInlines builds the runs a mention insert produces; the
// suggestion form appends the separating space.
func mentionInlines(url, text string, attrs dom.Attrs, space bool) []dom.Inline {
	attrs.LinkURL = ""
	out := []dom.Inline{{Kind: dom.InlineMention, URL: url, Display: text, Attrs: attrs}}
	if space {
		out = append(out, dom.Inline{Kind: dom.InlineText, Text: " ", Attrs: attrs})
	}
	return out
}

// inlineWidth sums the runs' widths in code units.
func inlineWidth(items []dom.Inline) int {
	n := 0
	for _, it := range items {
		n += it.UnitLen()
	}
	return n
}

// fitInlines adapts runs to their destination block. Code blocks store
// bare text, so formatting drops, breaks become literal newlines, and
// mentions flatten to their display text. Everywhere else a literal
// newline splits into a line break.
func fitInlines(items []dom.Inline, code bool) []dom.Inline {
	var out []dom.Inline
	for _, it := range items {
		if code {
			sh := dom.BlockShape{Items: []dom.Inline{it}}
			if text := sh.Text(); text != "" {
				out = append(out, dom.Inline{Kind: dom.InlineText, Text: text})
			}
			continue
		}
		if it.Kind == dom.InlineText && strings.ContainsRune(it.Text, '\n') {
			out = append(out, textInlines(it.Text, it.Attrs)...)
			continue
		}
		out = append(out, it)
	}
	return out
}

// splitInlines cuts the runs at a code-unit offset. Only text runs can
// straddle the cut; the offset is assumed snapped.
func splitInlines(items []dom.Inline, off int) ([]dom.Inline, []dom.Inline) {
	var pre, post []dom.Inline
	seen := 0
	for _, it := range items {
		w := it.UnitLen()
		switch {
		case seen+w <= off:
			pre = append(pre, it)
		case seen >= off:
			post = append(post, it)
		default:
			head, tail := it, it
			head.Text = dom.UTF16Slice(it.Text, 0, off-seen)
			tail.Text = dom.UTF16Slice(it.Text, off-seen, w)
			pre = append(pre, head)
			post = append(post, tail)
		}
		seen += w
	}
	return pre, post
}

// nodeInlines flattens parsed inline nodes into runs, folding
// formatting and link wrappers into each leaf's attribute set.
func nodeInlines(nodes []*dom.Node, base dom.Attrs) []dom.Inline {
	var out []dom.Inline
	for _, n := range nodes {
		switch n.Kind {
		case dom.KindText:
			if n.Text != "" {
				out = append(out, dom.Inline{Kind: dom.InlineText, Text: n.Text, Attrs: base})
			}
		case dom.KindLineBreak:
			out = append(out, dom.Inline{Kind: dom.InlineBreak, Attrs: base})
		case dom.KindMention:
			out = append(out, dom.Inline{Kind: dom.InlineMention, URL: n.URL, Display: n.Display, Attrs: base})
		case dom.KindFormatting:
			out = append(out, nodeInlines(n.Children, base.With(n.Format, true))...)
		case dom.KindLink:
			linked := base
			linked.LinkURL = n.URL
			out = append(out, nodeInlines(n.Children, linked)...)
		default:
			out = append(out, nodeInlines(n.Children, base)...)
		}
	}
	return out
}

// forestShapes flattens a parsed block forest through a scratch tree,
// so pasted structure goes through the same shaping as everything else.
func forestShapes(nodes []*dom.Node) []dom.BlockShape {
	t := dom.NewTreeWith(nodes...)
	return dom.ShapeBlocks(t, t.BlockSpans())
}

// coveredShapes returns the index range of the spans the interval
// touches. A location on a block boundary attaches to the earlier
// block, so a caret there covers exactly that block.
func coveredShapes(spans []dom.BlockSpan, start, end dom.Location) (int, int) {
	lo, hi := 0, 0
	found := false
	for i, sp := range spans {
		if sp.Start > end || sp.End < start {
			continue
		}
		if !found {
			lo, found = i, true
		}
		hi = i
	}
	return lo, hi
}

func isQuoted(sh dom.BlockShape) bool {
	return sh.InQuote || sh.Kind == dom.KindQuote
}

// quoteToggled wraps the covered shapes into one quote, or pulls them
// out of quoting when they are all quoted already. A quoted shape right
// after the covered run keeps opening its own container.
func quoteToggled(shapes []dom.BlockShape, lo, hi int) []dom.BlockShape {
	out := append([]dom.BlockShape(nil), shapes...)
	on := false
	for i := lo; i <= hi; i++ {
		if !isQuoted(out[i]) {
			on = true
			break
		}
	}
	for i := lo; i <= hi; i++ {
		if out[i].Kind == dom.KindQuote || out[i].Kind == dom.KindGeneric {
			out[i].Kind = dom.KindParagraph
		}
		out[i].InQuote = on
		out[i].NewQuote = on && i == lo
	}
	if hi+1 < len(out) && out[hi+1].InQuote {
		out[hi+1].NewQuote = true
	}
	return out
}

// listToggled makes the covered shapes items of one list of the given
// kind, or unwraps them when they already all are.
func listToggled(shapes []dom.BlockShape, lo, hi int, ordered bool) []dom.BlockShape {
	out := append([]dom.BlockShape(nil), shapes...)
	wrap := false
	for i := lo; i <= hi; i++ {
		if out[i].Kind != dom.KindListItem || out[i].Ordered != ordered {
			wrap = true
			break
		}
	}
	for i := lo; i <= hi; i++ {
		sh := &out[i]
		if !wrap {
			sh.Kind = dom.KindParagraph
			sh.Ordered = false
			sh.Depth = 0
			continue
		}
		if sh.Kind == dom.KindCodeBlock {
			sh.Items = fitInlines(sh.Items, false)
		}
		if sh.Kind == dom.KindQuote {
			sh.InQuote = true
			sh.NewQuote = true
		}
		if sh.Kind != dom.KindListItem {
			sh.Depth = 1
		}
		sh.Kind = dom.KindListItem
		sh.Ordered = ordered
	}
	return out
}

func orderedToggled(shapes []dom.BlockShape, lo, hi int) []dom.BlockShape {
	return listToggled(shapes, lo, hi, true)
}

func unorderedToggled(shapes []dom.BlockShape, lo, hi int) []dom.BlockShape {
	return listToggled(shapes, lo, hi, false)
}

// codeToggled joins the covered shapes into one code block, or splits
// covered code blocks back into one paragraph per line. Both directions
// keep every unit's flat offset, except mentions expanding to their
// display text on join.
func codeToggled(shapes []dom.BlockShape, lo, hi int) []dom.BlockShape {
	join := false
	for i := lo; i <= hi; i++ {
		if shapes[i].Kind != dom.KindCodeBlock {
			join = true
			break
		}
	}
	out := append([]dom.BlockShape(nil), shapes[:lo]...)
	if join {
		lines := make([]string, 0, hi-lo+1)
		for i := lo; i <= hi; i++ {
			lines = append(lines, shapes[i].Text())
		}
		sh := dom.BlockShape{
			Kind:     dom.KindCodeBlock,
			InQuote:  shapes[lo].InQuote,
			NewQuote: shapes[lo].NewQuote,
		}
		if text := strings.Join(lines, "\n"); text != "" {
			sh.Items = []dom.Inline{{Kind: dom.InlineText, Text: text}}
		}
		out = append(out, sh)
	} else {
		for i := lo; i <= hi; i++ {
			for j, line := range strings.Split(shapes[i].Text(), "\n") {
				p := dom.BlockShape{
					Kind:     dom.KindParagraph,
					InQuote:  shapes[i].InQuote,
					NewQuote: shapes[i].NewQuote && j == 0,
				}
				if line != "" {
					p.Items = []dom.Inline{{Kind: dom.InlineText, Text: line}}
				}
				out = append(out, p)
			}
		}
	}
	return append(out, shapes[hi+1:]...)
}

// splitHalves cuts one shape into the two block shapes an Enter leaves
// behind. Flat root content splits into its first two paragraphs; an
// inline-content quote into two quoted paragraphs.
func splitHalves(sh dom.BlockShape, off int) (dom.BlockShape, dom.BlockShape) {
	pre, post := splitInlines(sh.Items, off)
	first, second := sh, sh
	first.Items, second.Items = pre, post
	switch sh.Kind {
	case dom.KindGeneric:
		first.Kind, second.Kind = dom.KindParagraph, dom.KindParagraph
	case dom.KindQuote:
		first = dom.BlockShape{Kind: dom.KindParagraph, InQuote: true, NewQuote: true, Items: pre}
		second = dom.BlockShape{Kind: dom.KindParagraph, InQuote: true, Items: post}
	}
	second.NewQuote = false
	return first, second
}

// shapeSplit replaces the shape at idx with its two halves around the
// local offset.
func shapeSplit(shapes []dom.BlockShape, idx, off int) []dom.BlockShape {
	first, second := splitHalves(shapes[idx], off)
	out := make([]dom.BlockShape, 0, len(shapes)+1)
	out = append(out, shapes[:idx]...)
	out = append(out, first, second)
	return append(out, shapes[idx+1:]...)
}

// listExited turns the shape at idx back into a paragraph, splitting
// the list around it.
func listExited(shapes []dom.BlockShape, idx int) []dom.BlockShape {
	out := append([]dom.BlockShape(nil), shapes...)
	out[idx].Kind = dom.KindParagraph
	out[idx].Ordered = false
	out[idx].Depth = 0
	return out
}

// shapesSpliced opens the shape at idx at the local offset and lays the
// inserted shapes between the halves. Empty halves are dropped rather
// than left behind as empty blocks, and inserted shapes take on the
// quoting of the block they land in.
func shapesSpliced(shapes []dom.BlockShape, idx, off int, ins []dom.BlockShape) []dom.BlockShape {
	first, second := splitHalves(shapes[idx], off)
	if len(first.Items) == 0 {
		second.NewQuote = first.NewQuote
	}
	if first.InQuote {
		for i := range ins {
			ins[i].InQuote = true
			ins[i].NewQuote = false
		}
	}
	out := make([]dom.BlockShape, 0, len(shapes)+len(ins)+1)
	out = append(out, shapes[:idx]...)
	if len(first.Items) > 0 {
		out = append(out, first)
	}
	out = append(out, ins...)
	if len(second.Items) > 0 {
		out = append(out, second)
	}
	return append(out, shapes[idx+1:]...)
}

// newlineOffsets returns the flat offsets of the literal newlines in
// [start, end), for splitting code content back into paragraphs.
func newlineOffsets(t *dom.Tree, start, end dom.Location) []int {
	var locs []int
	off := start
	for _, it := range t.ExtractInlines(start, end) {
		if it.Kind == dom.InlineText {
			u := 0
			for _, r := range it.Text {
				if r == '\n' {
					locs = append(locs, off+u)
				}
				u += runeLen16(r)
			}
		}
		off += it.UnitLen()
	}
	return locs
}

// formatItems collects the runs a formatting command acts on: the
// covered slice of every non-code block the interval touches.
func formatItems(t *dom.Tree, start, end dom.Location) []dom.Inline {
	var items []dom.Inline
	for _, sp := range t.SpansIn(start, end) {
		if sp.Node.Kind == dom.KindCodeBlock {
			continue
		}
		s0, e0 := max(sp.Start, start), min(sp.End, end)
		if s0 < e0 {
			items = append(items, t.ExtractInlines(s0, e0)...)
		}
	}
	return items
}

// linkExtent expands a caret to the full contiguous extent of the link
// under it. The run left of the caret decides which link, matching how
// a caret on a seam takes the earlier side.
func linkExtent(t *dom.Tree, loc dom.Location) (dom.Location, dom.Location, bool) {
	for _, b := range projection.Project(t) {
		if loc < b.Start || loc > b.End {
			continue
		}
		at := loc
		if loc > b.Start {
			at = loc - 1
		}
		r, ok := b.RunAt(at)
		if !ok || r.Attrs.LinkURL == "" {
			return 0, 0, false
		}
		url := r.Attrs.LinkURL
		idx := 0
		for i, q := range b.Runs {
			if q.Start == r.Start {
				idx = i
				break
			}
		}
		start, end := r.Start, r.End
		for i := idx - 1; i >= 0 && b.Runs[i].Attrs.LinkURL == url; i-- {
			start = b.Runs[i].Start
		}
		for i := idx + 1; i < len(b.Runs) && b.Runs[i].Attrs.LinkURL == url; i++ {
			end = b.Runs[i].End
		}
		return start, end, true
	}
	return 0, 0, false
}

// attrsAt is the formatting in effect at a caret: the attributes of the
// text run an insertion there would extend, zero when the caret sits
// against objects or block edges only.
func attrsAt(t *dom.Tree, loc dom.Location) dom.Attrs {
	p := t.InsertionPoint(loc)
	if !p.InText() {
		return dom.Attrs{}
	}
	return t.AttrsAt(p.Text)
}

// togglePendingFormat flips one format in the pending set a caret
// carries.
func togglePendingFormat(pending []dom.Format, f dom.Format) []dom.Format {
	for i, p := range pending {
		if p == f {
			return append(pending[:i], pending[i+1:]...)
		}
	}
	return append(pending, f)
}

// applyPending folds pending toggles over base formatting.
func applyPending(attrs dom.Attrs, pending []dom.Format) dom.Attrs {
	for _, f := range pending {
		attrs = attrs.With(f, !attrs.Has(f))
	}
	return attrs
}
