package composer

import (
	"github.com/dshills/quill/internal/crdt"
	"github.com/dshills/quill/internal/dom"
	"github.com/dshills/quill/internal/suggestion"
)

// crdtModel is the collaborative backend: commands become mergeable
// operations against the replicated sequence, grouped per command for
// undo. Reads lower the visible sequence to a document tree, so the
// composer sees the same shape either backend produces.
type crdtModel struct {
	model   *crdt.Model
	anchor  dom.Location
	head    dom.Location
	pending []dom.Format
}

func newCRDTModel(replica string) *crdtModel {
	return &crdtModel{model: crdt.NewModel(replica)}
}

func (x *crdtModel) Tree() *dom.Tree       { return x.model.Tree() }
func (x *crdtModel) Selection() Selection  { return Selection{Anchor: x.anchor, Head: x.head} }
func (x *crdtModel) Pending() []dom.Format { return x.pending }
func (x *crdtModel) CanUndo() bool         { return x.model.CanUndo() }
func (x *crdtModel) CanRedo() bool         { return x.model.CanRedo() }

func (x *crdtModel) Select(anchor, head dom.Location) {
	if anchor != x.anchor || head != x.head {
		x.pending = nil
	}
	x.anchor, x.head = anchor, head
}

func (x *crdtModel) setCursor(loc dom.Location) {
	if x.anchor != loc || x.head != loc {
		x.pending = nil
	}
	x.anchor, x.head = loc, loc
}

func (x *crdtModel) insertAttrs(t *dom.Tree, loc dom.Location) dom.Attrs {
	return applyPending(attrsAt(t, loc), x.pending)
}

// insertItems feeds runs into the sequence at loc, returning the
// location past them.
func (x *crdtModel) insertItems(loc dom.Location, items []dom.Inline) dom.Location {
	for _, it := range items {
		switch it.Kind {
		case dom.InlineText:
			x.model.InsertText(loc, it.Text, it.Attrs)
		case dom.InlineBreak:
			x.model.InsertBreak(loc, it.Attrs)
		case dom.InlineMention:
			x.model.InsertMention(loc, it.URL, it.Display, it.Attrs)
		}
		loc += it.UnitLen()
	}
	return loc
}

// replaceSegment mirrors the tree backend's block merge in flat space:
// the interval is deleted, internal boundaries included, and the fitted
// items inserted in its place. Content pulled across a code edge is
// rewritten to the form its new block stores. Returns the width of the
// items as inserted.
func (x *crdtModel) replaceSegment(t *dom.Tree, start, end dom.Location, items []dom.Inline) int {
	if start == 0 && end == t.Len() && (start != end || t.IsEmpty()) {
		fitted := fitInlines(items, false)
		x.model.SetHead(crdt.BlockDesc{})
		x.model.DeleteRange(0, end)
		x.insertItems(0, fitted)
		return inlineWidth(fitted)
	}

	spans := t.SpansIn(start, end)
	first, last := spans[0], spans[len(spans)-1]
	code := first.Node.Kind == dom.KindCodeBlock
	fitted := fitInlines(items, code)

	x.model.DeleteRange(start, end)
	x.insertItems(start, fitted)

	w := inlineWidth(fitted)
	if end < last.End {
		switch {
		case code:
			x.model.FlattenRange(start+w, start+w+(last.End-end))
		case last.Node.Kind == dom.KindCodeBlock:
			x.model.BreakNewlines(start+w, start+w+(last.End-end))
		}
	}
	return w
}

func (x *crdtModel) ReplaceText(text string) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	return x.replaceAt(t, text, start, end)
}

func (x *crdtModel) ReplaceTextIn(text string, start, end dom.Location) bool {
	t := x.model.Tree()
	start, end = t.SnapInterval(start, end)
	return x.replaceAt(t, text, start, end)
}

func (x *crdtModel) replaceAt(t *dom.Tree, text string, start, end dom.Location) bool {
	if text == "" && start == end {
		return false
	}
	items := textInlines(text, x.insertAttrs(t, start))
	x.model.BeginGroup(x.anchor, x.head)
	w := x.replaceSegment(t, start, end, items)
	x.model.EndGroup()
	x.setCursor(start + w)
	return true
}

func (x *crdtModel) ReplaceTextSuggestion(text string, pat suggestion.Pattern) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(pat.Start, pat.End)
	items := textInlines(text+" ", attrsInRange(t, start, end))
	x.model.BeginGroup(x.anchor, x.head)
	w := x.replaceSegment(t, start, end, items)
	x.model.EndGroup()
	x.setCursor(start + w)
	return true
}

func (x *crdtModel) InsertMention(url, text string) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	items := mentionInlines(url, text, attrsAt(t, start), false)
	x.model.BeginGroup(x.anchor, x.head)
	w := x.replaceSegment(t, start, end, items)
	x.model.EndGroup()
	x.setCursor(start + w)
	return true
}

func (x *crdtModel) InsertMentionAtSuggestion(url, text string, pat suggestion.Pattern) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(pat.Start, pat.End)
	items := mentionInlines(url, text, attrsInRange(t, start, end), true)
	x.model.BeginGroup(x.anchor, x.head)
	w := x.replaceSegment(t, start, end, items)
	x.model.EndGroup()
	x.setCursor(start + w)
	return true
}

// splitDescs derives the descriptors of the two blocks a split leaves
// behind, mirroring how the tree backend splits shapes.
func splitDescs(d crdt.BlockDesc) (crdt.BlockDesc, crdt.BlockDesc) {
	first, second := d, d
	switch d.Kind {
	case crdt.BlockGeneric:
		first.Kind, second.Kind = crdt.BlockParagraph, crdt.BlockParagraph
	case crdt.BlockQuote:
		first = crdt.BlockDesc{Kind: crdt.BlockParagraph, InQuote: true, NewQuote: true}
		second = crdt.BlockDesc{Kind: crdt.BlockParagraph, InQuote: true}
	}
	second.NewQuote = false
	return first, second
}

func (x *crdtModel) Enter() bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	x.model.BeginGroup(x.anchor, x.head)
	defer x.model.EndGroup()
	if start != end {
		x.replaceSegment(t, start, end, nil)
		t = x.model.Tree()
	}
	cur := start
	sp := t.SpanAt(cur)
	switch {
	case sp.Node.Kind == dom.KindCodeBlock:
		x.model.InsertText(cur, "\n", dom.Attrs{})
		x.setCursor(cur + 1)
	case sp.Node.Kind == dom.KindListItem && sp.Start == sp.End:
		desc := x.model.DescAt(cur)
		desc.Kind = crdt.BlockParagraph
		desc.Ordered = false
		desc.Depth = 0
		x.model.SetDescAt(cur, desc)
		x.setCursor(cur)
	default:
		d := x.model.DescAt(cur)
		if d.Kind == crdt.BlockGeneric {
			d.Kind = crdt.BlockParagraph
			x.model.SetHead(d)
		}
		first, second := splitDescs(d)
		if first != d {
			x.model.SetDescAt(cur, first)
		}
		x.model.InsertBoundary(cur, second)
		x.setCursor(cur + 1)
	}
	return true
}

func (x *crdtModel) Backspace() bool {
	t := x.model.Tree()
	start, end := t.ClampInterval(x.anchor, x.head)
	if start == end {
		if start == 0 {
			return false
		}
		start--
	}
	return x.deleteRange(t, start, end)
}

func (x *crdtModel) DeleteForward() bool {
	t := x.model.Tree()
	start, end := t.ClampInterval(x.anchor, x.head)
	if start == end {
		if end == t.Len() {
			return false
		}
		end++
	}
	return x.deleteRange(t, start, end)
}

func (x *crdtModel) deleteRange(t *dom.Tree, start, end dom.Location) bool {
	start, end = t.SnapInterval(start, end)
	if start == end {
		return false
	}
	x.model.BeginGroup(x.anchor, x.head)
	x.replaceSegment(t, start, end, nil)
	x.model.EndGroup()
	x.setCursor(start)
	return true
}

func (x *crdtModel) ToggleFormat(f dom.Format) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	if start == end {
		x.pending = togglePendingFormat(x.pending, f)
		return false
	}
	items := formatItems(t, start, end)
	if len(items) == 0 {
		return false
	}
	on := !dom.AllHave(items, f)
	x.model.BeginGroup(x.anchor, x.head)
	x.styleSpans(t, start, end, crdt.FieldForFormat(f), on, "")
	x.model.EndGroup()
	return true
}

// styleSpans writes one style register across the covered slice of
// every non-code block the interval touches.
func (x *crdtModel) styleSpans(t *dom.Tree, start, end dom.Location, f crdt.StyleField, on bool, url string) {
	for _, sp := range t.SpansIn(start, end) {
		if sp.Node.Kind == dom.KindCodeBlock {
			continue
		}
		s0, e0 := max(sp.Start, start), min(sp.End, end)
		if s0 < e0 {
			x.model.SetStyleRange(s0, e0, f, on, url)
		}
	}
}

func (x *crdtModel) SetLink(url string) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	if start == end || url == "" {
		return false
	}
	if len(formatItems(t, start, end)) == 0 {
		return false
	}
	x.model.BeginGroup(x.anchor, x.head)
	x.styleSpans(t, start, end, crdt.FieldLink, true, url)
	x.model.EndGroup()
	return true
}

func (x *crdtModel) SetLinkWithText(url, text string) bool {
	if url == "" || text == "" {
		return false
	}
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	attrs := attrsAt(t, start)
	attrs.LinkURL = url
	items := []dom.Inline{{Kind: dom.InlineText, Text: text, Attrs: attrs}}
	x.model.BeginGroup(x.anchor, x.head)
	w := x.replaceSegment(t, start, end, items)
	x.model.EndGroup()
	x.setCursor(start + w)
	return true
}

func (x *crdtModel) RemoveLinks() bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	if start == end {
		var ok bool
		start, end, ok = linkExtent(t, start)
		if !ok {
			return false
		}
	}
	linked := false
	for _, it := range t.ExtractInlines(start, end) {
		if it.Attrs.LinkURL != "" {
			linked = true
			break
		}
	}
	if !linked {
		return false
	}
	x.model.BeginGroup(x.anchor, x.head)
	x.styleSpans(t, start, end, crdt.FieldLink, false, "")
	x.model.EndGroup()
	return true
}

func (x *crdtModel) ToggleOrderedList() bool   { return x.transformDescs(orderedToggled) }
func (x *crdtModel) ToggleUnorderedList() bool { return x.transformDescs(unorderedToggled) }
func (x *crdtModel) ToggleQuote() bool         { return x.transformDescs(quoteToggled) }

// transformDescs runs a shape transform that renames blocks without
// moving content, then writes each changed descriptor. A block leaving
// code form gets its literal newlines back as break objects.
func (x *crdtModel) transformDescs(transform func([]dom.BlockShape, int, int) []dom.BlockShape) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	r, cLo, cHi := regionFor(t, start, end)
	shapes := dom.ShapeBlocks(t, r.spans)
	next := transform(shapes, cLo, cHi)

	x.model.BeginGroup(x.anchor, x.head)
	defer x.model.EndGroup()
	for i := range next {
		od, nd := crdt.DescForShape(shapes[i]), crdt.DescForShape(next[i])
		if od == nd {
			continue
		}
		x.model.SetDescAt(r.spans[i].Start, nd)
		if shapes[i].Kind == dom.KindCodeBlock && next[i].Kind != dom.KindCodeBlock {
			x.model.BreakNewlines(r.spans[i].Start, r.spans[i].End)
		}
	}
	return true
}

// ToggleCodeBlock joins the covered blocks into one code block, or
// splits covered code blocks back into one paragraph per line, the flat
// mirror of the tree backend's shape rewrite.
func (x *crdtModel) ToggleCodeBlock() bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	spans := t.BlockSpans()
	cLo, cHi := coveredShapes(spans, start, end)

	join := false
	for i := cLo; i <= cHi; i++ {
		if spans[i].Node.Kind != dom.KindCodeBlock {
			join = true
			break
		}
	}

	x.model.BeginGroup(x.anchor, x.head)
	defer x.model.EndGroup()
	if join {
		desc := x.model.DescAt(spans[cLo].Start)
		desc.Kind = crdt.BlockCode
		desc.Ordered = false
		desc.Depth = 0
		x.model.SetDescAt(spans[cLo].Start, desc)
		for i := cLo; i < cHi; i++ {
			b := spans[i].End
			x.model.DeleteRange(b, b+1)
			x.model.InsertText(b, "\n", dom.Attrs{})
		}
		x.model.FlattenRange(spans[cLo].Start, spans[cHi].End)
		return true
	}
	for i := cHi; i >= cLo; i-- {
		x.splitCode(t, spans[i])
	}
	return true
}

// splitCode turns one code block back into a paragraph per line.
func (x *crdtModel) splitCode(t *dom.Tree, sp dom.BlockSpan) {
	desc := x.model.DescAt(sp.Start)
	x.model.SetDescAt(sp.Start, crdt.BlockDesc{
		Kind:     crdt.BlockParagraph,
		InQuote:  desc.InQuote,
		NewQuote: desc.NewQuote,
	})
	locs := newlineOffsets(t, sp.Start, sp.End)
	for i := len(locs) - 1; i >= 0; i-- {
		x.model.DeleteRange(locs[i], locs[i]+1)
		x.model.InsertBoundary(locs[i], crdt.BlockDesc{
			Kind:    crdt.BlockParagraph,
			InQuote: desc.InQuote,
		})
	}
}

func (x *crdtModel) InsertNodes(nodes []*dom.Node) bool {
	t := x.model.Tree()
	start, end := t.SnapInterval(x.anchor, x.head)
	if len(nodes) == 0 && start == end {
		return false
	}

	blocks := false
	for _, n := range nodes {
		if n.IsBlock() {
			blocks = true
			break
		}
	}

	x.model.BeginGroup(x.anchor, x.head)
	defer x.model.EndGroup()

	if !blocks {
		w := x.replaceSegment(t, start, end, nodeInlines(nodes, dom.Attrs{}))
		x.setCursor(start + w)
		return true
	}

	if start != end {
		x.replaceSegment(t, start, end, nil)
		t = x.model.Tree()
	}
	cur := start
	before := x.model.VisibleLen()
	x.insertBlocks(t, cur, forestShapes(nodes))
	x.setCursor(cur + x.model.VisibleLen() - before)
	return true
}

// insertBlocks splices block shapes at cur inside the block there,
// mirroring the tree backend's shape splice: the target block splits,
// empty halves drop, and the shapes land between.
func (x *crdtModel) insertBlocks(t *dom.Tree, cur dom.Location, shapes []dom.BlockShape) {
	sp := t.SpanAt(cur)
	d := x.model.DescAt(cur)
	if d.Kind == crdt.BlockGeneric {
		d.Kind = crdt.BlockParagraph
		x.model.SetHead(d)
	}
	first, second := splitDescs(d)
	atStart, atEnd := cur == sp.Start, cur == sp.End
	if atStart {
		second.NewQuote = first.NewQuote
	} else if first != d {
		x.model.SetDescAt(cur, first)
	}
	if first.InQuote {
		for i := range shapes {
			shapes[i].InQuote = true
			shapes[i].NewQuote = false
		}
	}
	loc := cur
	for i, sh := range shapes {
		desc := crdt.DescForShape(sh)
		if i == 0 && atStart {
			x.model.SetDescAt(loc, desc)
		} else {
			x.model.InsertBoundary(loc, desc)
			loc++
		}
		loc = x.insertItems(loc, fitInlines(sh.Items, sh.Kind == dom.KindCodeBlock))
	}
	if !atEnd {
		x.model.InsertBoundary(loc, second)
	}
}

func (x *crdtModel) SetContent(nodes []*dom.Node) {
	x.model.LoadTree(dom.NewTreeWith(nodes...))
	x.model.ClearHistory()
	x.pending = nil
	n := x.model.VisibleLen()
	x.anchor, x.head = n, n
}

func (x *crdtModel) Clear() {
	x.model.LoadTree(dom.NewTree())
	x.model.ClearHistory()
	x.pending = nil
	x.anchor, x.head = 0, 0
}

func (x *crdtModel) Undo() bool {
	sel, ok := x.model.Undo(x.anchor, x.head)
	if !ok {
		return false
	}
	x.applySel(sel)
	return true
}

func (x *crdtModel) Redo() bool {
	sel, ok := x.model.Redo(x.anchor, x.head)
	if !ok {
		return false
	}
	x.applySel(sel)
	return true
}

func (x *crdtModel) applySel(sel [2]int) {
	if sel[0] != x.anchor || sel[1] != x.head {
		x.pending = nil
	}
	x.anchor, x.head = sel[0], sel[1]
}

// ApplyRemote merges operations from another replica and re-clamps the
// selection against the merged length.
func (x *crdtModel) ApplyRemote(ops []crdt.Op) {
	x.model.ApplyRemote(ops)
	n := x.model.VisibleLen()
	x.anchor = clampLoc(x.anchor, n)
	x.head = clampLoc(x.head, n)
}

func clampLoc(loc dom.Location, n int) dom.Location {
	if loc < 0 {
		return 0
	}
	if loc > n {
		return n
	}
	return loc
}

func (x *crdtModel) TakeOutbound() []crdt.Op { return x.model.TakeOutbound() }
func (x *crdtModel) Replica() string         { return x.model.Replica() }
