package composer

import (
	"github.com/dshills/quill/internal/dom"
	"github.com/dshills/quill/internal/history"
	"github.com/dshills/quill/internal/suggestion"
)

// treeModel is the local backend: commands edit the document tree in
// place and every content command pushes a full snapshot for undo.
type treeModel struct {
	tree    *dom.Tree
	anchor  dom.Location
	head    dom.Location
	pending []dom.Format
	history *history.Stack
}

func newTreeModel(maxHistory int) *treeModel {
	return &treeModel{
		tree:    dom.NewTree(),
		history: history.NewStack(maxHistory),
	}
}

func (m *treeModel) Tree() *dom.Tree       { return m.tree }
func (m *treeModel) Selection() Selection  { return Selection{Anchor: m.anchor, Head: m.head} }
func (m *treeModel) Pending() []dom.Format { return m.pending }
func (m *treeModel) CanUndo() bool         { return m.history.CanUndo() }
func (m *treeModel) CanRedo() bool         { return m.history.CanRedo() }

// Select stores the selection as given. Reads clamp against the live
// document, so a selection that outlives an edit stays usable.
func (m *treeModel) Select(anchor, head dom.Location) {
	if anchor != m.anchor || head != m.head {
		m.pending = nil
	}
	m.anchor, m.head = anchor, head
}

func (m *treeModel) setCursor(loc dom.Location) {
	if m.anchor != loc || m.head != loc {
		m.pending = nil
	}
	m.anchor, m.head = loc, loc
}

// snappedSel is the selection as an edit interval: clamped, ordered,
// and snapped off surrogate halves.
func (m *treeModel) snappedSel() (dom.Location, dom.Location) {
	return m.tree.SnapInterval(m.anchor, m.head)
}

func (m *treeModel) pushHistory() {
	m.history.Push(m.snapshot())
}

func (m *treeModel) snapshot() history.Snapshot {
	return history.Snapshot{
		Tree:    m.tree,
		Anchor:  m.anchor,
		Head:    m.head,
		Pending: m.pending,
	}.Clone()
}

func (m *treeModel) restore(s history.Snapshot) {
	m.tree = s.Tree
	m.anchor, m.head = s.Anchor, s.Head
	m.pending = s.Pending
}

// insertAttrs resolves the formatting entered text picks up at loc: the
// formatting in effect there folded with the pending toggles.
func (m *treeModel) insertAttrs(loc dom.Location) dom.Attrs {
	return applyPending(attrsAt(m.tree, loc), m.pending)
}

// attrsInRange picks the formatting of the first run in [start, end),
// falling back to the caret formatting when the range is empty.
func attrsInRange(t *dom.Tree, start, end dom.Location) dom.Attrs {
	if items := t.ExtractInlines(start, end); len(items) > 0 {
		return items[0].Attrs
	}
	return attrsAt(t, start)
}

// replaceSegment splices items over [start, end): the touched blocks
// merge into the first one, keeping its kind, with the prefix of the
// first block and the suffix of the last around the fitted items.
// Replacing the whole document flattens it back to inline root content.
// Returns the width of the items as inserted.
func (m *treeModel) replaceSegment(start, end dom.Location, items []dom.Inline) int {
	if start == 0 && end == m.tree.Len() && (start != end || m.tree.IsEmpty()) {
		fitted := fitInlines(items, false)
		m.tree.ReplaceSubtree(dom.RootHandle(), dom.NewContainer(dom.KindGeneric, dom.BuildInline(fitted)...))
		return inlineWidth(fitted)
	}

	spans := m.tree.SpansIn(start, end)
	first, last := spans[0], spans[len(spans)-1]
	code := first.Node.Kind == dom.KindCodeBlock

	fitted := fitInlines(items, code)
	merged := m.tree.ExtractInlines(first.Start, start)
	merged = append(merged, fitted...)
	merged = append(merged, fitInlines(m.tree.ExtractInlines(end, last.End), code)...)

	tx := m.tree.Begin()
	defer tx.End()
	for i := len(spans) - 1; i >= 1; i-- {
		m.tree.Remove(spans[i].Handle)
	}
	m.rebuildSpan(first, merged)
	return inlineWidth(fitted)
}

// rebuildSpan swaps the block at sp for the same kind of block rebuilt
// around items. A quote emptied of content keeps one empty paragraph so
// the block itself survives.
func (m *treeModel) rebuildSpan(sp dom.BlockSpan, items []dom.Inline) {
	if sp.Handle.IsRoot() {
		m.tree.ReplaceSubtree(dom.RootHandle(), dom.NewContainer(dom.KindGeneric, dom.BuildInline(items)...))
		return
	}
	var fresh *dom.Node
	if sp.Node.Kind == dom.KindQuote && len(items) == 0 {
		fresh = dom.NewContainer(dom.KindQuote, dom.NewContainer(dom.KindParagraph))
	} else {
		fresh = dom.NewContainer(sp.Node.Kind, dom.BuildInline(items)...)
	}
	m.tree.ReplaceSubtree(sp.Handle, fresh)
}

func (m *treeModel) ReplaceText(text string) bool {
	start, end := m.snappedSel()
	return m.replaceAt(text, start, end)
}

func (m *treeModel) ReplaceTextIn(text string, start, end dom.Location) bool {
	start, end = m.tree.SnapInterval(start, end)
	return m.replaceAt(text, start, end)
}

func (m *treeModel) replaceAt(text string, start, end dom.Location) bool {
	if text == "" && start == end {
		return false
	}
	items := textInlines(text, m.insertAttrs(start))
	m.pushHistory()
	w := m.replaceSegment(start, end, items)
	m.setCursor(start + w)
	return true
}

func (m *treeModel) ReplaceTextSuggestion(text string, pat suggestion.Pattern) bool {
	start, end := m.tree.SnapInterval(pat.Start, pat.End)
	items := textInlines(text+" ", attrsInRange(m.tree, start, end))
	m.pushHistory()
	w := m.replaceSegment(start, end, items)
	m.setCursor(start + w)
	return true
}

func (m *treeModel) InsertMention(url, text string) bool {
	start, end := m.snappedSel()
	items := mentionInlines(url, text, attrsAt(m.tree, start), false)
	m.pushHistory()
	w := m.replaceSegment(start, end, items)
	m.setCursor(start + w)
	return true
}

func (m *treeModel) InsertMentionAtSuggestion(url, text string, pat suggestion.Pattern) bool {
	start, end := m.tree.SnapInterval(pat.Start, pat.End)
	items := mentionInlines(url, text, attrsInRange(m.tree, start, end), true)
	m.pushHistory()
	w := m.replaceSegment(start, end, items)
	m.setCursor(start + w)
	return true
}

// Enter splits the block at the caret. In code it types a literal
// newline instead, and on an empty list item it exits the list.
func (m *treeModel) Enter() bool {
	start, end := m.snappedSel()
	m.pushHistory()
	if start != end {
		m.replaceSegment(start, end, nil)
	}
	cur := start
	sp := m.tree.SpanAt(cur)
	switch {
	case sp.Node.Kind == dom.KindCodeBlock:
		m.replaceSegment(cur, cur, []dom.Inline{{Kind: dom.InlineText, Text: "\n"}})
		m.setCursor(cur + 1)
	case sp.Node.Kind == dom.KindListItem && sp.Start == sp.End:
		r, cLo, _ := regionFor(m.tree, cur, cur)
		m.rebuildRegion(r, listExited(dom.ShapeBlocks(m.tree, r.spans), cLo))
		m.setCursor(cur)
	default:
		r, cLo, _ := regionFor(m.tree, cur, cur)
		shapes := dom.ShapeBlocks(m.tree, r.spans)
		m.rebuildRegion(r, shapeSplit(shapes, cLo, cur-r.spans[cLo].Start))
		m.setCursor(cur + 1)
	}
	return true
}

func (m *treeModel) Backspace() bool {
	start, end := m.tree.ClampInterval(m.anchor, m.head)
	if start == end {
		if start == 0 {
			return false
		}
		start--
	}
	return m.deleteRange(start, end)
}

func (m *treeModel) DeleteForward() bool {
	start, end := m.tree.ClampInterval(m.anchor, m.head)
	if start == end {
		if end == m.tree.Len() {
			return false
		}
		end++
	}
	return m.deleteRange(start, end)
}

func (m *treeModel) deleteRange(start, end dom.Location) bool {
	start, end = m.tree.SnapInterval(start, end)
	if start == end {
		return false
	}
	m.pushHistory()
	m.replaceSegment(start, end, nil)
	m.setCursor(start)
	return true
}

// ToggleFormat applies or clears one inline format over the selection.
// At a caret the toggle goes pending and colors the next insertion.
func (m *treeModel) ToggleFormat(f dom.Format) bool {
	start, end := m.snappedSel()
	if start == end {
		m.pending = togglePendingFormat(m.pending, f)
		return false
	}
	items := formatItems(m.tree, start, end)
	if len(items) == 0 {
		return false
	}
	on := !dom.AllHave(items, f)
	m.pushHistory()
	m.mapSpans(start, end, func(a dom.Attrs) dom.Attrs {
		return a.With(f, on)
	})
	return true
}

// mapSpans rewrites the formatting of every covered run outside code
// blocks, block by block.
func (m *treeModel) mapSpans(start, end dom.Location, fn func(dom.Attrs) dom.Attrs) {
	tx := m.tree.Begin()
	defer tx.End()
	for _, sp := range m.tree.SpansIn(start, end) {
		if sp.Node.Kind == dom.KindCodeBlock {
			continue
		}
		s0, e0 := max(sp.Start, start), min(sp.End, end)
		if s0 >= e0 {
			continue
		}
		items := m.tree.ExtractInlines(sp.Start, s0)
		items = append(items, dom.MapAttrs(m.tree.ExtractInlines(s0, e0), fn)...)
		items = append(items, m.tree.ExtractInlines(e0, sp.End)...)
		m.rebuildSpan(sp, items)
	}
}

func (m *treeModel) SetLink(url string) bool {
	start, end := m.snappedSel()
	if start == end || url == "" {
		return false
	}
	if len(formatItems(m.tree, start, end)) == 0 {
		return false
	}
	m.pushHistory()
	m.mapSpans(start, end, func(a dom.Attrs) dom.Attrs {
		a.LinkURL = url
		return a
	})
	return true
}

func (m *treeModel) SetLinkWithText(url, text string) bool {
	if url == "" || text == "" {
		return false
	}
	start, end := m.snappedSel()
	attrs := attrsAt(m.tree, start)
	attrs.LinkURL = url
	items := []dom.Inline{{Kind: dom.InlineText, Text: text, Attrs: attrs}}
	m.pushHistory()
	w := m.replaceSegment(start, end, items)
	m.setCursor(start + w)
	return true
}

// RemoveLinks strips links from the selection; a caret strips the whole
// link it sits in. The selection stays where it was.
func (m *treeModel) RemoveLinks() bool {
	start, end := m.snappedSel()
	if start == end {
		var ok bool
		start, end, ok = linkExtent(m.tree, start)
		if !ok {
			return false
		}
	}
	linked := false
	for _, it := range m.tree.ExtractInlines(start, end) {
		if it.Attrs.LinkURL != "" {
			linked = true
			break
		}
	}
	if !linked {
		return false
	}
	m.pushHistory()
	m.mapSpans(start, end, func(a dom.Attrs) dom.Attrs {
		a.LinkURL = ""
		return a
	})
	return true
}

func (m *treeModel) ToggleOrderedList() bool   { return m.transformBlocks(orderedToggled) }
func (m *treeModel) ToggleUnorderedList() bool { return m.transformBlocks(unorderedToggled) }
func (m *treeModel) ToggleQuote() bool         { return m.transformBlocks(quoteToggled) }
func (m *treeModel) ToggleCodeBlock() bool     { return m.transformBlocks(codeToggled) }

func (m *treeModel) transformBlocks(transform func([]dom.BlockShape, int, int) []dom.BlockShape) bool {
	start, end := m.snappedSel()
	r, cLo, cHi := regionFor(m.tree, start, end)
	shapes := dom.ShapeBlocks(m.tree, r.spans)
	m.pushHistory()
	m.rebuildRegion(r, transform(shapes, cLo, cHi))
	return true
}

// InsertNodes splices parsed content at the selection. Inline-only
// content joins the surrounding text; block content splits the target
// block and lands between the halves.
func (m *treeModel) InsertNodes(nodes []*dom.Node) bool {
	start, end := m.snappedSel()
	if len(nodes) == 0 && start == end {
		return false
	}
	m.pushHistory()

	blocks := false
	for _, n := range nodes {
		if n.IsBlock() {
			blocks = true
			break
		}
	}
	if !blocks {
		w := m.replaceSegment(start, end, nodeInlines(nodes, dom.Attrs{}))
		m.setCursor(start + w)
		return true
	}

	if start != end {
		m.replaceSegment(start, end, nil)
	}
	cur := start
	before := m.tree.Len()
	r, cLo, _ := regionFor(m.tree, cur, cur)
	shapes := dom.ShapeBlocks(m.tree, r.spans)
	m.rebuildRegion(r, shapesSpliced(shapes, cLo, cur-r.spans[cLo].Start, forestShapes(nodes)))
	m.setCursor(cur + m.tree.Len() - before)
	return true
}

func (m *treeModel) SetContent(nodes []*dom.Node) {
	m.tree = dom.NewTreeWith(nodes...)
	m.history.Clear()
	m.pending = nil
	m.anchor, m.head = m.tree.Len(), m.tree.Len()
}

func (m *treeModel) Clear() {
	m.tree = dom.NewTree()
	m.history.Clear()
	m.pending = nil
	m.anchor, m.head = 0, 0
}

func (m *treeModel) Undo() bool {
	snap, err := m.history.Undo(m.snapshot())
	if err != nil {
		return false
	}
	m.restore(snap)
	return true
}

func (m *treeModel) Redo() bool {
	snap, err := m.history.Redo(m.snapshot())
	if err != nil {
		return false
	}
	m.restore(snap)
	return true
}

// region is the top-level slice of the document a structural command
// rebuilds: the root itself for flat content, or a run of the root's
// block children wide enough to hold every covered span's container.
type region struct {
	root   bool
	lo, hi int             // root child index range, inclusive
	spans  []dom.BlockSpan // spans inside the region, in document order
}

// regionFor widens [start, end) to whole top-level children and returns
// the covered span range relative to the region's span list.
func regionFor(t *dom.Tree, start, end dom.Location) (region, int, int) {
	all := t.BlockSpans()
	cLo, cHi := coveredShapes(all, start, end)
	if all[cLo].Handle.IsRoot() {
		return region{root: true, spans: all}, cLo, cHi
	}
	lo, hi := all[cLo].Handle[0], all[cHi].Handle[0]
	first := -1
	var spans []dom.BlockSpan
	for i, sp := range all {
		if sp.Handle[0] < lo || sp.Handle[0] > hi {
			continue
		}
		if first < 0 {
			first = i
		}
		spans = append(spans, sp)
	}
	return region{lo: lo, hi: hi, spans: spans}, cLo - first, cHi - first
}

func (m *treeModel) rebuildRegion(r region, shapes []dom.BlockShape) {
	nodes := dom.BuildBlocks(shapes)
	if r.root {
		m.tree.ReplaceSubtree(dom.RootHandle(), dom.NewContainer(dom.KindGeneric, nodes...))
		return
	}
	tx := m.tree.Begin()
	defer tx.End()
	root := dom.RootHandle()
	for i := r.hi; i >= r.lo; i-- {
		m.tree.Remove(root.Child(i))
	}
	for i, n := range nodes {
		m.tree.InsertChild(root, r.lo+i, n)
	}
}
