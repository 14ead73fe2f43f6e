package dom

// Segment names one leaf covered by a resolved interval, with the covered
// portion in the leaf's own code-unit coordinates.
type Segment struct {
	Handle Handle
	Leaf   *Node
	// Start is the document offset of the leaf's first unit.
	Start Location
	// UnitLen is the full length of the leaf.
	UnitLen int
	// LocalStart and LocalEnd delimit the covered portion within the leaf.
	LocalStart int
	LocalEnd   int
}

// Covered reports whether the interval covers the whole leaf.
func (s Segment) Covered() bool {
	return s.LocalStart == 0 && s.LocalEnd == s.UnitLen
}

// Text returns the covered portion of a text leaf.
func (s Segment) Text() string {
	if s.Leaf.Kind != KindText {
		return ""
	}
	return UTF16Slice(s.Leaf.Text, s.LocalStart, s.LocalEnd)
}

// Range is the structural form of a flat [start, end) interval: the ordered
// leaf segments it touches. Segments hold handles, so a Range is valid only
// until the next mutation.
type Range struct {
	Start    Location
	End      Location
	Segments []Segment
}

// IsEmpty reports whether the range covers no leaves.
func (r Range) IsEmpty() bool { return len(r.Segments) == 0 }

// Resolve maps the flat interval [start, end) onto leaf segments, in
// document order. Both ends are clamped to [0, Len] and swapped if reversed.
// A collapsed interval resolves to no segments; cursor placement goes
// through InsertionPoint instead.
func (t *Tree) Resolve(start, end Location) Range {
	start, end = t.ClampInterval(start, end)
	r := Range{Start: start, End: end}
	if start == end {
		return r
	}
	collectSegments(t.root, RootHandle(), 0, start, end, &r.Segments)
	return r
}

// ClampInterval clamps both ends to the document and orders them.
func (t *Tree) ClampInterval(start, end Location) (Location, Location) {
	n := t.Len()
	start = clampLoc(start, n)
	end = clampLoc(end, n)
	if start > end {
		start, end = end, start
	}
	return start, end
}

// SnapInterval clamps and orders the interval, then moves either end off
// the middle of a surrogate pair: the start back to the pair's first unit,
// the end forward past its last, so edits cover whole pairs. A collapsed
// interval stays collapsed, snapping to the pair start.
func (t *Tree) SnapInterval(start, end Location) (Location, Location) {
	start, end = t.ClampInterval(start, end)
	if start == end {
		s := t.snapLoc(start, false)
		return s, s
	}
	return t.snapLoc(start, false), t.snapLoc(end, true)
}

// snapLoc moves a location off the middle of a surrogate pair, backward to
// the pair start or forward past its end.
func (t *Tree) snapLoc(loc Location, forward bool) Location {
	p := t.InsertionPoint(loc)
	if !p.InText() {
		return loc
	}
	n, ok := t.Node(p.Text)
	if !ok {
		return loc
	}
	floor, width := pairFloor(n.Text, p.TextOffset)
	if floor == p.TextOffset {
		return loc
	}
	if forward {
		return loc - p.TextOffset + floor + width
	}
	return loc - p.TextOffset + floor
}

func clampLoc(l Location, n int) Location {
	if l < 0 {
		return 0
	}
	if l > n {
		return n
	}
	return l
}

// collectSegments walks the subtree rooted at n, whose content begins at
// document offset off, appending every leaf intersecting [start, end).
// Returns the offset just past n's content.
func collectSegments(n *Node, h Handle, off, start, end Location, out *[]Segment) Location {
	if n.IsLeaf() {
		l := n.UnitLen()
		if off < end && off+l > start {
			seg := Segment{
				Handle:     h,
				Leaf:       n,
				Start:      off,
				UnitLen:    l,
				LocalStart: 0,
				LocalEnd:   l,
			}
			if start > off {
				seg.LocalStart = start - off
			}
			if end < off+l {
				seg.LocalEnd = end - off
			}
			*out = append(*out, seg)
		}
		return off + l
	}
	prevBlock := false
	for i, c := range n.Children {
		if i > 0 && prevBlock && c.IsBlock() {
			off++ // block boundary unit
		}
		off = collectSegments(c, h.Child(i), off, start, end, out)
		prevBlock = c.IsBlock()
	}
	return off
}

// InsertionPoint names where new content enters the tree for a collapsed
// cursor: either inside a text leaf at a local offset, or between the
// children of a container.
type InsertionPoint struct {
	// Parent is the container receiving the insertion.
	Parent Handle
	// Index is the child slot at which new nodes go in.
	Index int
	// Text addresses the text leaf the point falls inside, if any; when set,
	// Index is that leaf's own index and TextOffset its local split point.
	Text       Handle
	TextOffset int
}

// InText reports whether the point falls inside a text leaf.
func (p InsertionPoint) InText() bool { return p.Text != nil }

// InsertionPoint resolves a collapsed cursor location to its insertion
// slot. A location at the seam of two inline siblings attaches to the
// earlier one, so typing continues the preceding formatting run, matching
// what the block-end rule does for typing at the end of a paragraph.
func (t *Tree) InsertionPoint(loc Location) InsertionPoint {
	loc = clampLoc(loc, t.Len())
	return insertionIn(t.root, RootHandle(), loc)
}

// insertionIn locates loc within container n; loc is relative to n's
// content and satisfies 0 <= loc <= n.UnitLen().
func insertionIn(n *Node, h Handle, loc int) InsertionPoint {
	off := 0
	prevBlock := false
	for i, c := range n.Children {
		if i > 0 && prevBlock && c.IsBlock() {
			off++
		}
		cl := c.UnitLen()
		if loc < off+cl || (loc == off+cl && capturesEnd(c)) {
			switch c.Kind {
			case KindText:
				return InsertionPoint{Parent: h.Clone(), Index: i, Text: h.Child(i), TextOffset: loc - off}
			case KindLineBreak, KindMention:
				return InsertionPoint{Parent: h.Clone(), Index: i}
			default:
				return insertionIn(c, h.Child(i), loc-off)
			}
		}
		off += cl
		prevBlock = c.IsBlock()
	}
	return InsertionPoint{Parent: h.Clone(), Index: len(n.Children)}
}

// capturesEnd reports whether a cursor sitting exactly at the node's end
// belongs inside it. Text and containers absorb their trailing position;
// atomic leaves cannot.
func capturesEnd(n *Node) bool {
	switch n.Kind {
	case KindLineBreak, KindMention:
		return false
	}
	return true
}

// AttrsAt flattens the formatting state inherited by the node at h from its
// ancestor chain (the node's own wrapper included when it is a formatting
// or link container).
func (t *Tree) AttrsAt(h Handle) Attrs {
	var a Attrs
	n := t.root
	for _, idx := range h {
		if idx < 0 || idx >= len(n.Children) {
			return a
		}
		n = n.Children[idx]
		switch n.Kind {
		case KindFormatting:
			a = a.With(n.Format, true)
		case KindLink:
			a.LinkURL = n.URL
		}
	}
	return a
}
