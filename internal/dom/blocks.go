package dom

// BlockSpan is one line-like region of the document: a container holding
// inline content directly, located both structurally and by its flat
// interval. Consecutive spans are always separated by exactly one boundary
// unit, so the document reads as the spans' contents joined by newlines.
type BlockSpan struct {
	Handle Handle
	Node   *Node
	Start  Location
	End    Location
	// InQuote is set for spans nested under a quote container.
	InQuote bool
	// ListDepth counts enclosing lists; zero outside any list.
	ListDepth int
	// Ordered reflects the innermost enclosing list when ListDepth > 0.
	Ordered bool
}

// Contains reports whether the flat location falls inside the span's
// content, its end position included.
func (b BlockSpan) Contains(loc Location) bool {
	return loc >= b.Start && loc <= b.End
}

// BlockSpans lists the document's line-like regions in order. A tree whose
// root holds inline content directly yields a single span addressing the
// root itself. Quote and list containers never appear as spans; they
// contribute nesting flags to the spans inside them, except that a quote
// holding inline content directly is itself a span.
func (t *Tree) BlockSpans() []BlockSpan {
	if len(t.root.Children) == 0 || !t.root.Children[0].IsBlock() {
		return []BlockSpan{{
			Handle: RootHandle(),
			Node:   t.root,
			Start:  0,
			End:    t.root.UnitLen(),
		}}
	}
	var spans []BlockSpan
	walkSpans(t.root, RootHandle(), 0, spanScope{}, &spans)
	return spans
}

// SpanAt returns the span containing the flat location. Locations on a
// boundary unit belong to the preceding span's end.
func (t *Tree) SpanAt(loc Location) BlockSpan {
	spans := t.BlockSpans()
	for i, s := range spans {
		if loc <= s.End || i == len(spans)-1 {
			return s
		}
	}
	return spans[len(spans)-1]
}

// SpansIn returns the spans whose content intersects [start, end), the
// span holding a collapsed cursor included.
func (t *Tree) SpansIn(start, end Location) []BlockSpan {
	start, end = t.ClampInterval(start, end)
	spans := t.BlockSpans()
	var out []BlockSpan
	for _, s := range spans {
		if s.Start > end {
			break
		}
		if s.End >= start {
			out = append(out, s)
		}
	}
	return out
}

type spanScope struct {
	inQuote   bool
	listDepth int
	ordered   bool
}

// walkSpans visits the block children of container n, recording leaf
// blocks as spans and descending through grouping containers. Returns the
// offset just past n's content.
func walkSpans(n *Node, h Handle, off Location, scope spanScope, out *[]BlockSpan) Location {
	prevBlock := false
	for i, c := range n.Children {
		if i > 0 && prevBlock && c.IsBlock() {
			off++
		}
		ch := h.Child(i)
		switch c.Kind {
		case KindQuote:
			if hasBlockChildren(c) {
				inner := scope
				inner.inQuote = true
				off = walkSpans(c, ch, off, inner, out)
			} else {
				off = appendSpan(c, ch, off, scope, out)
			}
		case KindList:
			inner := scope
			inner.listDepth++
			inner.ordered = c.Ordered
			off = walkSpans(c, ch, off, inner, out)
		default:
			off = appendSpan(c, ch, off, scope, out)
		}
		prevBlock = c.IsBlock()
	}
	return off
}

func appendSpan(c *Node, h Handle, off Location, scope spanScope, out *[]BlockSpan) Location {
	l := c.UnitLen()
	*out = append(*out, BlockSpan{
		Handle:    h,
		Node:      c,
		Start:     off,
		End:       off + l,
		InQuote:   scope.inQuote,
		ListDepth: scope.listDepth,
		Ordered:   scope.Ordered(),
	})
	return off + l
}

func (s spanScope) Ordered() bool { return s.listDepth > 0 && s.ordered }

func hasBlockChildren(n *Node) bool {
	return len(n.Children) > 0 && n.Children[0].IsBlock()
}
