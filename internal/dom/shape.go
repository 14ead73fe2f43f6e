package dom

import "strings"

// BlockShape is one line-like block in flattened form: the block's
// descriptor plus its inline content as runs. Shapes are the block-level
// counterpart of Inline: ShapeBlocks flattens a tree into them and
// BuildBlocks reassembles nodes, so edits that restructure blocks can
// work on a flat list instead of rewriting nested containers in place.
type BlockShape struct {
	// Kind is KindParagraph, KindQuote (a quote holding inline content
	// directly), KindCodeBlock, KindListItem, or KindGeneric for a root
	// holding inline content without any block structure.
	Kind NodeKind
	// InQuote marks a shape nested under a quote container.
	InQuote bool
	// NewQuote marks a quoted shape that opens a fresh quote container
	// even when the shape before it is also quoted.
	NewQuote bool
	// Ordered and Depth describe the enclosing lists of a KindListItem.
	Ordered bool
	Depth   int
	// Items is the shape's flattened inline content.
	Items []Inline
}

// UnitLen returns the shape's content width in code units.
func (sh BlockShape) UnitLen() int {
	n := 0
	for _, it := range sh.Items {
		n += it.UnitLen()
	}
	return n
}

// Text flattens the shape's items to plain text, formatting discarded:
// breaks become "\n", mentions their display text.
func (sh BlockShape) Text() string {
	var b strings.Builder
	for _, it := range sh.Items {
		switch it.Kind {
		case InlineText:
			b.WriteString(it.Text)
		case InlineBreak:
			b.WriteByte('\n')
		case InlineMention:
			b.WriteString(it.Display)
		}
	}
	return b.String()
}

// ShapeBlocks flattens the given spans of a tree into shapes, in order.
// Passing t.BlockSpans() flattens the whole document.
func ShapeBlocks(t *Tree, spans []BlockSpan) []BlockShape {
	shapes := make([]BlockShape, 0, len(spans))
	var prevQuote Handle
	for _, s := range spans {
		sh := BlockShape{InQuote: s.InQuote, Items: t.ExtractInlines(s.Start, s.End)}
		switch s.Node.Kind {
		case KindParagraph, KindQuote, KindCodeBlock, KindListItem:
			sh.Kind = s.Node.Kind
		default:
			sh.Kind = KindGeneric
		}
		if sh.Kind == KindListItem {
			sh.Ordered = s.Ordered
			sh.Depth = s.ListDepth
		}
		if s.InQuote {
			qa, ok := quoteAncestor(t, s.Handle)
			sh.NewQuote = !ok || prevQuote == nil || !qa.Equal(prevQuote)
			prevQuote = qa
		} else {
			prevQuote = nil
		}
		shapes = append(shapes, sh)
	}
	return shapes
}

// quoteAncestor finds the outermost quote container above the handle.
func quoteAncestor(t *Tree, h Handle) (Handle, bool) {
	for i := 1; i <= len(h); i++ {
		n, ok := t.Node(h[:i])
		if ok && n.Kind == KindQuote {
			return h[:i].Clone(), true
		}
	}
	return nil, false
}

// BuildBlocks reassembles shapes into block nodes: consecutive quoted
// shapes group under one quote (split at NewQuote marks), list items nest
// by depth, everything else maps one shape to one container. A single
// generic shape yields bare inline nodes, the inline-root document form.
func BuildBlocks(shapes []BlockShape) []*Node {
	if len(shapes) == 1 && shapes[0].Kind == KindGeneric {
		return BuildInline(shapes[0].Items)
	}
	var out []*Node
	i := 0
	for i < len(shapes) {
		if !shapes[i].InQuote {
			j := i
			for j < len(shapes) && !shapes[j].InQuote {
				j++
			}
			out = append(out, buildShapeRun(shapes[i:j])...)
			i = j
			continue
		}
		j := i + 1
		for j < len(shapes) && shapes[j].InQuote && !shapes[j].NewQuote {
			j++
		}
		out = append(out, NewContainer(KindQuote, buildShapeRun(shapes[i:j])...))
		i = j
	}
	return out
}

// buildShapeRun rebuilds a run of shapes sharing one quote scope.
func buildShapeRun(shapes []BlockShape) []*Node {
	var out []*Node

	type openList struct {
		node    *Node
		depth   int
		ordered bool
	}
	var stack []openList

	for _, sh := range shapes {
		if sh.Kind != KindListItem {
			stack = stack[:0]
			out = append(out, standaloneShape(sh))
			continue
		}

		depth := sh.Depth
		if depth < 1 {
			depth = 1
		}
		for len(stack) > 0 && stack[len(stack)-1].depth > depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 && stack[len(stack)-1].depth == depth && stack[len(stack)-1].ordered != sh.Ordered {
			stack = stack[:len(stack)-1]
		}
		for len(stack) == 0 || stack[len(stack)-1].depth < depth {
			at := 1
			if len(stack) > 0 {
				at = stack[len(stack)-1].depth + 1
			}
			list := NewList(sh.Ordered)
			if len(stack) == 0 {
				out = append(out, list)
			} else {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, list)
			}
			stack = append(stack, openList{node: list, depth: at, ordered: sh.Ordered})
		}
		item := NewContainer(KindListItem, BuildInline(sh.Items)...)
		top := stack[len(stack)-1].node
		top.Children = append(top.Children, item)
	}
	return out
}

// standaloneShape rebuilds one non-list shape.
func standaloneShape(sh BlockShape) *Node {
	switch sh.Kind {
	case KindQuote:
		children := BuildInline(sh.Items)
		if len(children) == 0 {
			// A childless quote would normalize away and shift every
			// later offset; keep an empty paragraph inside it instead.
			return NewContainer(KindQuote, NewContainer(KindParagraph))
		}
		return NewContainer(KindQuote, children...)
	case KindCodeBlock:
		text := sh.Text()
		if text == "" {
			return NewContainer(KindCodeBlock)
		}
		return NewContainer(KindCodeBlock, NewText(text))
	default:
		return NewContainer(KindParagraph, BuildInline(sh.Items)...)
	}
}
