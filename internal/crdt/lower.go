package crdt

import (
	"unicode/utf16"

	"github.com/dshills/quill/internal/dom"
)

// Tree lowers the visible sequence into a document tree through the
// canonical block and inline rebuild. The flat code-unit space of the
// result is identical to the sequence's: every visible element is one
// unit, boundaries included.
func (m *Model) Tree() *dom.Tree {
	return dom.NewTreeWith(dom.BuildBlocks(m.shapes())...)
}

// shapes converts the visible sequence into block shapes: one shape per
// block, adjacent text elements with equal flattened attributes merged
// into single runs.
func (m *Model) shapes() []dom.BlockShape {
	shapes := []dom.BlockShape{ShapeForDesc(m.head)}

	var units []uint16
	var unitAttrs dom.Attrs
	flush := func() {
		if len(units) == 0 {
			return
		}
		cur := &shapes[len(shapes)-1]
		cur.Items = append(cur.Items, dom.Inline{
			Kind:  dom.InlineText,
			Text:  string(utf16.Decode(units)),
			Attrs: unitAttrs,
		})
		units = units[:0]
	}

	for _, el := range m.elements {
		if el.Vis.Deleted {
			continue
		}
		switch el.Kind {
		case ElemBoundary:
			flush()
			shapes = append(shapes, ShapeForDesc(el.Desc))
		case ElemText:
			attrs := el.Styles.Attrs()
			if len(units) > 0 && attrs != unitAttrs {
				flush()
			}
			unitAttrs = attrs
			units = append(units, el.Unit)
		case ElemBreak:
			flush()
			cur := &shapes[len(shapes)-1]
			cur.Items = append(cur.Items, dom.Inline{Kind: dom.InlineBreak, Attrs: el.Styles.Attrs()})
		case ElemMention:
			flush()
			cur := &shapes[len(shapes)-1]
			cur.Items = append(cur.Items, dom.Inline{
				Kind:    dom.InlineMention,
				URL:     el.URL,
				Display: el.Display,
				Attrs:   el.Styles.Attrs(),
			})
		}
	}
	flush()
	return shapes
}

// ShapeForDesc converts a block descriptor to an empty shape.
func ShapeForDesc(d BlockDesc) dom.BlockShape {
	sh := dom.BlockShape{
		InQuote:  d.InQuote,
		NewQuote: d.NewQuote,
		Ordered:  d.Ordered,
		Depth:    d.Depth,
	}
	switch d.Kind {
	case BlockParagraph:
		sh.Kind = dom.KindParagraph
	case BlockQuote:
		sh.Kind = dom.KindQuote
	case BlockCode:
		sh.Kind = dom.KindCodeBlock
	case BlockListItem:
		sh.Kind = dom.KindListItem
	default:
		sh.Kind = dom.KindGeneric
	}
	return sh
}

// DescForShape converts a block shape to its replicated descriptor.
func DescForShape(sh dom.BlockShape) BlockDesc {
	d := BlockDesc{
		InQuote:  sh.InQuote,
		NewQuote: sh.NewQuote,
		Ordered:  sh.Ordered,
		Depth:    sh.Depth,
	}
	switch sh.Kind {
	case dom.KindParagraph:
		d.Kind = BlockParagraph
	case dom.KindQuote:
		d.Kind = BlockQuote
	case dom.KindCodeBlock:
		d.Kind = BlockCode
	case dom.KindListItem:
		d.Kind = BlockListItem
	default:
		d.Kind = BlockGeneric
	}
	return d
}
