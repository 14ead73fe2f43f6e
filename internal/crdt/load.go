package crdt

import (
	"github.com/dshills/quill/internal/dom"
)

// LoadTree replaces the visible document with the tree's content. The
// replacement is expressed as ordinary ops (tombstone everything, then
// insert), so remote replicas receiving the outbound buffer converge on
// the same document instead of forking.
func (m *Model) LoadTree(t *dom.Tree) {
	m.DeleteRange(0, m.VisibleLen())

	shapes := dom.ShapeBlocks(t, t.BlockSpans())
	loc := 0
	for i, sh := range shapes {
		desc := DescForShape(sh)
		if i == 0 {
			m.SetHead(desc)
		} else {
			m.InsertBoundary(loc, desc)
			loc++
		}

		for _, item := range sh.Items {
			switch item.Kind {
			case dom.InlineText:
				m.InsertText(loc, item.Text, item.Attrs)
			case dom.InlineBreak:
				m.InsertBreak(loc, item.Attrs)
			case dom.InlineMention:
				m.InsertMention(loc, item.URL, item.Display, item.Attrs)
			}
			loc += item.UnitLen()
		}
	}
}
