package dom

import "strings"

// Tree owns a document's node graph. The root is always the unique
// KindGeneric container; every other node is reachable from it through
// exactly one parent. Mutations address nodes by Handle.
//
// Outside an open transaction every mutation leaves the tree
// invariant-clean; see Begin for suspending checks across a multi-step edit.
type Tree struct {
	root *Node
	tx   int
}

// NewTree returns an empty document.
func NewTree() *Tree {
	return &Tree{root: &Node{Kind: KindGeneric}}
}

// NewTreeWith returns a document whose root holds the given children.
// The content is normalized before invariants are asserted.
func NewTreeWith(children ...*Node) *Tree {
	t := &Tree{root: &Node{Kind: KindGeneric, Children: children}}
	t.Normalize()
	t.assert()
	return t
}

// Root returns the root node. Callers walking the tree for reads may hold
// the pointer for the duration of one operation; structural writes must go
// through Tree methods so invariant checking stays accurate.
func (t *Tree) Root() *Node { return t.root }

// Node resolves a handle. The second result is false when the path does not
// address a node in the current tree shape.
func (t *Tree) Node(h Handle) (*Node, bool) {
	n := t.root
	for _, idx := range h {
		if idx < 0 || idx >= len(n.Children) {
			return nil, false
		}
		n = n.Children[idx]
	}
	return n, true
}

// Len returns the document length in code units, including the implicit
// boundary unit between adjacent blocks.
func (t *Tree) Len() int {
	return t.root.UnitLen()
}

// IsEmpty reports whether the document holds no content at all.
func (t *Tree) IsEmpty() bool {
	return len(t.root.Children) == 0
}

// PlainText returns the flattened text: block boundaries become "\n",
// line breaks "\n", mentions their display text.
func (t *Tree) PlainText() string {
	var b strings.Builder
	writePlain(&b, t.root)
	return b.String()
}

func writePlain(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindText:
		b.WriteString(n.Text)
		return
	case KindLineBreak:
		b.WriteByte('\n')
		return
	case KindMention:
		b.WriteString(n.Display)
		return
	}
	prevBlock := false
	for i, c := range n.Children {
		if i > 0 && prevBlock && c.IsBlock() {
			b.WriteByte('\n')
		}
		writePlain(b, c)
		prevBlock = c.IsBlock()
	}
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	return &Tree{root: t.root.Clone()}
}

// InsertChild inserts child under the parent handle at index i.
func (t *Tree) InsertChild(parent Handle, i int, child *Node) {
	p, ok := t.Node(parent)
	if !ok {
		panic("dom: insert through stale handle " + parent.String())
	}
	if i < 0 || i > len(p.Children) {
		panic("dom: insert index out of range")
	}
	p.InsertChild(i, child)
	t.assert()
}

// Remove removes the subtree at h and returns it. Removing the root is a
// programming error.
func (t *Tree) Remove(h Handle) *Node {
	if h.IsRoot() {
		panic("dom: cannot remove the root")
	}
	p, ok := t.Node(h.Parent())
	if !ok || h.Index() >= len(p.Children) {
		panic("dom: remove through stale handle " + h.String())
	}
	n := p.RemoveChild(h.Index())
	t.assert()
	return n
}

// ReplaceSubtree swaps the subtree at h for the given node. Replacing the
// root replaces its children instead, keeping the generic wrapper unique.
func (t *Tree) ReplaceSubtree(h Handle, n *Node) {
	if h.IsRoot() {
		if n.Kind == KindGeneric {
			t.root.Children = n.Children
		} else {
			t.root.Children = []*Node{n}
		}
		t.assert()
		return
	}
	p, ok := t.Node(h.Parent())
	if !ok || h.Index() >= len(p.Children) {
		panic("dom: replace through stale handle " + h.String())
	}
	p.Children[h.Index()] = n
	t.assert()
}

// SplitText splits the text leaf at h into two adjacent leaves at the given
// code-unit offset. Splitting at either edge is a no-op. Returns the number
// of leaves the node became (1 or 2).
//
// The split leaves two adjacent text siblings behind, so it is only legal
// inside an open transaction; the caller separates or consumes the halves
// before the transaction closes, or normalization re-merges them.
func (t *Tree) SplitText(h Handle, unit int) int {
	if t.tx == 0 {
		panic("dom: SplitText requires an open transaction")
	}
	n, ok := t.Node(h)
	if !ok || n.Kind != KindText {
		panic("dom: split of non-text node " + h.String())
	}
	total := UTF16Len(n.Text)
	if unit <= 0 || unit >= total {
		return 1
	}
	left := UTF16Slice(n.Text, 0, unit)
	right := UTF16Slice(n.Text, unit, total)
	p, _ := t.Node(h.Parent())
	n.Text = left
	p.InsertChild(h.Index()+1, NewText(right))
	return 2
}

// Transaction suspends invariant checking while a multi-step mutation is in
// flight. Closing it re-asserts all invariants. Transactions nest.
type Transaction struct {
	t      *Tree
	closed bool
}

// Begin opens a transaction.
func (t *Tree) Begin() *Transaction {
	t.tx++
	return &Transaction{t: t}
}

// End closes the transaction, normalizing the tree and re-asserting all
// invariants once the outermost transaction closes. End is idempotent so it
// can sit in a defer alongside early returns.
func (tx *Transaction) End() {
	if tx.closed {
		return
	}
	tx.closed = true
	tx.t.tx--
	if tx.t.tx == 0 {
		tx.t.Normalize()
		tx.t.AssertInvariants()
	}
}

// InTransaction reports whether a transaction is open.
func (t *Tree) InTransaction() bool { return t.tx > 0 }

// assert re-checks invariants unless a transaction is open.
func (t *Tree) assert() {
	if t.tx == 0 {
		t.AssertInvariants()
	}
}

// Normalize repairs the mechanical redundancies editing leaves behind:
// empty text leaves, adjacent text siblings, adjacent mergeable containers
// (same formatting, same link target, same list kind), and childless inline
// containers. Block containers that can legitimately be empty (paragraphs,
// list items, code blocks) are kept.
func (t *Tree) Normalize() {
	normalize(t.root)
}

func normalize(n *Node) {
	if n.IsLeaf() {
		return
	}
	for _, c := range n.Children {
		normalize(c)
	}
	out := n.Children[:0]
	for _, c := range n.Children {
		switch {
		case c.Kind == KindText && c.Text == "":
			continue
		case (c.Kind == KindFormatting || c.Kind == KindLink) && len(c.Children) == 0:
			continue
		case (c.Kind == KindList || c.Kind == KindQuote) && len(c.Children) == 0:
			continue
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.Kind == KindText && c.Kind == KindText {
				prev.Text += c.Text
				continue
			}
			if !prev.IsLeaf() && !c.IsLeaf() && prev.SameContainer(c) && mergeableKind(c.Kind) {
				prev.Children = append(prev.Children, c.Children...)
				normalize(prev)
				continue
			}
		}
		out = append(out, c)
	}
	n.Children = out
}

// mergeableKind lists containers normalization may fuse when adjacent twins
// appear. Paragraphs and quotes stay separate; two paragraphs side by side
// are distinct blocks, not a redundancy.
func mergeableKind(k NodeKind) bool {
	switch k {
	case KindFormatting, KindLink, KindList:
		return true
	}
	return false
}
