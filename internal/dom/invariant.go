package dom

import "fmt"

// The four structural invariants. A violation is a fatal programming error:
// it means an editing algorithm corrupted the tree, never that the caller
// passed bad input. Checks run at every externally observable point (after
// any mutation outside a transaction, and when the outermost transaction
// closes) and panic rather than continue with a corrupted tree.
//
//  1. Exactly one KindGeneric container exists and it is the root.
//  2. No text leaf is empty.
//  3. No two adjacent siblings are both text leaves.
//  4. Every container's children are homogeneously inline-level or
//     block-level, never mixed.

// AssertInvariants walks the whole tree and panics on the first violation.
func (t *Tree) AssertInvariants() {
	if t.root == nil || t.root.Kind != KindGeneric {
		panic("dom: invariant violated: root must be the generic container")
	}
	checkNode(t.root, RootHandle(), true)
}

func checkNode(n *Node, h Handle, isRoot bool) {
	if !isRoot && n.Kind == KindGeneric {
		panic(fmt.Sprintf("dom: invariant violated: generic container below the root at %s", h))
	}
	if n.Kind == KindText && n.Text == "" {
		panic(fmt.Sprintf("dom: invariant violated: empty text node at %s", h))
	}
	if n.IsLeaf() {
		if len(n.Children) != 0 {
			panic(fmt.Sprintf("dom: invariant violated: leaf with children at %s", h))
		}
		return
	}
	inline, block := 0, 0
	for i, c := range n.Children {
		if i > 0 && c.Kind == KindText && n.Children[i-1].Kind == KindText {
			panic(fmt.Sprintf("dom: invariant violated: adjacent text nodes at %s", h.Child(i)))
		}
		if c.IsBlock() {
			block++
		} else {
			inline++
		}
		checkNode(c, h.Child(i), false)
	}
	if inline > 0 && block > 0 {
		panic(fmt.Sprintf("dom: invariant violated: mixed inline and block children at %s", h))
	}
}
