package dom

import (
	"fmt"
	"strings"
)

// Location is an offset in code units into the flattened, structure-stripped
// text of a whole document. It is the single coordinate space every editing
// command uses, regardless of tree depth.
type Location = int

// Handle addresses a node as the path of child indices from the tree root.
// Handles are positional, not stable identities: any structural mutation
// elsewhere in the tree can invalidate a previously computed handle. A handle
// is valid only for the duration of the resolved operation that produced it
// and must be re-resolved after any mutation, never cached across edits.
type Handle []int

// RootHandle addresses the tree root.
func RootHandle() Handle { return Handle{} }

// IsRoot reports whether the handle addresses the root.
func (h Handle) IsRoot() bool { return len(h) == 0 }

// Clone returns an independent copy of the path.
func (h Handle) Clone() Handle {
	cp := make(Handle, len(h))
	copy(cp, h)
	return cp
}

// Child returns the handle of the i-th child.
func (h Handle) Child(i int) Handle {
	cp := make(Handle, len(h)+1)
	copy(cp, h)
	cp[len(h)] = i
	return cp
}

// Parent returns the handle of the parent, or the root handle for the root.
func (h Handle) Parent() Handle {
	if len(h) == 0 {
		return h
	}
	return h[:len(h)-1].Clone()
}

// Index returns the child index of the node within its parent, or -1 for
// the root.
func (h Handle) Index() int {
	if len(h) == 0 {
		return -1
	}
	return h[len(h)-1]
}

// Equal reports whether two handles address the same path.
func (h Handle) Equal(o Handle) bool {
	if len(h) != len(o) {
		return false
	}
	for i := range h {
		if h[i] != o[i] {
			return false
		}
	}
	return true
}

// Contains reports whether o addresses h itself or a descendant of h.
func (h Handle) Contains(o Handle) bool {
	if len(o) < len(h) {
		return false
	}
	for i := range h {
		if h[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the path as "0.2.1"; the root renders as "·".
func (h Handle) String() string {
	if len(h) == 0 {
		return "·"
	}
	parts := make([]string, len(h))
	for i, idx := range h {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return strings.Join(parts, ".")
}
