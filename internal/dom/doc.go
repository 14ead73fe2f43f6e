// Package dom provides the document tree every composer backend edits and
// renders: a hierarchy of block and inline nodes addressed both
// structurally, by child-index paths, and flatly, by UTF-16 code-unit
// offsets.
//
// The dom package provides:
//
//   - Node, the single tree node type covering text, line breaks,
//     mentions, formatting and link wrappers, and block containers
//   - Handle, a child-index path addressing a node within a tree
//   - Location, a flat UTF-16 code-unit offset into the whole document
//   - Tree, the container tying invariant checking, normalization, and
//     coordinate resolution together
//   - Inline, the flattened run form shared by editing, projection, and
//     replication
//
// Coordinate Model:
//
// External callers address the document in UTF-16 code units, the unit of
// the platform text APIs the composer serves. A text leaf contributes the
// UTF-16 length of its contents, line breaks and mentions contribute one
// unit each, and each pair of adjacent sibling blocks contributes one
// implicit boundary unit, so the flat document reads as its line-like
// regions joined by newlines. Resolve maps a flat interval back onto the
// leaves it covers; InsertionPoint places a collapsed cursor.
//
// Structural Invariants:
//
// Normalize repairs what edits may denormalize (empty text leaves,
// mergeable sibling wrappers); AssertInvariants panics on what edits must
// never produce:
//
//   - a generic container anywhere below the root
//   - an empty text leaf
//   - a leaf node with children
//   - adjacent text siblings
//   - a container mixing block and inline children
//
// Mutations go through a Transaction, which defers both passes until the
// outermost End, so multi-step edits may pass through denormalized
// intermediate states:
//
//	tx := t.Begin()
//	t.InsertChild(parent, i, node)
//	t.Remove(other)
//	tx.End()
//
// Inline Runs:
//
// ExtractInlines flattens a region into runs of text with attributes;
// BuildInline reassembles runs into nodes, nesting wrappers in a fixed
// canonical order. Editing operations that restyle a region round-trip it
// through runs, so equal content always yields equal structure no matter
// which sequence of edits produced it.
package dom
