// Package history provides snapshot-based undo/redo for the composer.
//
// Instead of replayable commands, the stack stores deep Snapshot values
// (document tree, raw selection, pending formats) taken immediately
// before each mutating operation:
//
//	stack := NewStack(0) // unbounded
//
//	stack.Push(current.Clone())
//	// ... mutate ...
//
//	restored, err := stack.Undo(current.Clone())
//	restored, err = stack.Redo(current.Clone())
//
// Undo and Redo exchange the caller's current state for the stored one,
// so redo always returns to the exact pre-undo state, selection included.
// Any new Push clears the redo stack.
package history
