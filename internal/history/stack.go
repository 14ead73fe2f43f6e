package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/quill/internal/dom"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Snapshot captures composer state at one point in time: the document,
// the raw selection, and any pending formats.
type Snapshot struct {
	Tree    *dom.Tree
	Anchor  dom.Location
	Head    dom.Location
	Pending []dom.Format
}

// Clone deep-copies the snapshot so later edits cannot reach back into it.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Tree != nil {
		out.Tree = s.Tree.Clone()
	}
	if s.Pending != nil {
		out.Pending = append([]dom.Format(nil), s.Pending...)
	}
	return out
}

// entry wraps a snapshot with metadata.
type entry struct {
	snapshot  Snapshot
	timestamp time.Time
}

// Stack manages undo/redo state for a composer.
type Stack struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// maxEntries <= 0 means unbounded.
	maxEntries int
}

// NewStack creates a new history stack. maxEntries limits the undo depth;
// zero or negative keeps everything.
func NewStack(maxEntries int) *Stack {
	return &Stack{maxEntries: maxEntries}
}

// Push records a snapshot taken before a mutating operation.
// Clears the redo stack. The snapshot should already be a deep copy.
func (s *Stack) Push(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undoStack = append(s.undoStack, &entry{
		snapshot:  snap,
		timestamp: time.Now(),
	})

	s.redoStack = nil

	if s.maxEntries > 0 && len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		s.undoStack = s.undoStack[excess:]
	}
}

// Undo pops the most recent snapshot, parking the current state on the
// redo stack. Returns ErrNothingToUndo when the stack is empty.
func (s *Stack) Undo(current Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undoStack) == 0 {
		return Snapshot{}, ErrNothingToUndo
	}

	top := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]

	s.redoStack = append(s.redoStack, &entry{
		snapshot:  current,
		timestamp: time.Now(),
	})
	return top.snapshot, nil
}

// Redo pops the most recently undone snapshot, parking the current state
// back on the undo stack. Returns ErrNothingToRedo when nothing was undone.
func (s *Stack) Redo(current Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redoStack) == 0 {
		return Snapshot{}, ErrNothingToRedo
	}

	top := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]

	s.undoStack = append(s.undoStack, &entry{
		snapshot:  current,
		timestamp: time.Now(),
	})
	return top.snapshot, nil
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// RedoCount returns the number of redo entries available.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack)
}

// Clear removes all undo/redo history.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undoStack = nil
	s.redoStack = nil
}

// SetMaxEntries changes the undo depth limit. If the current stack is
// larger, oldest entries are removed. Zero or negative lifts the limit.
func (s *Stack) SetMaxEntries(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxEntries = max

	if max > 0 && len(s.undoStack) > max {
		excess := len(s.undoStack) - max
		s.undoStack = s.undoStack[excess:]
	}
}

// MaxEntries returns the undo depth limit, zero meaning unbounded.
func (s *Stack) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}
