package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/quill/internal/dom"
)

func snap(text string, anchor, head dom.Location) Snapshot {
	return Snapshot{
		Tree:   dom.NewTreeWith(dom.NewText(text)),
		Anchor: anchor,
		Head:   head,
	}
}

func TestUndoRestoresSnapshot(t *testing.T) {
	s := NewStack(0)
	s.Push(snap("before", 0, 6))

	restored, err := s.Undo(snap("after", 5, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := restored.Tree.PlainText(); got != "before" {
		t.Errorf("expected %q, got %q", "before", got)
	}
	if restored.Anchor != 0 || restored.Head != 6 {
		t.Errorf("expected selection (0,6), got (%d,%d)", restored.Anchor, restored.Head)
	}
}

func TestRedoReturnsPreUndoState(t *testing.T) {
	s := NewStack(0)
	s.Push(snap("v1", 0, 0))

	_, err := s.Undo(snap("v2", 2, 2))
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	restored, err := s.Redo(snap("v1", 0, 0))
	if err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if got := restored.Tree.PlainText(); got != "v2" {
		t.Errorf("expected %q, got %q", "v2", got)
	}
	if restored.Anchor != 2 || restored.Head != 2 {
		t.Errorf("expected selection (2,2), got (%d,%d)", restored.Anchor, restored.Head)
	}
}

func TestUndoEmpty(t *testing.T) {
	s := NewStack(0)
	_, err := s.Undo(snap("x", 0, 0))
	if !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestRedoEmpty(t *testing.T) {
	s := NewStack(0)
	_, err := s.Redo(snap("x", 0, 0))
	if !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestPushClearsRedo(t *testing.T) {
	s := NewStack(0)
	s.Push(snap("v1", 0, 0))
	if _, err := s.Undo(snap("v2", 0, 0)); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if !s.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}

	s.Push(snap("v3", 0, 0))
	if s.CanRedo() {
		t.Error("expected push to clear the redo stack")
	}
}

func TestMaxEntriesDropsOldest(t *testing.T) {
	s := NewStack(3)
	for i := 0; i < 5; i++ {
		s.Push(snap(fmt.Sprintf("v%d", i), 0, 0))
	}
	if got := s.UndoCount(); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}

	restored, err := s.Undo(snap("current", 0, 0))
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := restored.Tree.PlainText(); got != "v4" {
		t.Errorf("expected newest survivor %q, got %q", "v4", got)
	}
}

func TestUnboundedStack(t *testing.T) {
	s := NewStack(0)
	for i := 0; i < 2000; i++ {
		s.Push(snap("x", 0, 0))
	}
	if got := s.UndoCount(); got != 2000 {
		t.Errorf("expected 2000 entries, got %d", got)
	}
}

func TestSetMaxEntriesTrims(t *testing.T) {
	s := NewStack(0)
	for i := 0; i < 10; i++ {
		s.Push(snap(fmt.Sprintf("v%d", i), 0, 0))
	}
	s.SetMaxEntries(4)
	if got := s.UndoCount(); got != 4 {
		t.Errorf("expected 4 entries after trim, got %d", got)
	}
}

func TestClear(t *testing.T) {
	s := NewStack(0)
	s.Push(snap("v1", 0, 0))
	if _, err := s.Undo(snap("v2", 0, 0)); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	s.Push(snap("v3", 0, 0))

	s.Clear()
	if s.CanUndo() || s.CanRedo() {
		t.Error("expected empty stacks after Clear")
	}
}

func TestSnapshotCloneIsolation(t *testing.T) {
	orig := snap("shared", 0, 0)
	orig.Pending = []dom.Format{dom.FormatBold}

	cp := orig.Clone()

	n, ok := orig.Tree.Node(dom.Handle{0})
	if !ok {
		t.Fatal("expected text leaf in original")
	}
	n.Text = "mutated"
	orig.Pending[0] = dom.FormatItalic

	if got := cp.Tree.PlainText(); got != "shared" {
		t.Errorf("clone tree changed: %q", got)
	}
	if cp.Pending[0] != dom.FormatBold {
		t.Errorf("clone pending changed: %v", cp.Pending[0])
	}
}

func TestCounts(t *testing.T) {
	s := NewStack(0)
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("expected empty stack")
	}
	s.Push(snap("a", 0, 0))
	s.Push(snap("b", 0, 0))
	if got := s.UndoCount(); got != 2 {
		t.Errorf("expected undo count 2, got %d", got)
	}
	if _, err := s.Undo(snap("c", 0, 0)); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := s.RedoCount(); got != 1 {
		t.Errorf("expected redo count 1, got %d", got)
	}
}
