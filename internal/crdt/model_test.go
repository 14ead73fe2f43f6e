package crdt

import (
	"testing"

	"github.com/dshills/quill/internal/dom"
)

func plain(t *testing.T, m *Model) string {
	t.Helper()
	return m.Tree().PlainText()
}

func TestInsertTextAndLen(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "hello", dom.Attrs{})
	if got := plain(t, m); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if got := m.VisibleLen(); got != 5 {
		t.Errorf("expected length 5, got %d", got)
	}
	if got := m.Tree().Len(); got != 5 {
		t.Errorf("expected tree length 5, got %d", got)
	}
}

func TestInsertTextMiddle(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "ad", dom.Attrs{})
	m.InsertText(1, "bc", dom.Attrs{})
	if got := plain(t, m); got != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", got)
	}
}

func TestInsertSurrogatePair(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "a\U0001F44Db", dom.Attrs{})
	if got := m.VisibleLen(); got != 4 {
		t.Errorf("expected 4 code units, got %d", got)
	}
	if got := plain(t, m); got != "a\U0001F44Db" {
		t.Errorf("expected emoji to survive, got %q", got)
	}
}

func TestDeleteRange(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "abcd", dom.Attrs{})
	m.DeleteRange(1, 3)
	if got := plain(t, m); got != "ad" {
		t.Errorf("expected %q, got %q", "ad", got)
	}
	if got := m.VisibleLen(); got != 2 {
		t.Errorf("expected length 2, got %d", got)
	}
}

func TestInsertAfterDelete(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "abcd", dom.Attrs{})
	m.DeleteRange(1, 3)
	m.InsertText(1, "X", dom.Attrs{})
	if got := plain(t, m); got != "aXd" {
		t.Errorf("expected %q, got %q", "aXd", got)
	}
}

func TestStyledInsertLowering(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "ab", dom.Attrs{Bold: true})
	want := dom.DebugTree(dom.NewTreeWith(dom.NewFormatting(dom.FormatBold, dom.NewText("ab"))))
	if got := dom.DebugTree(m.Tree()); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestSetStyleRange(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "abc", dom.Attrs{})
	m.SetStyleRange(1, 2, FieldBold, true, "")
	want := dom.DebugTree(dom.NewTreeWith(
		dom.NewText("a"),
		dom.NewFormatting(dom.FormatBold, dom.NewText("b")),
		dom.NewText("c"),
	))
	if got := dom.DebugTree(m.Tree()); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestLinkStyleLowering(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "site", dom.Attrs{})
	m.SetStyleRange(0, 4, FieldLink, true, "https://example.org")
	want := dom.DebugTree(dom.NewTreeWith(
		dom.NewLink("https://example.org", dom.NewText("site")),
	))
	if got := dom.DebugTree(m.Tree()); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCanonicalNesting(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "x", dom.Attrs{Bold: true, Italic: true})
	want := dom.DebugTree(dom.NewTreeWith(
		dom.NewFormatting(dom.FormatBold, dom.NewFormatting(dom.FormatItalic, dom.NewText("x"))),
	))
	if got := dom.DebugTree(m.Tree()); got != want {
		t.Errorf("expected canonical nesting:\n%s\ngot:\n%s", want, got)
	}
}

func TestInsertMentionAndBreak(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "hi ", dom.Attrs{})
	m.InsertMention(3, "https://matrix.to/#/@a:ex.org", "Alice", dom.Attrs{})
	m.InsertBreak(4, dom.Attrs{})
	if got := m.VisibleLen(); got != 5 {
		t.Fatalf("expected length 5, got %d", got)
	}
	if got := plain(t, m); got != "hi Alice\n" {
		t.Errorf("expected %q, got %q", "hi Alice\n", got)
	}
}

func TestInsertBoundarySplitsBlocks(t *testing.T) {
	m := NewModel("r1")
	m.SetHead(BlockDesc{Kind: BlockParagraph})
	m.InsertText(0, "abcd", dom.Attrs{})
	m.InsertBoundary(2, BlockDesc{Kind: BlockParagraph})
	want := dom.DebugTree(dom.NewTreeWith(
		dom.NewContainer(dom.KindParagraph, dom.NewText("ab")),
		dom.NewContainer(dom.KindParagraph, dom.NewText("cd")),
	))
	if got := dom.DebugTree(m.Tree()); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
	if got := m.VisibleLen(); got != 5 {
		t.Errorf("expected length 5 with boundary, got %d", got)
	}
}

func TestDescAtAndSetDescAt(t *testing.T) {
	m := NewModel("r1")
	m.SetHead(BlockDesc{Kind: BlockParagraph})
	m.InsertText(0, "abcd", dom.Attrs{})
	m.InsertBoundary(2, BlockDesc{Kind: BlockParagraph})

	if got := m.DescAt(1); got.Kind != BlockParagraph {
		t.Errorf("expected paragraph desc, got %+v", got)
	}

	m.SetDescAt(4, BlockDesc{Kind: BlockCode})
	want := dom.DebugTree(dom.NewTreeWith(
		dom.NewContainer(dom.KindParagraph, dom.NewText("ab")),
		dom.NewContainer(dom.KindCodeBlock, dom.NewText("cd")),
	))
	if got := dom.DebugTree(m.Tree()); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}

	m.SetDescAt(0, BlockDesc{Kind: BlockQuote})
	if got := m.DescAt(0); got.Kind != BlockQuote {
		t.Errorf("expected head rewrite, got %+v", got)
	}
}

func TestBoundaryBelongsToPreviousBlock(t *testing.T) {
	m := NewModel("r1")
	m.SetHead(BlockDesc{Kind: BlockParagraph})
	m.InsertText(0, "abcd", dom.Attrs{})
	m.InsertBoundary(2, BlockDesc{Kind: BlockCode})

	// Location 2 sits on the boundary, which belongs to the block before it.
	if got := m.DescAt(2); got.Kind != BlockParagraph {
		t.Errorf("expected boundary location in previous block, got %+v", got)
	}
	if got := m.DescAt(3); got.Kind != BlockCode {
		t.Errorf("expected location 3 in the code block, got %+v", got)
	}
}

func TestUndoRedo(t *testing.T) {
	m := NewModel("r1")
	m.BeginGroup(0, 0)
	m.InsertText(0, "ab", dom.Attrs{})
	m.EndGroup()

	m.BeginGroup(2, 2)
	m.DeleteRange(0, 1)
	m.EndGroup()

	if got := plain(t, m); got != "b" {
		t.Fatalf("expected %q, got %q", "b", got)
	}

	sel, ok := m.Undo(1, 1)
	if !ok {
		t.Fatal("expected undo to apply")
	}
	if got := plain(t, m); got != "ab" {
		t.Errorf("expected %q after undo, got %q", "ab", got)
	}
	if sel != [2]int{2, 2} {
		t.Errorf("expected restored selection (2,2), got %v", sel)
	}

	sel, ok = m.Redo(2, 2)
	if !ok {
		t.Fatal("expected redo to apply")
	}
	if got := plain(t, m); got != "b" {
		t.Errorf("expected %q after redo, got %q", "b", got)
	}
	if sel != [2]int{1, 1} {
		t.Errorf("expected redo selection (1,1), got %v", sel)
	}
}

func TestUndoStyleRestoresPrevious(t *testing.T) {
	m := NewModel("r1")
	m.BeginGroup(0, 0)
	m.InsertText(0, "ab", dom.Attrs{Bold: true})
	m.EndGroup()

	m.BeginGroup(0, 2)
	m.SetStyleRange(0, 2, FieldBold, false, "")
	m.EndGroup()

	plainWant := dom.DebugTree(dom.NewTreeWith(dom.NewText("ab")))
	if got := dom.DebugTree(m.Tree()); got != plainWant {
		t.Fatalf("expected unstyled text, got:\n%s", got)
	}

	if _, ok := m.Undo(0, 2); !ok {
		t.Fatal("expected undo to apply")
	}
	boldWant := dom.DebugTree(dom.NewTreeWith(dom.NewFormatting(dom.FormatBold, dom.NewText("ab"))))
	if got := dom.DebugTree(m.Tree()); got != boldWant {
		t.Errorf("expected bold restored, got:\n%s", got)
	}
}

func TestEmptyGroupNotRecorded(t *testing.T) {
	m := NewModel("r1")
	m.BeginGroup(0, 0)
	m.EndGroup()
	if m.CanUndo() {
		t.Error("expected no undo entry for an empty group")
	}
}

func TestNewGroupClearsRedo(t *testing.T) {
	m := NewModel("r1")
	m.BeginGroup(0, 0)
	m.InsertText(0, "a", dom.Attrs{})
	m.EndGroup()

	if _, ok := m.Undo(1, 1); !ok {
		t.Fatal("expected undo to apply")
	}
	if !m.CanRedo() {
		t.Fatal("expected redo after undo")
	}

	m.BeginGroup(0, 0)
	m.InsertText(0, "b", dom.Attrs{})
	m.EndGroup()
	if m.CanRedo() {
		t.Error("expected new group to clear redo")
	}
}

func TestTakeOutboundDrains(t *testing.T) {
	m := NewModel("r1")
	m.InsertText(0, "ab", dom.Attrs{})
	ops := m.TakeOutbound()
	if len(ops) != 2 {
		t.Errorf("expected 2 ops, got %d", len(ops))
	}
	if got := m.TakeOutbound(); len(got) != 0 {
		t.Errorf("expected drained buffer, got %d ops", len(got))
	}
}
