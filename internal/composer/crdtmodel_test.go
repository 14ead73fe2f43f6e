package composer

import (
	"testing"

	"github.com/dshills/quill/internal/dom"
)

func TestCRDTTypeAndSelection(t *testing.T) {
	m := newCRDTModel("r1")
	if !m.ReplaceText("hello") {
		t.Fatal("expected ReplaceText to report a change")
	}
	if got := backendHTML(m); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if sel := m.Selection(); sel.Anchor != 5 || sel.Head != 5 {
		t.Errorf("expected caret at 5, got %+v", sel)
	}
}

func TestCRDTEnterAndBackspaceMerge(t *testing.T) {
	m := newCRDTModel("r1")
	m.ReplaceText("ab")
	m.Select(1, 1)
	m.Enter()
	if got := backendHTML(m); got != "<p>a</p><p>b</p>" {
		t.Fatalf("expected split paragraphs, got %q", got)
	}
	if sel := m.Selection(); sel.Anchor != 2 {
		t.Fatalf("expected caret at 2, got %+v", sel)
	}
	m.Backspace()
	if got := backendHTML(m); got != "<p>ab</p>" {
		t.Errorf("expected merged paragraph, got %q", got)
	}
	if sel := m.Selection(); sel.Anchor != 1 {
		t.Errorf("expected caret at 1, got %+v", sel)
	}
}

func TestCRDTToggleQuoteOnAndOff(t *testing.T) {
	m := newCRDTModel("r1")
	m.ReplaceText("ab")
	m.ToggleQuote()
	if got := backendHTML(m); got != "<blockquote><p>ab</p></blockquote>" {
		t.Fatalf("expected quoted paragraph, got %q", got)
	}
	m.ToggleQuote()
	if got := backendHTML(m); got != "<p>ab</p>" {
		t.Errorf("expected quote removed, got %q", got)
	}
}

func TestCRDTPendingFormatAtCaret(t *testing.T) {
	m := newCRDTModel("r1")
	m.ReplaceText("ab")
	m.Select(1, 1)
	if m.ToggleFormat(dom.FormatBold) {
		t.Error("expected caret toggle to report no content change")
	}
	m.ReplaceText("x")
	if got := backendHTML(m); got != "a<strong>x</strong>b" {
		t.Errorf("expected %q, got %q", "a<strong>x</strong>b", got)
	}
}

func TestCRDTUndoRestoresSelection(t *testing.T) {
	m := newCRDTModel("r1")
	m.ReplaceText("abcd")
	m.Select(1, 3)
	m.ToggleFormat(dom.FormatBold)
	if got := backendHTML(m); got != "a<strong>bc</strong>d" {
		t.Fatalf("expected bold range, got %q", got)
	}
	if !m.Undo() {
		t.Fatal("expected undo to apply")
	}
	if got := backendHTML(m); got != "abcd" {
		t.Errorf("expected formatting undone, got %q", got)
	}
	if sel := m.Selection(); sel.Anchor != 1 || sel.Head != 3 {
		t.Errorf("expected selection restored to [1,3], got %+v", sel)
	}
	if !m.Redo() {
		t.Fatal("expected redo to apply")
	}
	if got := backendHTML(m); got != "a<strong>bc</strong>d" {
		t.Errorf("expected formatting reapplied, got %q", got)
	}
}

func TestCRDTCodeBlockJoinPreservesLength(t *testing.T) {
	m := newCRDTModel("r1")
	m.SetContent(parseHTML(t, "<p>a</p><p>b</p>"))
	m.Select(0, 3)
	m.ToggleCodeBlock()
	if got := backendHTML(m); got != "<pre><code>a\nb</code></pre>" {
		t.Fatalf("expected joined code block, got %q", got)
	}
	if got := m.Tree().Len(); got != 3 {
		t.Errorf("expected length preserved at 3, got %d", got)
	}
	m.ToggleCodeBlock()
	if got := backendHTML(m); got != "<p>a</p><p>b</p>" {
		t.Errorf("expected split back into paragraphs, got %q", got)
	}
}

func TestCRDTConvergenceBetweenReplicas(t *testing.T) {
	a := newCRDTModel("a")
	b := newCRDTModel("b")

	a.ReplaceText("hello")
	b.ApplyRemote(a.TakeOutbound())
	if got := backendHTML(b); got != "hello" {
		t.Fatalf("expected replica b to converge, got %q", got)
	}

	a.Select(0, 0)
	a.ReplaceText(">")
	b.Select(5, 5)
	b.ReplaceText("!")
	aOps := a.TakeOutbound()
	bOps := b.TakeOutbound()
	a.ApplyRemote(bOps)
	b.ApplyRemote(aOps)

	ah, bh := backendHTML(a), backendHTML(b)
	if ah != bh {
		t.Fatalf("replicas diverged: a %q, b %q", ah, bh)
	}
	if ah != ">hello!" {
		t.Errorf("expected %q, got %q", ">hello!", ah)
	}
}

func TestCRDTRemoteDeleteClampsSelection(t *testing.T) {
	a := newCRDTModel("a")
	b := newCRDTModel("b")
	a.ReplaceText("abc")
	b.ApplyRemote(a.TakeOutbound())
	b.Select(3, 3)

	a.Select(0, 3)
	a.Backspace()
	b.ApplyRemote(a.TakeOutbound())
	if got := b.Tree().Len(); got != 0 {
		t.Fatalf("expected empty document, got length %d", got)
	}
	if sel := b.Selection(); sel.Anchor != 0 || sel.Head != 0 {
		t.Errorf("expected selection clamped to 0, got %+v", sel)
	}
}

func TestCRDTMentionFlattenedByCodeBlock(t *testing.T) {
	m := newCRDTModel("r1")
	m.ReplaceText("hi ")
	m.InsertMention("https://matrix.to/#/@a:ex.org", "Alice")
	m.Select(0, 4)
	m.ToggleCodeBlock()
	if got := backendHTML(m); got != "<pre><code>hi Alice</code></pre>" {
		t.Errorf("expected mention flattened to display text, got %q", got)
	}
	if !m.Undo() {
		t.Fatal("expected undo to apply")
	}
	want := `hi <a data-mention-type="user" contenteditable="false" href="https://matrix.to/#/@a:ex.org">Alice</a>`
	if got := backendHTML(m); got != want {
		t.Errorf("expected mention restored, got %q", got)
	}
}
