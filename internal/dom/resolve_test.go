package dom

import "testing"

func TestResolveWithinOneLeaf(t *testing.T) {
	tr := NewTreeWith(par(NewText("hello")))
	r := tr.Resolve(1, 3)
	if len(r.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(r.Segments))
	}
	seg := r.Segments[0]
	if seg.Text() != "el" {
		t.Errorf("expected %q, got %q", "el", seg.Text())
	}
	if seg.Covered() {
		t.Error("partial coverage must not report Covered")
	}
	if seg.LocalStart != 1 || seg.LocalEnd != 3 {
		t.Errorf("expected local [1,3), got [%d,%d)", seg.LocalStart, seg.LocalEnd)
	}
}

func TestResolveAcrossLeaves(t *testing.T) {
	tr := NewTreeWith(par(bold(NewText("ab")), NewText("cd")))
	r := tr.Resolve(1, 3)
	if len(r.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(r.Segments))
	}
	if r.Segments[0].Text() != "b" || r.Segments[1].Text() != "c" {
		t.Errorf("expected %q and %q, got %q and %q", "b", "c", r.Segments[0].Text(), r.Segments[1].Text())
	}
}

func TestResolveSkipsBlockBoundary(t *testing.T) {
	tr := NewTreeWith(par(NewText("ab")), par(NewText("cd")))
	r := tr.Resolve(1, 4)
	if len(r.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(r.Segments))
	}
	if r.Segments[0].Text() != "b" || r.Segments[1].Text() != "c" {
		t.Errorf("expected %q and %q around the boundary, got %q and %q",
			"b", "c", r.Segments[0].Text(), r.Segments[1].Text())
	}
	if r.Segments[1].Start != 3 {
		t.Errorf("second leaf should start at 3 (after the boundary unit), got %d", r.Segments[1].Start)
	}
}

func TestResolveBoundaryOnly(t *testing.T) {
	tr := NewTreeWith(par(NewText("ab")), par(NewText("cd")))
	r := tr.Resolve(2, 3)
	if !r.IsEmpty() {
		t.Errorf("an interval covering only the boundary unit touches no leaves, got %d segments", len(r.Segments))
	}
}

func TestResolveCollapsed(t *testing.T) {
	tr := NewTreeWith(par(NewText("hello")))
	r := tr.Resolve(2, 2)
	if !r.IsEmpty() {
		t.Error("collapsed interval should resolve to no segments")
	}
}

func TestResolveClampsAndOrders(t *testing.T) {
	tr := NewTreeWith(par(NewText("abc")))
	r := tr.Resolve(99, -5)
	if r.Start != 0 || r.End != 3 {
		t.Errorf("expected clamped ordered [0,3), got [%d,%d)", r.Start, r.End)
	}
	if len(r.Segments) != 1 || !r.Segments[0].Covered() {
		t.Error("expected full coverage of the single leaf")
	}
}

func TestResolveMentionAtomic(t *testing.T) {
	tr := NewTreeWith(par(NewText("hi"), NewMention("https://chat.example/u/bob", "Bob")))
	r := tr.Resolve(2, 3)
	if len(r.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(r.Segments))
	}
	seg := r.Segments[0]
	if seg.Leaf.Kind != KindMention || !seg.Covered() {
		t.Error("a mention is covered whole or not at all")
	}
}

func TestInsertionPointInsideText(t *testing.T) {
	tr := NewTreeWith(par(NewText("hello")))
	ip := tr.InsertionPoint(2)
	if !ip.InText() {
		t.Fatal("expected a text insertion point")
	}
	if !ip.Text.Equal(Handle{0, 0}) || ip.TextOffset != 2 {
		t.Errorf("expected leaf 0.0 offset 2, got %s offset %d", ip.Text, ip.TextOffset)
	}
}

func TestInsertionPointSeamAttachesToEarlierRun(t *testing.T) {
	tr := NewTreeWith(par(bold(NewText("ab")), NewText("cd")))
	ip := tr.InsertionPoint(2)
	if !ip.InText() || !ip.Text.Equal(Handle{0, 0, 0}) {
		t.Errorf("typing at the seam should continue the bold run, got %+v", ip)
	}
	if ip.TextOffset != 2 {
		t.Errorf("expected offset at the end of the bold text, got %d", ip.TextOffset)
	}
}

func TestInsertionPointBlockEdges(t *testing.T) {
	tr := NewTreeWith(par(NewText("ab")), par(NewText("cd")))

	// End of the first block.
	ip := tr.InsertionPoint(2)
	if !ip.InText() || !ip.Text.Equal(Handle{0, 0}) || ip.TextOffset != 2 {
		t.Errorf("location 2 belongs to the first paragraph's end, got %+v", ip)
	}

	// Start of the second block, past the boundary unit.
	ip = tr.InsertionPoint(3)
	if !ip.InText() || !ip.Text.Equal(Handle{1, 0}) || ip.TextOffset != 0 {
		t.Errorf("location 3 belongs to the second paragraph's start, got %+v", ip)
	}
}

func TestInsertionPointEmptyParagraph(t *testing.T) {
	tr := NewTreeWith(par(), par(NewText("a")))
	ip := tr.InsertionPoint(0)
	if ip.InText() {
		t.Fatal("empty paragraph has no text leaf")
	}
	if !ip.Parent.Equal(Handle{0}) || ip.Index != 0 {
		t.Errorf("expected slot 0 of the empty paragraph, got %+v", ip)
	}
}

func TestInsertionPointAroundMention(t *testing.T) {
	tr := NewTreeWith(par(NewText("hi"), NewMention("https://chat.example/u/bob", "Bob")))

	ip := tr.InsertionPoint(2)
	// The text leaf absorbs its end position, so this is still in-text.
	if !ip.InText() || ip.TextOffset != 2 {
		t.Errorf("expected the text end, got %+v", ip)
	}

	ip = tr.InsertionPoint(3)
	if ip.InText() {
		t.Fatal("after the mention there is no text leaf")
	}
	if !ip.Parent.Equal(Handle{0}) || ip.Index != 2 {
		t.Errorf("expected the slot after the mention, got %+v", ip)
	}
}

func TestInsertionPointEmptyDocument(t *testing.T) {
	tr := NewTree()
	ip := tr.InsertionPoint(0)
	if ip.InText() || !ip.Parent.IsRoot() || ip.Index != 0 {
		t.Errorf("expected the root's first slot, got %+v", ip)
	}
}

func TestAttrsAtFlattensAncestors(t *testing.T) {
	tr := NewTreeWith(par(bold(ital(NewText("x")))))
	a := tr.AttrsAt(Handle{0, 0, 0, 0})
	if !a.Bold || !a.Italic {
		t.Errorf("expected bold italic, got %+v", a)
	}
	if a.StrikeThrough || a.Underline || a.InlineCode || a.LinkURL != "" {
		t.Errorf("unexpected extra attrs: %+v", a)
	}
}

func TestAttrsAtLink(t *testing.T) {
	tr := NewTreeWith(par(NewLink("https://example.com", bold(NewText("x")))))
	a := tr.AttrsAt(Handle{0, 0, 0, 0})
	if a.LinkURL != "https://example.com" || !a.Bold {
		t.Errorf("expected link and bold, got %+v", a)
	}
}

func TestBlockSpansFlat(t *testing.T) {
	tr := NewTreeWith(par(NewText("ab")), par(NewText("cd")))
	spans := tr.BlockSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != 2 {
		t.Errorf("first span should cover [0,2], got [%d,%d]", spans[0].Start, spans[0].End)
	}
	if spans[1].Start != 3 || spans[1].End != 5 {
		t.Errorf("second span should cover [3,5], got [%d,%d]", spans[1].Start, spans[1].End)
	}
}

func TestBlockSpansInlineRoot(t *testing.T) {
	tr := NewTreeWith(NewText("abc"))
	spans := tr.BlockSpans()
	if len(spans) != 1 {
		t.Fatalf("expected a single span, got %d", len(spans))
	}
	if !spans[0].Handle.IsRoot() || spans[0].End != 3 {
		t.Errorf("expected the root span [0,3], got %+v", spans[0])
	}
}

func TestBlockSpansQuote(t *testing.T) {
	tr := NewTreeWith(
		quo(par(NewText("a")), par(NewText("b"))),
		par(NewText("c")),
	)
	spans := tr.BlockSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if !spans[0].InQuote || !spans[1].InQuote || spans[2].InQuote {
		t.Error("quote flags wrong")
	}
	wantStarts := []Location{0, 2, 4}
	for i, s := range spans {
		if s.Start != wantStarts[i] {
			t.Errorf("span %d should start at %d, got %d", i, wantStarts[i], s.Start)
		}
	}
}

func TestBlockSpansNestedList(t *testing.T) {
	tr := NewTreeWith(NewList(false,
		item(NewText("a")),
		NewList(true, item(NewText("b"))),
		item(NewText("c")),
	))
	spans := tr.BlockSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[0].ListDepth != 1 || spans[1].ListDepth != 2 || spans[2].ListDepth != 1 {
		t.Errorf("list depths wrong: %d %d %d", spans[0].ListDepth, spans[1].ListDepth, spans[2].ListDepth)
	}
	if spans[0].Ordered || !spans[1].Ordered || spans[2].Ordered {
		t.Error("ordered flags should reflect the innermost list")
	}
	if spans[1].Start != 2 || spans[2].Start != 4 {
		t.Errorf("nested spans separated by single boundaries, got starts %d %d", spans[1].Start, spans[2].Start)
	}
}

func TestSpanAtBoundaryBelongsToPrevious(t *testing.T) {
	tr := NewTreeWith(par(NewText("ab")), par(NewText("cd")))
	if s := tr.SpanAt(2); s.Start != 0 {
		t.Errorf("location 2 is the first span's end, got span starting at %d", s.Start)
	}
	if s := tr.SpanAt(3); s.Start != 3 {
		t.Errorf("location 3 opens the second span, got span starting at %d", s.Start)
	}
}

func TestSpansInIntersection(t *testing.T) {
	tr := NewTreeWith(par(NewText("ab")), par(NewText("cd")), par(NewText("ef")))
	spans := tr.SpansIn(4, 5)
	if len(spans) != 1 || spans[0].Start != 3 {
		t.Fatalf("expected only the middle span, got %d spans", len(spans))
	}
	spans = tr.SpansIn(1, 7)
	if len(spans) != 3 {
		t.Errorf("expected all three spans, got %d", len(spans))
	}
}

func TestSnapIntervalWidensOverPair(t *testing.T) {
	tr := NewTreeWith(par(NewText("a👍b")))

	s, e := tr.SnapInterval(2, 3)
	if s != 1 || e != 3 {
		t.Errorf("expected [1,3) covering the whole pair, got [%d,%d)", s, e)
	}
	s, e = tr.SnapInterval(1, 2)
	if s != 1 || e != 3 {
		t.Errorf("expected the end to move past the pair, got [%d,%d)", s, e)
	}
	s, e = tr.SnapInterval(0, 1)
	if s != 0 || e != 1 {
		t.Errorf("pair-safe ends should not move, got [%d,%d)", s, e)
	}
}

func TestSnapIntervalCollapsedStaysCollapsed(t *testing.T) {
	tr := NewTreeWith(par(NewText("a👍b")))
	s, e := tr.SnapInterval(2, 2)
	if s != 1 || e != 1 {
		t.Errorf("expected cursor snapped to the pair start, got [%d,%d)", s, e)
	}
}
