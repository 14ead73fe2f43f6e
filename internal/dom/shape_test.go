package dom

import "testing"

// reshape flattens the tree and rebuilds it, comparing debug output.
func reshape(t *testing.T, tr *Tree) {
	t.Helper()
	shapes := ShapeBlocks(tr, tr.BlockSpans())
	back := NewTreeWith(BuildBlocks(shapes)...)
	if got, want := DebugTree(back), DebugTree(tr); got != want {
		t.Errorf("rebuild changed the document:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestShapeRoundTripInlineRoot(t *testing.T) {
	reshape(t, NewTreeWith(NewText("ab"), bold(NewText("c"))))
}

func TestShapeRoundTripParagraphs(t *testing.T) {
	reshape(t, NewTreeWith(par(NewText("ab")), par(NewText("cd"))))
}

func TestShapeRoundTripQuoteGroup(t *testing.T) {
	reshape(t, NewTreeWith(
		NewContainer(KindQuote, par(NewText("a")), par(NewText("b"))),
		par(NewText("after")),
	))
}

func TestShapeRoundTripAdjacentQuotes(t *testing.T) {
	reshape(t, NewTreeWith(
		NewContainer(KindQuote, par(NewText("a"))),
		NewContainer(KindQuote, par(NewText("b"))),
	))
}

func TestShapeRoundTripNestedList(t *testing.T) {
	reshape(t, NewTreeWith(
		NewList(false,
			NewContainer(KindListItem, NewText("a")),
			NewList(true, NewContainer(KindListItem, NewText("b"))),
			NewContainer(KindListItem, NewText("c")),
		),
	))
}

func TestShapeRoundTripCodeBlock(t *testing.T) {
	reshape(t, NewTreeWith(
		par(NewText("before")),
		NewContainer(KindCodeBlock, NewText("x\ny")),
	))
}

func TestShapeKindChangeRebuilds(t *testing.T) {
	tr := NewTreeWith(par(NewText("ab")), par(NewText("cd")))
	shapes := ShapeBlocks(tr, tr.BlockSpans())
	shapes[1].Kind = KindCodeBlock

	back := NewTreeWith(BuildBlocks(shapes)...)
	want := DebugTree(NewTreeWith(par(NewText("ab")), NewContainer(KindCodeBlock, NewText("cd"))))
	if got := DebugTree(back); got != want {
		t.Errorf("expected second block as code:\n%s\ngot:\n%s", want, got)
	}
}

func TestShapeQuoteFlagGroups(t *testing.T) {
	tr := NewTreeWith(par(NewText("a")), par(NewText("b")))
	shapes := ShapeBlocks(tr, tr.BlockSpans())
	shapes[0].InQuote = true
	shapes[0].NewQuote = true
	shapes[1].InQuote = true

	back := NewTreeWith(BuildBlocks(shapes)...)
	want := DebugTree(NewTreeWith(NewContainer(KindQuote, par(NewText("a")), par(NewText("b")))))
	if got := DebugTree(back); got != want {
		t.Errorf("expected one quote holding both paragraphs:\n%s\ngot:\n%s", want, got)
	}
}

func TestShapeListWrap(t *testing.T) {
	tr := NewTreeWith(par(NewText("a")), par(NewText("b")))
	shapes := ShapeBlocks(tr, tr.BlockSpans())
	for i := range shapes {
		shapes[i].Kind = KindListItem
		shapes[i].Ordered = true
		shapes[i].Depth = 1
	}

	back := NewTreeWith(BuildBlocks(shapes)...)
	want := DebugTree(NewTreeWith(NewList(true,
		NewContainer(KindListItem, NewText("a")),
		NewContainer(KindListItem, NewText("b")),
	)))
	if got := DebugTree(back); got != want {
		t.Errorf("expected one ordered list:\n%s\ngot:\n%s", want, got)
	}
}

func TestShapeUnitLenAndText(t *testing.T) {
	tr := NewTreeWith(par(
		NewText("hi "),
		NewMention("https://chat.example/u/a", "Alice"),
		NewLineBreak(),
	))
	shapes := ShapeBlocks(tr, tr.BlockSpans())
	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if got := shapes[0].UnitLen(); got != 5 {
		t.Errorf("expected 5 units, got %d", got)
	}
	if got := shapes[0].Text(); got != "hi Alice\n" {
		t.Errorf("expected %q, got %q", "hi Alice\n", got)
	}
}
