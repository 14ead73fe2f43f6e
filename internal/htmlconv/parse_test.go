package htmlconv

import (
	"strings"
	"testing"

	"github.com/dshills/quill/internal/dom"
)

func parseTree(t *testing.T, markup string) *dom.Tree {
	t.Helper()
	nodes, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q): %v", markup, err)
	}
	return dom.NewTreeWith(nodes...)
}

func TestParsePlainText(t *testing.T) {
	tr := parseTree(t, "abc")
	if got := tr.PlainText(); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}
	if tr.Root().Children[0].Kind != dom.KindText {
		t.Error("plain text should stay inline under the root")
	}
}

func TestParseUnwrapsSingleParagraph(t *testing.T) {
	tr := parseTree(t, "<p>abc</p>")
	if len(tr.Root().Children) != 1 || tr.Root().Children[0].Kind != dom.KindText {
		t.Errorf("a sole paragraph should unwrap to inline content, got %s", dom.DebugTree(tr))
	}
}

func TestParseKeepsMultipleParagraphs(t *testing.T) {
	tr := parseTree(t, "<p>a</p>\n<p>b</p>")
	root := tr.Root()
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 paragraphs, got %s", dom.DebugTree(tr))
	}
	if root.Children[0].Kind != dom.KindParagraph || root.Children[1].Kind != dom.KindParagraph {
		t.Error("both children should be paragraphs")
	}
	if got := tr.PlainText(); got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
}

func TestParseFormattingVariants(t *testing.T) {
	tests := []struct {
		markup string
		format dom.Format
	}{
		{"<strong>x</strong>", dom.FormatBold},
		{"<b>x</b>", dom.FormatBold},
		{"<em>x</em>", dom.FormatItalic},
		{"<i>x</i>", dom.FormatItalic},
		{"<del>x</del>", dom.FormatStrikeThrough},
		{"<s>x</s>", dom.FormatStrikeThrough},
		{"<strike>x</strike>", dom.FormatStrikeThrough},
		{"<u>x</u>", dom.FormatUnderline},
		{"<code>x</code>", dom.FormatInlineCode},
	}
	for _, tt := range tests {
		nodes, err := Parse(tt.markup)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.markup, err)
		}
		if len(nodes) != 1 || nodes[0].Kind != dom.KindFormatting || nodes[0].Format != tt.format {
			t.Errorf("Parse(%q): expected %v wrapper, got %+v", tt.markup, tt.format, nodes)
		}
	}
}

func TestParseLink(t *testing.T) {
	nodes, err := Parse(`<a href="https://example.com">site</a>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Kind != dom.KindLink {
		t.Fatalf("expected a link node, got %+v", nodes)
	}
	if nodes[0].URL != "https://example.com" {
		t.Errorf("expected url kept, got %q", nodes[0].URL)
	}
}

func TestParseAnchorWithoutHrefUnwraps(t *testing.T) {
	nodes, err := Parse(`<a>just text</a>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Kind != dom.KindText {
		t.Errorf("anchor without target should unwrap, got %+v", nodes)
	}
}

func TestParseMentionByPermalink(t *testing.T) {
	nodes, err := Parse(`<a href="https://matrix.to/#/@alice:example.org" contenteditable="false">Alice</a>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Kind != dom.KindMention {
		t.Fatalf("expected a mention, got %+v", nodes)
	}
	if nodes[0].Display != "Alice" || !strings.Contains(nodes[0].URL, "@alice:example.org") {
		t.Errorf("mention fields wrong: %+v", nodes[0])
	}
}

func TestParseMentionByAttribute(t *testing.T) {
	nodes, err := Parse(`<a data-mention-type="room" href="https://chat.example/r/general">general</a>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Kind != dom.KindMention {
		t.Errorf("expected a mention via the attribute, got %+v", nodes)
	}
}

func TestParseLineBreak(t *testing.T) {
	tr := parseTree(t, "a<br>b")
	if got := tr.PlainText(); got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
}

func TestParseQuoteInline(t *testing.T) {
	nodes, err := Parse("<blockquote>hi</blockquote>")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Kind != dom.KindQuote {
		t.Fatalf("expected a quote, got %+v", nodes)
	}
	if nodes[0].Children[0].Kind != dom.KindText {
		t.Error("quote with bare text keeps it inline")
	}
}

func TestParseQuoteParagraphs(t *testing.T) {
	tr := parseTree(t, "<blockquote><p>a</p><p>b</p></blockquote>")
	q := tr.Root().Children[0]
	if len(q.Children) != 2 || q.Children[0].Kind != dom.KindParagraph {
		t.Errorf("expected paragraphs kept inside the quote, got %s", dom.DebugTree(tr))
	}
}

func TestParseCodeBlock(t *testing.T) {
	nodes, err := Parse("<pre><code>a\nb</code></pre>")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Kind != dom.KindCodeBlock {
		t.Fatalf("expected a code block, got %+v", nodes)
	}
	if nodes[0].Children[0].Text != "a\nb" {
		t.Errorf("expected literal text %q, got %q", "a\nb", nodes[0].Children[0].Text)
	}
}

func TestParseNestedList(t *testing.T) {
	tr := parseTree(t, "<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>")
	list := tr.Root().Children[0]
	if list.Kind != dom.KindList || list.Ordered {
		t.Fatalf("expected an unordered list, got %s", dom.DebugTree(tr))
	}
	kinds := make([]dom.NodeKind, len(list.Children))
	for i, c := range list.Children {
		kinds[i] = c.Kind
	}
	want := []dom.NodeKind{dom.KindListItem, dom.KindList, dom.KindListItem}
	for i := range want {
		if i >= len(kinds) || kinds[i] != want[i] {
			t.Fatalf("nested list should hoist to a sibling: got %s", dom.DebugTree(tr))
		}
	}
	if got := tr.PlainText(); got != "a\nb\nc" {
		t.Errorf("expected %q, got %q", "a\nb\nc", got)
	}
}

func TestParseListItemParagraphsFlatten(t *testing.T) {
	tr := parseTree(t, "<ul><li><p>a</p><p>b</p></li></ul>")
	item := tr.Root().Children[0].Children[0]
	if item.Kind != dom.KindListItem {
		t.Fatalf("expected a list item, got %s", dom.DebugTree(tr))
	}
	for _, c := range item.Children {
		if c.IsBlock() {
			t.Fatalf("item content should be flattened inline, got %s", dom.DebugTree(tr))
		}
	}
	if got := tr.PlainText(); got != "a\nb" {
		t.Errorf("expected paragraphs joined by a break, got %q", got)
	}
}

func TestParseUnknownElementsUnwrap(t *testing.T) {
	tr := parseTree(t, `<div><span>a</span><font color="red">b</font></div>`)
	if got := tr.PlainText(); got != "ab" {
		t.Errorf("expected %q, got %q", "ab", got)
	}
	for _, c := range tr.Root().Children {
		if c.Kind != dom.KindText {
			t.Errorf("wrappers should vanish, got %v", c.Kind)
		}
	}
}

func TestParseDropsHeadContent(t *testing.T) {
	tr := parseTree(t, `<style>p{color:red}</style><p>a</p><script>x()</script>`)
	if got := tr.PlainText(); got != "a" {
		t.Errorf("expected style and script dropped, got %q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	nodes, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected no nodes, got %+v", nodes)
	}
}

func TestParseBoldAroundParagraphPushesDown(t *testing.T) {
	// The bold moves inside the paragraph; the then-sole paragraph unwraps.
	tr := parseTree(t, "<b><p>a</p><p>b</p></b>")
	root := tr.Root()
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 paragraphs, got %s", dom.DebugTree(tr))
	}
	for _, p := range root.Children {
		if p.Kind != dom.KindParagraph {
			t.Fatalf("expected paragraphs kept, got %s", dom.DebugTree(tr))
		}
		if p.Children[0].Kind != dom.KindFormatting || p.Children[0].Format != dom.FormatBold {
			t.Errorf("expected bold pushed into each paragraph, got %s", dom.DebugTree(tr))
		}
	}
}
