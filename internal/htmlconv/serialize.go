package htmlconv

import (
	"html"
	"strings"

	"github.com/dshills/quill/internal/dom"
)

// Serialize renders the document as message HTML. Inline content directly
// under the root serializes bare, without a paragraph wrapper, mirroring
// what Parse unwraps.
func Serialize(t *dom.Tree) string {
	var b strings.Builder
	writeChildren(&b, t.Root().Children)
	return b.String()
}

// SerializeNodes renders a detached forest, used for previews and tests.
func SerializeNodes(nodes []*dom.Node) string {
	var b strings.Builder
	writeChildren(&b, nodes)
	return b.String()
}

func writeChildren(b *strings.Builder, nodes []*dom.Node) {
	for _, n := range nodes {
		writeNode(b, n)
	}
}

func writeNode(b *strings.Builder, n *dom.Node) {
	switch n.Kind {
	case dom.KindText:
		b.WriteString(html.EscapeString(n.Text))
	case dom.KindLineBreak:
		b.WriteString("<br />")
	case dom.KindMention:
		writeMention(b, n)
	case dom.KindFormatting:
		tag := n.Format.String()
		b.WriteString("<" + tag + ">")
		writeChildren(b, n.Children)
		b.WriteString("</" + tag + ">")
	case dom.KindLink:
		b.WriteString(`<a href="` + html.EscapeString(n.URL) + `">`)
		writeChildren(b, n.Children)
		b.WriteString("</a>")
	case dom.KindParagraph:
		b.WriteString("<p>")
		writeChildren(b, n.Children)
		b.WriteString("</p>")
	case dom.KindQuote:
		b.WriteString("<blockquote>")
		writeChildren(b, n.Children)
		b.WriteString("</blockquote>")
	case dom.KindCodeBlock:
		b.WriteString("<pre><code>")
		writeChildren(b, n.Children)
		b.WriteString("</code></pre>")
	case dom.KindList:
		writeList(b, n)
	case dom.KindListItem:
		// Only reachable for a detached item outside a list.
		b.WriteString("<li>")
		writeChildren(b, n.Children)
		b.WriteString("</li>")
	}
}

func writeMention(b *strings.Builder, n *dom.Node) {
	b.WriteString(`<a data-mention-type="` + mentionType(n.URL) + `" contenteditable="false" href="` +
		html.EscapeString(n.URL) + `">`)
	b.WriteString(html.EscapeString(n.Display))
	b.WriteString("</a>")
}

// mentionType derives the mention flavor from the permalink sigil.
func mentionType(url string) string {
	id := strings.TrimPrefix(url, dom.MentionPermalinkPrefix)
	if id != "" && (id[0] == '#' || id[0] == '!') {
		return "room"
	}
	return "user"
}

// writeList folds a list that follows an item into that item's tags, which
// is how nesting is written in valid HTML. The tree keeps nested lists as
// siblings of the items they follow.
func writeList(b *strings.Builder, n *dom.Node) {
	tag := "ul"
	if n.Ordered {
		tag = "ol"
	}
	b.WriteString("<" + tag + ">")
	children := n.Children
	for i := 0; i < len(children); i++ {
		c := children[i]
		b.WriteString("<li>")
		if c.Kind == dom.KindList {
			// A nested list with no preceding item gets a wrapper item.
			writeList(b, c)
		} else {
			writeChildren(b, c.Children)
			for i+1 < len(children) && children[i+1].Kind == dom.KindList {
				i++
				writeList(b, children[i])
			}
		}
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
}
