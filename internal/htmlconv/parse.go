package htmlconv

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/quill/internal/dom"
)

// ParseError reports a content-parse failure. The document is left
// untouched when one is returned; the diagnostics are meant for the host
// to surface, not for program logic.
type ParseError struct {
	Diagnostics []string
	Err         error
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) > 0 {
		return "htmlconv: parse failed: " + strings.Join(e.Diagnostics, "; ")
	}
	return "htmlconv: parse failed"
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse converts an HTML fragment into document nodes ready to splice under
// the tree root. A fragment holding a single paragraph unwraps to that
// paragraph's inline content, so short messages stay flat. Unknown elements
// are unwrapped to their children rather than rejected.
func Parse(markup string) ([]*dom.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, &ParseError{Diagnostics: []string{err.Error()}, Err: err}
	}
	var forest []*dom.Node
	for _, n := range parsed {
		forest = append(forest, convertNode(n, false)...)
	}
	forest = dropInterBlockSpace(forest)
	forest = groupLoose(forest)
	if len(forest) == 1 && forest[0].Kind == dom.KindParagraph {
		forest = forest[0].Children
	}
	return forest, nil
}

var spaceRun = regexp.MustCompile(`[ \t\r\n]+`)

func convertNode(n *html.Node, pre bool) []*dom.Node {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if !pre {
			text = spaceRun.ReplaceAllString(text, " ")
		}
		if text == "" {
			return nil
		}
		return []*dom.Node{dom.NewText(text)}
	case html.ElementNode:
		return convertElement(n, pre)
	default:
		// Comments, doctypes and the like carry no content.
		return nil
	}
}

func convertElement(n *html.Node, pre bool) []*dom.Node {
	switch n.DataAtom {
	case atom.Strong, atom.B:
		return applyFormat(dom.FormatBold, convertChildren(n, pre))
	case atom.Em, atom.I:
		return applyFormat(dom.FormatItalic, convertChildren(n, pre))
	case atom.Del, atom.S, atom.Strike:
		return applyFormat(dom.FormatStrikeThrough, convertChildren(n, pre))
	case atom.U:
		return applyFormat(dom.FormatUnderline, convertChildren(n, pre))
	case atom.Code:
		return applyFormat(dom.FormatInlineCode, convertChildren(n, pre))
	case atom.A:
		return convertAnchor(n, pre)
	case atom.Br:
		if pre {
			return []*dom.Node{dom.NewText("\n")}
		}
		return []*dom.Node{dom.NewLineBreak()}
	case atom.P:
		return []*dom.Node{dom.NewContainer(dom.KindParagraph, convertChildren(n, pre)...)}
	case atom.Blockquote:
		return []*dom.Node{dom.NewContainer(dom.KindQuote, groupLoose(convertChildren(n, pre))...)}
	case atom.Pre:
		return convertPre(n)
	case atom.Ol:
		return convertList(n, true, pre)
	case atom.Ul:
		return convertList(n, false, pre)
	case atom.Head, atom.Meta, atom.Style, atom.Script, atom.Title, atom.Link:
		return nil
	default:
		// Unknown wrappers (span, div, font) contribute only their content.
		return convertChildren(n, pre)
	}
}

func convertChildren(n *html.Node, pre bool) []*dom.Node {
	var out []*dom.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, convertNode(c, pre)...)
	}
	return dropInterBlockSpace(out)
}

// applyFormat wraps inline runs in the formatting container. Block nodes
// that slipped inside an inline element (a stray bold around paragraphs)
// keep their place and have the formatting pushed down onto their content.
// Code blocks stay verbatim.
func applyFormat(f dom.Format, nodes []*dom.Node) []*dom.Node {
	return wrapRuns(nodes, func(children ...*dom.Node) *dom.Node {
		return dom.NewFormatting(f, children...)
	})
}

func wrapRuns(nodes []*dom.Node, wrap func(...*dom.Node) *dom.Node) []*dom.Node {
	var out []*dom.Node
	for i := 0; i < len(nodes); {
		if !nodes[i].IsBlock() {
			j := i
			for j < len(nodes) && !nodes[j].IsBlock() {
				j++
			}
			out = append(out, wrap(nodes[i:j]...))
			i = j
			continue
		}
		b := nodes[i]
		if b.Kind != dom.KindCodeBlock {
			b.Children = wrapRuns(b.Children, wrap)
		}
		out = append(out, b)
		i++
	}
	return out
}

func convertAnchor(n *html.Node, pre bool) []*dom.Node {
	href := attrValue(n, "href")
	if attrValue(n, "data-mention-type") != "" || dom.IsMentionURL(href) {
		display := strings.TrimSpace(textContent(n))
		if display == "" {
			display = href
		}
		return []*dom.Node{dom.NewMention(href, display)}
	}
	children := convertChildren(n, pre)
	if href == "" {
		return children
	}
	return wrapRuns(children, func(cs ...*dom.Node) *dom.Node {
		return dom.NewLink(href, cs...)
	})
}

// convertPre flattens the element to its literal text. The newline browsers
// swallow right after the opening tag is dropped here too.
func convertPre(n *html.Node) []*dom.Node {
	text := strings.TrimPrefix(textContent(n), "\n")
	block := dom.NewContainer(dom.KindCodeBlock)
	if text != "" {
		block.Append(dom.NewText(text))
	}
	return []*dom.Node{block}
}

func convertList(n *html.Node, ordered, pre bool) []*dom.Node {
	var items []*dom.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Li:
			item, hoisted := convertListItem(c, pre)
			items = append(items, item)
			items = append(items, hoisted...)
		case atom.Ol:
			items = append(items, convertList(c, true, pre)...)
		case atom.Ul:
			items = append(items, convertList(c, false, pre)...)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return []*dom.Node{dom.NewList(ordered, items...)}
}

// convertListItem flattens the item to inline content. Nested lists are
// hoisted out as siblings of the item, keeping list children homogeneous;
// paragraphs inside an item collapse to line breaks.
func convertListItem(n *html.Node, pre bool) (*dom.Node, []*dom.Node) {
	var inline []*dom.Node
	var hoisted []*dom.Node
	for _, c := range convertChildren(n, pre) {
		switch {
		case c.Kind == dom.KindList:
			hoisted = append(hoisted, c)
		case c.IsBlock():
			if len(inline) > 0 {
				inline = append(inline, dom.NewLineBreak())
			}
			inline = append(inline, c.Children...)
		default:
			inline = append(inline, c)
		}
	}
	return dom.NewContainer(dom.KindListItem, inline...), hoisted
}

// dropInterBlockSpace removes the whitespace-only text nodes that separate
// block elements in formatted markup. Pure inline content keeps its spaces.
func dropInterBlockSpace(nodes []*dom.Node) []*dom.Node {
	hasBlock := false
	for _, n := range nodes {
		if n.IsBlock() {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		return nodes
	}
	out := make([]*dom.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == dom.KindText && strings.TrimSpace(n.Text) == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// groupLoose wraps runs of inline nodes into paragraphs when they share a
// level with block nodes, restoring homogeneous children.
func groupLoose(nodes []*dom.Node) []*dom.Node {
	hasBlock := false
	for _, n := range nodes {
		if n.IsBlock() {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		return nodes
	}
	var out []*dom.Node
	for i := 0; i < len(nodes); {
		if nodes[i].IsBlock() {
			out = append(out, nodes[i])
			i++
			continue
		}
		j := i
		for j < len(nodes) && !nodes[j].IsBlock() {
			j++
		}
		out = append(out, dom.NewContainer(dom.KindParagraph, nodes[i:j]...))
		i = j
	}
	return out
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
