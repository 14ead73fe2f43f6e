package mdconv

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dshills/quill/internal/dom"
)

// ParseError reports a content-parse failure. The document is left
// untouched when one is returned.
type ParseError struct {
	Diagnostics []string
}

func (e *ParseError) Error() string {
	return "mdconv: parse failed: " + strings.Join(e.Diagnostics, "; ")
}

var parser = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// Parse converts markdown text into document nodes ready to splice under
// the tree root. As with HTML, a sole paragraph unwraps to inline content.
// Markdown constructs the model cannot express degrade rather than fail:
// headings become bold paragraphs, images become links, raw HTML is
// dropped.
func Parse(src string) ([]*dom.Node, error) {
	if !utf8.ValidString(src) {
		return nil, &ParseError{Diagnostics: []string{"input is not valid UTF-8"}}
	}
	source := []byte(src)
	doc := parser.Parser().Parse(text.NewReader(source))
	forest := convertBlocks(doc, source)
	if len(forest) == 1 && forest[0].Kind == dom.KindParagraph {
		forest = forest[0].Children
	}
	return forest, nil
}

func convertBlocks(parent ast.Node, src []byte) []*dom.Node {
	var out []*dom.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch b := n.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			out = append(out, dom.NewContainer(dom.KindParagraph, convertInlines(n, src)...))
		case *ast.Heading:
			inner := convertInlines(n, src)
			if len(inner) > 0 {
				inner = []*dom.Node{dom.NewFormatting(dom.FormatBold, inner...)}
			}
			out = append(out, dom.NewContainer(dom.KindParagraph, inner...))
		case *ast.Blockquote:
			out = append(out, dom.NewContainer(dom.KindQuote, convertBlocks(n, src)...))
		case *ast.FencedCodeBlock:
			out = append(out, codeBlock(n, src))
		case *ast.CodeBlock:
			out = append(out, codeBlock(n, src))
		case *ast.List:
			out = append(out, convertList(b, src))
		case *ast.ThematicBreak, *ast.HTMLBlock:
			// Nothing the model can hold.
		}
	}
	return out
}

func codeBlock(n ast.Node, src []byte) *dom.Node {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	content := strings.TrimSuffix(b.String(), "\n")
	block := dom.NewContainer(dom.KindCodeBlock)
	if content != "" {
		block.Append(dom.NewText(content))
	}
	return block
}

func convertList(n *ast.List, src []byte) *dom.Node {
	var items []*dom.Node
	for li := n.FirstChild(); li != nil; li = li.NextSibling() {
		item, hoisted := convertListItem(li, src)
		items = append(items, item)
		items = append(items, hoisted...)
	}
	return dom.NewList(n.IsOrdered(), items...)
}

// convertListItem flattens the item's blocks to inline content joined by
// line breaks; nested lists hoist out as siblings, matching the tree's
// list shape.
func convertListItem(li ast.Node, src []byte) (*dom.Node, []*dom.Node) {
	var inline []*dom.Node
	var hoisted []*dom.Node
	for _, c := range convertBlocks(li, src) {
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

func convertInlines(parent ast.Node, src []byte) []*dom.Node {
	var out []*dom.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch in := n.(type) {
		case *ast.Text:
			out = append(out, dom.NewText(string(in.Segment.Value(src))))
			if in.HardLineBreak() {
				out = append(out, dom.NewLineBreak())
			} else if in.SoftLineBreak() {
				out = append(out, dom.NewText(" "))
			}
		case *ast.String:
			out = append(out, dom.NewText(string(in.Value)))
		case *ast.Emphasis:
			f := dom.FormatItalic
			if in.Level >= 2 {
				f = dom.FormatBold
			}
			out = append(out, dom.NewFormatting(f, convertInlines(n, src)...))
		case *east.Strikethrough:
			out = append(out, dom.NewFormatting(dom.FormatStrikeThrough, convertInlines(n, src)...))
		case *ast.CodeSpan:
			out = append(out, dom.NewFormatting(dom.FormatInlineCode, dom.NewText(inlineText(n, src))))
		case *ast.Link:
			out = append(out, convertLink(string(in.Destination), n, src))
		case *ast.AutoLink:
			url := string(in.URL(src))
			out = append(out, dom.NewLink(url, dom.NewText(string(in.Label(src)))))
		case *ast.Image:
			// No image node in the model; keep the reference reachable.
			out = append(out, dom.NewLink(string(in.Destination), dom.NewText(inlineText(n, src))))
		case *ast.RawHTML:
			// Inline HTML is not round-tripped through markdown.
		}
	}
	return out
}

func convertLink(dest string, n ast.Node, src []byte) *dom.Node {
	if dom.IsMentionURL(dest) {
		return dom.NewMention(dest, inlineText(n, src))
	}
	return dom.NewLink(dest, convertInlines(n, src)...)
}

// inlineText flattens a subtree to its text, for constructs whose content
// the model keeps as a plain string.
func inlineText(parent ast.Node, src []byte) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch in := n.(type) {
		case *ast.Text:
			b.Write(in.Segment.Value(src))
		case *ast.String:
			b.Write(in.Value)
		default:
			b.WriteString(inlineText(n, src))
		}
	}
	return b.String()
}
