package mdconv

import (
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/dshills/quill/internal/dom"
)

// Serialize renders the document as markdown. Inline content directly
// under the root becomes a single paragraph; blocks are separated by blank
// lines so the output reparses into the same structure.
func Serialize(t *dom.Tree) string {
	var b strings.Builder
	m := md.NewMarkdown(&b)
	writeBlocks(m, t.Root().Children)
	_ = m.Build()
	return strings.TrimRight(b.String(), "\n")
}

func writeBlocks(m *md.Markdown, nodes []*dom.Node) {
	if len(nodes) > 0 && !nodes[0].IsBlock() {
		m.PlainText(inlineMarkdown(nodes))
		return
	}
	for i := 0; i < len(nodes); i++ {
		if i > 0 {
			m.LF()
		}
		n := nodes[i]
		switch n.Kind {
		case dom.KindParagraph:
			m.PlainText(inlineMarkdown(n.Children))
		case dom.KindQuote:
			m.PlainText(prefixLines(renderBlocks(n.Children), "> "))
		case dom.KindCodeBlock:
			m.CodeBlocks(md.SyntaxHighlightNone, blockText(n))
		case dom.KindList:
			writeList(m, n)
		}
	}
}

// renderBlocks renders a block forest to a standalone markdown string, for
// containers that prefix their content line by line.
func renderBlocks(nodes []*dom.Node) string {
	var b strings.Builder
	inner := md.NewMarkdown(&b)
	writeBlocks(inner, nodes)
	_ = inner.Build()
	return strings.TrimRight(b.String(), "\n")
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(prefix+l, " ")
	}
	return strings.Join(lines, "\n")
}

// writeList uses the builder's list support for flat lists and falls back
// to hand-indented lines when items nest.
func writeList(m *md.Markdown, list *dom.Node) {
	if flat, items := flatItems(list); flat {
		if list.Ordered {
			m.OrderedList(items...)
		} else {
			m.BulletList(items...)
		}
		return
	}
	m.PlainText(strings.Join(listLines(list, 0), "\n"))
}

func flatItems(list *dom.Node) (bool, []string) {
	items := make([]string, 0, len(list.Children))
	for _, c := range list.Children {
		if c.Kind != dom.KindListItem {
			return false, nil
		}
		text := inlineMarkdown(c.Children)
		if strings.Contains(text, "\n") {
			return false, nil
		}
		items = append(items, text)
	}
	return true, items
}

func listLines(list *dom.Node, depth int) []string {
	indent := strings.Repeat("    ", depth)
	marker := "- "
	if list.Ordered {
		marker = "1. "
	}
	var lines []string
	for _, c := range list.Children {
		switch c.Kind {
		case dom.KindListItem:
			item := strings.Split(inlineMarkdown(c.Children), "\n")
			lines = append(lines, indent+marker+item[0])
			for _, cont := range item[1:] {
				lines = append(lines, indent+strings.Repeat(" ", len(marker))+cont)
			}
		case dom.KindList:
			lines = append(lines, listLines(c, depth+1)...)
		}
	}
	return lines
}

func blockText(n *dom.Node) string {
	var b strings.Builder
	var walk func(*dom.Node)
	walk = func(n *dom.Node) {
		switch n.Kind {
		case dom.KindText:
			b.WriteString(n.Text)
		case dom.KindLineBreak:
			b.WriteByte('\n')
		case dom.KindMention:
			b.WriteString(n.Display)
		default:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	for _, c := range n.Children {
		walk(c)
	}
	return b.String()
}

func inlineMarkdown(nodes []*dom.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case dom.KindText:
			b.WriteString(escapeMarkdown(n.Text))
		case dom.KindLineBreak:
			b.WriteString("\\\n")
		case dom.KindMention:
			b.WriteString(md.Link(n.Display, n.URL))
		case dom.KindFormatting:
			inner := inlineMarkdown(n.Children)
			switch n.Format {
			case dom.FormatBold:
				b.WriteString(md.Bold(inner))
			case dom.FormatItalic:
				b.WriteString(md.Italic(inner))
			case dom.FormatStrikeThrough:
				b.WriteString(md.Strikethrough(inner))
			case dom.FormatUnderline:
				// Markdown has no underline; inline HTML is the
				// conventional fallback.
				b.WriteString("<u>" + inner + "</u>")
			case dom.FormatInlineCode:
				b.WriteString(md.Code(blockText(n)))
			}
		case dom.KindLink:
			b.WriteString(md.Link(inlineMarkdown(n.Children), n.URL))
		default:
			b.WriteString(inlineMarkdown(n.Children))
		}
	}
	return b.String()
}

// escapeMarkdown protects literal text from being reparsed as structure.
// Inline code content skips this; everything else gets its metacharacters
// backslashed, plus the block-introducer set when it opens the string.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\', '`', '*', '_', '~', '[', ']':
			b.WriteByte('\\')
		case '#', '>', '-', '+':
			if i == 0 {
				b.WriteByte('\\')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
