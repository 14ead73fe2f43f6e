package dom

import (
	"strconv"
	"strings"
)

// DebugTree renders the document structure as an indented tree, one node
// per line. Meant for logs and test failure output, not for parsing.
func DebugTree(t *Tree) string {
	var b strings.Builder
	b.WriteString("generic")
	writeDebug(&b, t.root.Children, "")
	return b.String()
}

func writeDebug(b *strings.Builder, children []*Node, indent string) {
	for i, c := range children {
		branch, childIndent := "├─ ", indent+"│  "
		if i == len(children)-1 {
			branch, childIndent = "└─ ", indent+"   "
		}
		b.WriteString("\n" + indent + branch + debugLabel(c))
		writeDebug(b, c.Children, childIndent)
	}
}

func debugLabel(n *Node) string {
	switch n.Kind {
	case KindText:
		return strconv.Quote(n.Text)
	case KindMention:
		return "mention " + strconv.Quote(n.Display)
	case KindFormatting:
		return n.Format.String()
	case KindLink:
		return "a " + strconv.Quote(n.URL)
	case KindList:
		if n.Ordered {
			return "ol"
		}
		return "ul"
	default:
		return n.Kind.String()
	}
}
