package dom

import (
	"fmt"
	"strings"
)

// MentionPermalinkPrefix is the permalink prefix identifying a user or room
// pill. Links with this target parse into mention nodes in every format.
const MentionPermalinkPrefix = "https://matrix.to/#/"

// IsMentionURL reports whether a link target addresses a mention pill.
func IsMentionURL(url string) bool {
	return strings.HasPrefix(url, MentionPermalinkPrefix)
}

// NodeKind identifies the variant of a Node.
type NodeKind int

const (
	// KindText is a leaf carrying document text.
	KindText NodeKind = iota
	// KindLineBreak is a leaf marking an explicit line break (<br>).
	KindLineBreak
	// KindMention is an atomic leaf: a pill the user cannot edit inside.
	// Its display text is presentation data, not document text; externally
	// a mention occupies exactly one code unit.
	KindMention
	// KindGeneric is the implicit root wrapper. Exactly one exists per tree.
	KindGeneric
	// KindParagraph is a block container for inline content.
	KindParagraph
	// KindQuote is a block container holding other blocks.
	KindQuote
	// KindCodeBlock is a block container holding preformatted text.
	KindCodeBlock
	// KindList is a block container holding list items.
	KindList
	// KindListItem is a block container for one list entry's inline content.
	KindListItem
	// KindFormatting wraps inline content in one formatting style.
	KindFormatting
	// KindLink wraps inline content in a hyperlink.
	KindLink
)

// String returns the kind name used in debug trees.
func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLineBreak:
		return "br"
	case KindMention:
		return "mention"
	case KindGeneric:
		return "generic"
	case KindParagraph:
		return "p"
	case KindQuote:
		return "blockquote"
	case KindCodeBlock:
		return "codeblock"
	case KindList:
		return "list"
	case KindListItem:
		return "li"
	case KindFormatting:
		return "format"
	case KindLink:
		return "a"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Format identifies an inline formatting style.
type Format int

// Formatting styles in canonical nesting order: when the engine rebuilds
// inline content, an earlier style wraps a later one.
const (
	FormatBold Format = iota
	FormatItalic
	FormatStrikeThrough
	FormatUnderline
	FormatInlineCode
)

// Formats lists every style in canonical order.
var Formats = []Format{FormatBold, FormatItalic, FormatStrikeThrough, FormatUnderline, FormatInlineCode}

// String returns the HTML tag conventionally used for the style.
func (f Format) String() string {
	switch f {
	case FormatBold:
		return "strong"
	case FormatItalic:
		return "em"
	case FormatStrikeThrough:
		return "del"
	case FormatUnderline:
		return "u"
	case FormatInlineCode:
		return "code"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Node is one vertex of a document tree. Nodes hold no parent pointers;
// positions are expressed as Handle paths from the root, so a subtree is
// always owned by exactly one parent.
type Node struct {
	Kind NodeKind

	// Text is the content of a KindText leaf.
	Text string

	// Format is set for KindFormatting containers.
	Format Format

	// URL is set for KindLink containers and KindMention leaves.
	URL string

	// Display is the presentation text of a KindMention leaf.
	Display string

	// Ordered distinguishes <ol> from <ul> for KindList containers.
	Ordered bool

	// Children of a container, in document order. Leaves keep this nil.
	Children []*Node
}

// NewText returns a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewLineBreak returns a line-break leaf.
func NewLineBreak() *Node {
	return &Node{Kind: KindLineBreak}
}

// NewMention returns an atomic mention leaf.
func NewMention(url, display string) *Node {
	return &Node{Kind: KindMention, URL: url, Display: display}
}

// NewContainer returns an empty container of the given kind with the
// given children.
func NewContainer(kind NodeKind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// NewFormatting returns a formatting container wrapping children.
func NewFormatting(f Format, children ...*Node) *Node {
	return &Node{Kind: KindFormatting, Format: f, Children: children}
}

// NewLink returns a link container wrapping children.
func NewLink(url string, children ...*Node) *Node {
	return &Node{Kind: KindLink, URL: url, Children: children}
}

// NewList returns a list container.
func NewList(ordered bool, items ...*Node) *Node {
	return &Node{Kind: KindList, Ordered: ordered, Children: items}
}

// IsLeaf reports whether the node can carry no children.
func (n *Node) IsLeaf() bool {
	switch n.Kind {
	case KindText, KindLineBreak, KindMention:
		return true
	}
	return false
}

// IsBlock reports whether the node is block-level. The generic root is
// neither block nor inline; it adapts to its children.
func (n *Node) IsBlock() bool {
	switch n.Kind {
	case KindParagraph, KindQuote, KindCodeBlock, KindList, KindListItem:
		return true
	}
	return false
}

// IsInline reports whether the node is inline-level.
func (n *Node) IsInline() bool {
	switch n.Kind {
	case KindText, KindLineBreak, KindMention, KindFormatting, KindLink:
		return true
	}
	return false
}

// UnitLen returns the node's length in code units. Line breaks and mentions
// count as one unit. Between two adjacent block-level children of the same
// container the flattened document carries one implicit boundary unit, the
// "\n" of the plain-text rendering.
func (n *Node) UnitLen() int {
	switch n.Kind {
	case KindText:
		return UTF16Len(n.Text)
	case KindLineBreak, KindMention:
		return 1
	}
	total := 0
	blocks := 0
	for _, c := range n.Children {
		total += c.UnitLen()
		if c.IsBlock() {
			blocks++
		}
	}
	if blocks > 1 {
		total += blocks - 1
	}
	return total
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// Append adds children to a container.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// InsertChild inserts child at index i, shifting later siblings right.
func (n *Node) InsertChild(i int, child *Node) {
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// RemoveChild removes the child at index i and returns it.
func (n *Node) RemoveChild(i int) *Node {
	c := n.Children[i]
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	return c
}

// SameContainer reports whether two containers are mergeable: identical kind
// plus identical kind-specific data.
func (n *Node) SameContainer(o *Node) bool {
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindFormatting:
		return n.Format == o.Format
	case KindLink:
		return n.URL == o.URL
	case KindList:
		return n.Ordered == o.Ordered
	}
	return true
}

// Attrs is the flattened, inheritable formatting state in effect over a run
// of inline content.
type Attrs struct {
	Bold          bool
	Italic        bool
	StrikeThrough bool
	Underline     bool
	InlineCode    bool
	LinkURL       string
}

// Has reports whether the given style is set.
func (a Attrs) Has(f Format) bool {
	switch f {
	case FormatBold:
		return a.Bold
	case FormatItalic:
		return a.Italic
	case FormatStrikeThrough:
		return a.StrikeThrough
	case FormatUnderline:
		return a.Underline
	case FormatInlineCode:
		return a.InlineCode
	}
	return false
}

// With returns a copy with the given style set or cleared.
func (a Attrs) With(f Format, on bool) Attrs {
	switch f {
	case FormatBold:
		a.Bold = on
	case FormatItalic:
		a.Italic = on
	case FormatStrikeThrough:
		a.StrikeThrough = on
	case FormatUnderline:
		a.Underline = on
	case FormatInlineCode:
		a.InlineCode = on
	}
	return a
}

// IsZero reports whether no style and no link is set.
func (a Attrs) IsZero() bool {
	return a == Attrs{}
}
