package dom

// InlineKind discriminates the flat inline run variants.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineBreak
	InlineMention
)

// Inline is one run of the flattened inline view: a maximal piece of leaf
// content together with the formatting it inherits from its wrappers.
// Breaks and mentions occupy one unit each and carry the surrounding
// formatting so a rebuild keeps them inside the same wrappers.
type Inline struct {
	Kind    InlineKind
	Text    string
	Attrs   Attrs
	URL     string
	Display string
}

// UnitLen returns the run's width in code units.
func (in Inline) UnitLen() int {
	switch in.Kind {
	case InlineText:
		return UTF16Len(in.Text)
	default:
		return 1
	}
}

// ExtractInlines flattens the leaf content of [start, end) into runs.
// Block boundaries inside the interval contribute nothing; callers that
// care about block structure work span by span.
func (t *Tree) ExtractInlines(start, end Location) []Inline {
	r := t.Resolve(start, end)
	out := make([]Inline, 0, len(r.Segments))
	for _, seg := range r.Segments {
		attrs := t.AttrsAt(seg.Handle)
		switch seg.Leaf.Kind {
		case KindText:
			out = append(out, Inline{Kind: InlineText, Text: seg.Text(), Attrs: attrs})
		case KindLineBreak:
			out = append(out, Inline{Kind: InlineBreak, Attrs: attrs})
		case KindMention:
			out = append(out, Inline{
				Kind:    InlineMention,
				Attrs:   attrs,
				URL:     seg.Leaf.URL,
				Display: seg.Leaf.Display,
			})
		}
	}
	return out
}

// MapAttrs returns a copy of the runs with fn applied to each run's
// formatting. Mention and break runs are transformed too, so toggles keep
// them grouped with their neighbours.
func MapAttrs(items []Inline, fn func(Attrs) Attrs) []Inline {
	out := make([]Inline, len(items))
	for i, it := range items {
		it.Attrs = fn(it.Attrs)
		out[i] = it
	}
	return out
}

// AllHave reports whether every run carries the format. Runs of zero width
// cannot occur, so an empty slice reports false.
func AllHave(items []Inline, f Format) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.Attrs.Has(f) {
			return false
		}
	}
	return true
}

// wrapperLevels: level 0 groups by link, levels 1..len(Formats) by the
// format at Formats[level-1], the last level emits leaves. The fixed order
// makes rebuilds deterministic, so two documents with the same runs always
// produce the same node structure.
var leafLevel = len(Formats) + 1

// BuildInline assembles runs into inline nodes, nesting wrappers in the
// canonical order: link outermost, then bold, italic, strikethrough,
// underline, inline code. Adjacent runs sharing a wrapper share the node.
func BuildInline(items []Inline) []*Node {
	return buildGroup(items, 0)
}

func buildGroup(items []Inline, level int) []*Node {
	if level == leafLevel {
		return buildLeaves(items)
	}
	var out []*Node
	for i := 0; i < len(items); {
		active, url := wrapperAt(items[i], level)
		j := i + 1
		for j < len(items) {
			a, u := wrapperAt(items[j], level)
			if a != active || u != url {
				break
			}
			j++
		}
		children := buildGroup(items[i:j], level+1)
		if active && len(children) > 0 {
			out = append(out, wrapNode(level, url, children))
		} else {
			out = append(out, children...)
		}
		i = j
	}
	return out
}

// wrapperAt reports whether the run is wrapped at the level, and for the
// link level also the URL keying the group.
func wrapperAt(it Inline, level int) (bool, string) {
	if level == 0 {
		return it.Attrs.LinkURL != "", it.Attrs.LinkURL
	}
	return it.Attrs.Has(Formats[level-1]), ""
}

func wrapNode(level int, url string, children []*Node) *Node {
	if level == 0 {
		return NewLink(url, children...)
	}
	return NewFormatting(Formats[level-1], children...)
}

func buildLeaves(items []Inline) []*Node {
	var out []*Node
	for _, it := range items {
		switch it.Kind {
		case InlineText:
			if it.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Kind == KindText {
				out[n-1].Text += it.Text
				continue
			}
			out = append(out, NewText(it.Text))
		case InlineBreak:
			out = append(out, NewLineBreak())
		case InlineMention:
			out = append(out, NewMention(it.URL, it.Display))
		}
	}
	return out
}
