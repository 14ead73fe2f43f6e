package suggestion

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/quill/internal/dom"
	"github.com/dshills/quill/internal/projection"
)

// Engine scans projected content around the selection for trigger
// patterns. The static triggers (@, #, /) are built in; hosts register
// additional rules with Register.
type Engine struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewEngine creates an engine with only the static triggers.
func NewEngine() *Engine {
	return &Engine{}
}

// Register adds a custom rule. Rules are tried in registration order
// after the static triggers.
func (e *Engine) Register(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, r)
}

// RuleNames returns the registered custom rule names in order.
func (e *Engine) RuleNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Close releases any rules holding external resources.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.rules {
		if c, ok := r.(interface{ Close() }); ok {
			c.Close()
		}
	}
	e.rules = nil
}

// Scan inspects the selection against the projected blocks and returns
// the matched pattern, if any.
//
// The candidate string is the selection extended outward to the nearest
// whitespace, run barrier (mention, line break), or block edge. No
// pattern is produced when the selection leaves its block, when the
// candidate touches code or link content, or when it contains internal
// whitespace.
func (e *Engine) Scan(blocks []projection.Block, start, end dom.Location) (Pattern, bool) {
	if start > end {
		start, end = end, start
	}

	b, ok := blockAt(blocks, start)
	if !ok || end > b.End {
		return Pattern{}, false
	}
	if b.Kind == projection.BlockCodeBlock {
		return Pattern{}, false
	}

	sel, ok := textIn(b, start, end)
	if !ok {
		return Pattern{}, false
	}

	before := trailingWord(b.TextBefore(start))
	after := leadingWord(b.TextAfter(end))

	candidate := before + sel + after
	if candidate == "" {
		return Pattern{}, false
	}
	if strings.IndexFunc(candidate, unicode.IsSpace) >= 0 {
		return Pattern{}, false
	}

	extStart := start - dom.UTF16Len(before)
	extEnd := end + dom.UTF16Len(after)
	if !plainRange(b, extStart, extEnd) {
		return Pattern{}, false
	}

	return e.match(candidate, extStart, extEnd)
}

func (e *Engine) match(candidate string, start, end dom.Location) (Pattern, bool) {
	switch candidate[0] {
	case '@':
		return Pattern{Key: KeyAt, Text: candidate[1:], Start: start, End: end}, true
	case '#':
		return Pattern{Key: KeyHash, Text: candidate[1:], Start: start, End: end}, true
	case '/':
		// Slash commands only open at the very start of the document.
		if start == 0 {
			return Pattern{Key: KeySlash, Text: candidate[1:], Start: start, End: end}, true
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.rules {
		if r.Match(candidate) {
			return Pattern{Key: KeyCustom, Name: r.Name(), Text: candidate, Start: start, End: end}, true
		}
	}
	return Pattern{}, false
}

// blockAt finds the block containing the location; a location on a block
// boundary belongs to the earlier block.
func blockAt(blocks []projection.Block, loc dom.Location) (projection.Block, bool) {
	for _, b := range blocks {
		if loc >= b.Start && loc <= b.End {
			return b, true
		}
	}
	return projection.Block{}, false
}

// textIn returns the selection text inside the block, failing when a
// mention or line break sits inside the selection.
func textIn(b projection.Block, start, end dom.Location) (string, bool) {
	if start == end {
		return "", true
	}
	var out strings.Builder
	for _, r := range b.Runs {
		if r.End <= start || r.Start >= end {
			continue
		}
		if r.Kind != projection.RunText {
			return "", false
		}
		s, e := r.Start, r.End
		if start > s {
			s = start
		}
		if end < e {
			e = end
		}
		out.WriteString(dom.UTF16Slice(r.Text, s-r.Start, e-r.Start))
	}
	return out.String(), true
}

// plainRange reports whether every run touching the interval is plain
// text with no code or link formatting.
func plainRange(b projection.Block, start, end dom.Location) bool {
	for _, r := range b.Runs {
		if r.End <= start || r.Start >= end {
			continue
		}
		if r.Kind != projection.RunText {
			return false
		}
		if r.Attrs.InlineCode || r.Attrs.LinkURL != "" {
			return false
		}
	}
	return true
}

// trailingWord returns the suffix after the last whitespace rune.
func trailingWord(s string) string {
	i := strings.LastIndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[i+size:]
}

// leadingWord returns the prefix before the first whitespace rune.
func leadingWord(s string) string {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i]
	}
	return s
}
