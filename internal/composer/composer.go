package composer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/crdt"
	"github.com/dshills/quill/internal/dom"
	"github.com/dshills/quill/internal/htmlconv"
	"github.com/dshills/quill/internal/mdconv"
	"github.com/dshills/quill/internal/projection"
	"github.com/dshills/quill/internal/suggestion"
)

// Composer is the facade embedders talk to: commands in, Updates out.
// Safe for concurrent use.
type Composer struct {
	mu      sync.RWMutex
	backend Backend
	sugg    *suggestion.Engine

	maxHistory int
	useCRDT    bool
	replica    string
	rules      []suggestion.Rule
	initHTML   string
}

// New builds a composer. The zero configuration edits an empty
// document on the tree backend with default history depth.
func New(opts ...Option) (*Composer, error) {
	c := &Composer{
		maxHistory: DefaultMaxHistoryEntries,
		sugg:       suggestion.NewEngine(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.useCRDT {
		if c.replica == "" {
			c.replica = uuid.NewString()
		}
		c.backend = newCRDTModel(c.replica)
	} else {
		c.backend = newTreeModel(c.maxHistory)
	}
	for _, r := range c.rules {
		c.sugg.Register(r)
	}
	if c.initHTML != "" {
		if _, err := c.SetContentFromHTML(c.initHTML); err != nil {
			return nil, fmt.Errorf("composer: initial content: %w", err)
		}
	}
	return c, nil
}

// Close releases resources held by custom suggestion rules.
func (c *Composer) Close() {
	c.sugg.Close()
}

// command runs one backend command and renders the resulting Update.
func (c *Composer) command(op func() bool) Update {
	before := c.backend.Selection()
	return c.updateAfter(before, op())
}

// updateAfter renders the Update for whatever just happened: replaced
// content when the document changed, a caret move when only the
// selection did, otherwise keep.
func (c *Composer) updateAfter(before Selection, changed bool) Update {
	t := c.backend.Tree()
	sel := c.backend.Selection()
	u := Update{
		Menu:   computeMenu(t, sel, c.backend.Pending(), c.backend.CanUndo(), c.backend.CanRedo()),
		Action: c.scanSuggestion(t, sel),
	}
	safe := safeSelection(t, sel)
	switch {
	case changed:
		u.Text = TextUpdate{Kind: TextReplaceAll, HTML: htmlconv.Serialize(t), Selection: safe}
	case sel != before:
		u.Text = TextUpdate{Kind: TextSelect, Selection: safe}
	}
	return u
}

func (c *Composer) scanSuggestion(t *dom.Tree, sel Selection) MenuAction {
	start, end := t.ClampInterval(sel.Anchor, sel.Head)
	pat, ok := c.sugg.Scan(projection.Project(t), start, end)
	if !ok {
		return MenuAction{}
	}
	return MenuAction{Kind: MenuActionSuggestion, Suggestion: pat}
}

// safeSelection clamps a selection for presentation, keeping its
// direction.
func safeSelection(t *dom.Tree, sel Selection) Selection {
	start, end := t.ClampInterval(sel.Anchor, sel.Head)
	if sel.Head < sel.Anchor {
		return Selection{Anchor: end, Head: start}
	}
	return Selection{Anchor: start, Head: end}
}

// Select moves the selection. The text side of the Update stays Keep:
// the caller already holds the caret it reports.
func (c *Composer) Select(anchor, head Location) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend.Select(anchor, head)
	return c.updateAfter(c.backend.Selection(), false)
}

// ReplaceText replaces the selection with entered text.
func (c *Composer) ReplaceText(text string) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.ReplaceText(text) })
}

// ReplaceTextIn replaces an explicit range, leaving the caret after the
// new text.
func (c *Composer) ReplaceTextIn(text string, start, end Location) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.ReplaceTextIn(text, start, end) })
}

// ReplaceTextSuggestion replaces a scanned pattern with chosen text and
// a trailing space.
func (c *Composer) ReplaceTextSuggestion(text string, pat Pattern) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.ReplaceTextSuggestion(text, pat) })
}

// Enter splits the block at the caret; in code blocks it types a
// newline, and on an empty list item it leaves the list.
func (c *Composer) Enter() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.Enter)
}

// Backspace deletes the selection, or one position back from a caret.
func (c *Composer) Backspace() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.Backspace)
}

// DeleteForward deletes the selection, or one position ahead of a
// caret.
func (c *Composer) DeleteForward() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.DeleteForward)
}

// ToggleFormat toggles one inline format over the selection; at a
// caret the toggle goes pending and colors the next insertion.
func (c *Composer) ToggleFormat(f Format) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.ToggleFormat(f) })
}

// SetLink links the selected text to url.
func (c *Composer) SetLink(url string) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.SetLink(url) })
}

// SetLinkWithText inserts new linked text at the selection.
func (c *Composer) SetLinkWithText(url, text string) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.SetLinkWithText(url, text) })
}

// RemoveLinks strips links from the selection, or from the whole link
// under a caret. The selection stays put.
func (c *Composer) RemoveLinks() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.RemoveLinks)
}

// InsertMention inserts an atomic mention over the selection.
func (c *Composer) InsertMention(url, text string) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.InsertMention(url, text) })
}

// InsertMentionAtSuggestion replaces a scanned pattern with a mention
// and a trailing space.
func (c *Composer) InsertMentionAtSuggestion(url, text string, pat Pattern) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(func() bool { return c.backend.InsertMentionAtSuggestion(url, text, pat) })
}

// ToggleOrderedList makes the covered blocks an ordered list, or
// unwraps them when they already are one.
func (c *Composer) ToggleOrderedList() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.ToggleOrderedList)
}

// ToggleUnorderedList makes the covered blocks an unordered list, or
// unwraps them when they already are one.
func (c *Composer) ToggleUnorderedList() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.ToggleUnorderedList)
}

// ToggleQuote wraps the covered blocks in a quote, or unquotes them.
func (c *Composer) ToggleQuote() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.ToggleQuote)
}

// ToggleCodeBlock joins the covered blocks into a code block, or splits
// code back into paragraphs.
func (c *Composer) ToggleCodeBlock() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.ToggleCodeBlock)
}

// InsertHTML pastes markup at the selection after source-specific
// cleanup. The document is untouched when parsing fails.
func (c *Composer) InsertHTML(markup string, source Source) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	nodes, err := htmlconv.Parse(htmlconv.Clean(markup, source))
	if err != nil {
		return c.updateAfter(c.backend.Selection(), false), err
	}
	return c.command(func() bool { return c.backend.InsertNodes(nodes) }), nil
}

// SetContentFromHTML replaces the whole document from message HTML,
// clearing history and parking the caret at the end. The document is
// untouched when parsing fails.
func (c *Composer) SetContentFromHTML(markup string) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	nodes, err := htmlconv.Parse(markup)
	if err != nil {
		return c.updateAfter(c.backend.Selection(), false), err
	}
	c.backend.SetContent(nodes)
	return c.updateAfter(c.backend.Selection(), true), nil
}

// SetContentFromMarkdown replaces the whole document from markdown
// source, clearing history and parking the caret at the end.
func (c *Composer) SetContentFromMarkdown(src string) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	nodes, err := mdconv.Parse(src)
	if err != nil {
		return c.updateAfter(c.backend.Selection(), false), err
	}
	c.backend.SetContent(nodes)
	return c.updateAfter(c.backend.Selection(), true), nil
}

// Clear empties the document and the edit history.
func (c *Composer) Clear() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend.Clear()
	return c.updateAfter(c.backend.Selection(), true)
}

// Undo rolls back the last command.
func (c *Composer) Undo() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.Undo)
}

// Redo reapplies the last undone command.
func (c *Composer) Redo() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(c.backend.Redo)
}

// ApplyRemote merges operations produced by another replica. Only the
// CRDT backend can; others report ErrNotCollaborative.
func (c *Composer) ApplyRemote(ops []Op) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cb, ok := c.backend.(collaborative)
	if !ok {
		return c.updateAfter(c.backend.Selection(), false), ErrNotCollaborative
	}
	before := c.backend.Selection()
	cb.ApplyRemote(ops)
	return c.updateAfter(before, true), nil
}

// TakeOutbound drains the operations local commands have produced for
// broadcast to other replicas.
func (c *Composer) TakeOutbound() ([]Op, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cb, ok := c.backend.(collaborative)
	if !ok {
		return nil, ErrNotCollaborative
	}
	return cb.TakeOutbound(), nil
}

// Replica returns the CRDT replica id, or "" on the tree backend.
func (c *Composer) Replica() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cb, ok := c.backend.(collaborative); ok {
		return cb.Replica()
	}
	return ""
}

// RegisterRule adds a custom suggestion trigger at runtime.
func (c *Composer) RegisterRule(r Rule) {
	if r != nil {
		c.sugg.Register(r)
	}
}

// SuggestionRuleNames lists the registered custom trigger names.
func (c *Composer) SuggestionRuleNames() []string {
	return c.sugg.RuleNames()
}

// ContentAsHTML serializes the document to message HTML.
func (c *Composer) ContentAsHTML() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return htmlconv.Serialize(c.backend.Tree())
}

// ContentAsMarkdown serializes the document to markdown.
func (c *Composer) ContentAsMarkdown() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return mdconv.Serialize(c.backend.Tree())
}

// ContentAsPlainText flattens the document to text: boundaries and
// breaks become newlines, mentions their display text.
func (c *Composer) ContentAsPlainText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend.Tree().PlainText()
}

// DebugTree renders the document tree in indented debug form.
func (c *Composer) DebugTree() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dom.DebugTree(c.backend.Tree())
}

// Selection returns the selection as last set, unclamped.
func (c *Composer) Selection() Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend.Selection()
}

// SafeSelection returns the selection clamped to the document,
// direction preserved.
func (c *Composer) SafeSelection() Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return safeSelection(c.backend.Tree(), c.backend.Selection())
}

// HasSelection reports whether the clamped selection covers content.
func (c *Composer) HasSelection() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start, end := c.backend.Tree().ClampInterval(c.backend.Selection().Anchor, c.backend.Selection().Head)
	return start < end
}

// HasCursor reports whether the clamped selection is a bare caret.
func (c *Composer) HasCursor() bool {
	return !c.HasSelection()
}

// BlockProjections returns the flattened per-block view of the
// document, for rendering and completion overlays.
func (c *Composer) BlockProjections() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return projection.Project(c.backend.Tree())
}

// CanUndo reports whether a command can be rolled back.
func (c *Composer) CanUndo() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend.CanUndo()
}

// CanRedo reports whether an undone command can be reapplied.
func (c *Composer) CanRedo() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend.CanRedo()
}

// Len returns the document length in code units.
func (c *Composer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend.Tree().Len()
}

// IsEmpty reports whether the document holds no content.
func (c *Composer) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend.Tree().IsEmpty()
}

// Shared vocabulary re-exported so embedders work with one package.
type (
	Location = dom.Location
	Format   = dom.Format
	Attrs    = dom.Attrs
	Pattern  = suggestion.Pattern
	Rule     = suggestion.Rule
	Source   = htmlconv.Source
	Block    = projection.Block
	Run      = projection.Run
	Op       = crdt.Op
)

const (
	FormatBold          = dom.FormatBold
	FormatItalic        = dom.FormatItalic
	FormatStrikeThrough = dom.FormatStrikeThrough
	FormatUnderline     = dom.FormatUnderline
	FormatInlineCode    = dom.FormatInlineCode

	SourceUnknown   = htmlconv.SourceUnknown
	SourceMatrix    = htmlconv.SourceMatrix
	SourceGoogleDoc = htmlconv.SourceGoogleDoc
	SourceMSDoc     = htmlconv.SourceMSDoc

	KeyAt     = suggestion.KeyAt
	KeyHash   = suggestion.KeyHash
	KeySlash  = suggestion.KeySlash
	KeyCustom = suggestion.KeyCustom
)
