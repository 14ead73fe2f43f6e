package composer

import (
	"github.com/dshills/quill/internal/dom"
)

// Action names one menu command of the composer.
type Action int

const (
	ActionBold Action = iota
	ActionItalic
	ActionStrikeThrough
	ActionUnderline
	ActionInlineCode
	ActionLink
	ActionOrderedList
	ActionUnorderedList
	ActionQuote
	ActionCodeBlock
	ActionMention
	ActionUndo
	ActionRedo
	ActionClear
)

var actionNames = map[Action]string{
	ActionBold:          "bold",
	ActionItalic:        "italic",
	ActionStrikeThrough: "strikethrough",
	ActionUnderline:     "underline",
	ActionInlineCode:    "inline-code",
	ActionLink:          "link",
	ActionOrderedList:   "ordered-list",
	ActionUnorderedList: "unordered-list",
	ActionQuote:         "quote",
	ActionCodeBlock:     "code-block",
	ActionMention:       "mention",
	ActionUndo:          "undo",
	ActionRedo:          "redo",
	ActionClear:         "clear",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// ActionState is what a menu button should present.
type ActionState int

const (
	StateEnabled ActionState = iota
	StateActive
	StateDisabled
)

func (s ActionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDisabled:
		return "disabled"
	default:
		return "enabled"
	}
}

// LinkActionKind is the flavor of link command the selection allows.
type LinkActionKind int

const (
	// LinkCreateWithText asks for both a url and the text to insert.
	LinkCreateWithText LinkActionKind = iota
	// LinkCreate links the selected text to an asked-for url.
	LinkCreate
	// LinkEdit edits the url of the link under the selection.
	LinkEdit
	// LinkDisabled means no link command applies here.
	LinkDisabled
)

func (k LinkActionKind) String() string {
	switch k {
	case LinkCreateWithText:
		return "create-with-text"
	case LinkCreate:
		return "create"
	case LinkEdit:
		return "edit"
	default:
		return "disabled"
	}
}

// LinkAction describes the link command available at the selection.
// URL is set for LinkEdit.
type LinkAction struct {
	Kind LinkActionKind
	URL  string
}

// MenuState is the state of every menu action at one selection.
type MenuState struct {
	Actions map[Action]ActionState
	Link    LinkAction
}

// computeMenu derives the menu for the current document and selection.
// The selection is clamped, not snapped: menu state is a read and must
// not depend on edit normalization.
func computeMenu(t *dom.Tree, sel Selection, pending []dom.Format, canUndo, canRedo bool) MenuState {
	start, end := t.ClampInterval(sel.Anchor, sel.Head)
	blocks := t.SpansIn(start, end)

	inCode := false
	allCode, allQuote := true, true
	allOrdered, allUnordered := true, true
	for _, sp := range blocks {
		if sp.Node.Kind == dom.KindCodeBlock {
			inCode = true
		} else {
			allCode = false
		}
		if !sp.InQuote && sp.Node.Kind != dom.KindQuote {
			allQuote = false
		}
		if sp.Node.Kind != dom.KindListItem || !sp.Ordered {
			allOrdered = false
		}
		if sp.Node.Kind != dom.KindListItem || sp.Ordered {
			allUnordered = false
		}
	}

	active := activeAttrs(t, start, end, pending)
	inlineCode := active.Has(dom.FormatInlineCode)

	st := make(map[Action]ActionState, len(actionNames))
	for _, f := range dom.Formats {
		a := formatAction(f)
		switch {
		case inCode:
			st[a] = StateDisabled
		case inlineCode && f != dom.FormatInlineCode:
			st[a] = StateDisabled
		case active.Has(f):
			st[a] = StateActive
		default:
			st[a] = StateEnabled
		}
	}

	st[ActionOrderedList] = activeWhen(allOrdered)
	st[ActionUnorderedList] = activeWhen(allUnordered)
	st[ActionQuote] = activeWhen(allQuote)
	st[ActionCodeBlock] = activeWhen(allCode)

	if inCode || inlineCode {
		st[ActionMention] = StateDisabled
	} else {
		st[ActionMention] = StateEnabled
	}

	link := LinkAction{Kind: LinkCreate}
	switch {
	case inCode || inlineCode:
		link.Kind = LinkDisabled
		st[ActionLink] = StateDisabled
	case active.LinkURL != "":
		link = LinkAction{Kind: LinkEdit, URL: active.LinkURL}
		st[ActionLink] = StateActive
	case start == end:
		link.Kind = LinkCreateWithText
		st[ActionLink] = StateEnabled
	default:
		st[ActionLink] = StateEnabled
	}

	st[ActionUndo] = enabledWhen(canUndo)
	st[ActionRedo] = enabledWhen(canRedo)
	st[ActionClear] = enabledWhen(!t.IsEmpty())

	return MenuState{Actions: st, Link: link}
}

// activeAttrs resolves the formatting reported as active: at a caret,
// the formatting in effect there adjusted by pending toggles; over a
// range, the formatting every covered run shares.
func activeAttrs(t *dom.Tree, start, end dom.Location, pending []dom.Format) dom.Attrs {
	if start == end {
		a := attrsAt(t, start)
		for _, f := range pending {
			a = a.With(f, !a.Has(f))
		}
		return a
	}
	items := t.ExtractInlines(start, end)
	var a dom.Attrs
	for _, f := range dom.Formats {
		if dom.AllHave(items, f) {
			a = a.With(f, true)
		}
	}
	a.LinkURL = sharedLink(items)
	return a
}

// sharedLink returns the one url every run links to, or "".
func sharedLink(items []dom.Inline) string {
	if len(items) == 0 {
		return ""
	}
	url := items[0].Attrs.LinkURL
	for _, it := range items[1:] {
		if it.Attrs.LinkURL != url {
			return ""
		}
	}
	return url
}

func formatAction(f dom.Format) Action {
	switch f {
	case dom.FormatBold:
		return ActionBold
	case dom.FormatItalic:
		return ActionItalic
	case dom.FormatStrikeThrough:
		return ActionStrikeThrough
	case dom.FormatUnderline:
		return ActionUnderline
	default:
		return ActionInlineCode
	}
}

func activeWhen(active bool) ActionState {
	if active {
		return StateActive
	}
	return StateEnabled
}

func enabledWhen(enabled bool) ActionState {
	if enabled {
		return StateEnabled
	}
	return StateDisabled
}
