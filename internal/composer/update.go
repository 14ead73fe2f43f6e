package composer

import (
	"github.com/dshills/quill/internal/dom"
	"github.com/dshills/quill/internal/suggestion"
)

// Selection is a caret pair in flat document space. Anchor is where the
// selection started, Head where it ends; Head may precede Anchor.
type Selection struct {
	Anchor dom.Location
	Head   dom.Location
}

// IsCollapsed reports whether the selection is a bare caret.
func (s Selection) IsCollapsed() bool { return s.Anchor == s.Head }

// TextUpdateKind says what the presentation layer should do with its
// text state after a command.
type TextUpdateKind int

const (
	// TextKeep leaves the presented text and selection untouched.
	TextKeep TextUpdateKind = iota
	// TextSelect keeps the text but moves the selection.
	TextSelect
	// TextReplaceAll swaps in new content and the selection within it.
	TextReplaceAll
)

// TextUpdate carries the text side of an Update. HTML is set only for
// TextReplaceAll; Selection for TextSelect and TextReplaceAll.
type TextUpdate struct {
	Kind      TextUpdateKind
	HTML      string
	Selection Selection
}

// MenuActionKind says whether anything around the caret wants a popup.
type MenuActionKind int

const (
	MenuActionNone MenuActionKind = iota
	// MenuActionSuggestion asks for a completion popup over the
	// pattern in Suggestion.
	MenuActionSuggestion
)

// MenuAction is the popup request accompanying an Update.
type MenuAction struct {
	Kind       MenuActionKind
	Suggestion suggestion.Pattern
}

// Update is what every command returns: the text delta, the state of
// each menu action at the resulting selection, and any popup request.
type Update struct {
	Text   TextUpdate
	Menu   MenuState
	Action MenuAction
}
