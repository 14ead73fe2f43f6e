package composer

import (
	"github.com/dshills/quill/internal/crdt"
	"github.com/dshills/quill/internal/dom"
	"github.com/dshills/quill/internal/suggestion"
)

// Backend is the editing contract both storage models implement. Every
// command reports whether it changed the document; selection-only and
// refused commands return false. Locations arrive raw: each command
// clamps and snaps for itself.
type Backend interface {
	// Select moves the selection without touching content.
	Select(anchor, head dom.Location)

	ReplaceText(text string) bool
	ReplaceTextIn(text string, start, end dom.Location) bool
	ReplaceTextSuggestion(text string, pat suggestion.Pattern) bool
	Enter() bool
	Backspace() bool
	DeleteForward() bool

	ToggleFormat(f dom.Format) bool
	SetLink(url string) bool
	SetLinkWithText(url, text string) bool
	RemoveLinks() bool

	InsertMention(url, text string) bool
	InsertMentionAtSuggestion(url, text string, pat suggestion.Pattern) bool

	ToggleOrderedList() bool
	ToggleUnorderedList() bool
	ToggleQuote() bool
	ToggleCodeBlock() bool

	InsertNodes(nodes []*dom.Node) bool
	SetContent(nodes []*dom.Node)
	Clear()

	Undo() bool
	Redo() bool

	Tree() *dom.Tree
	Selection() Selection
	Pending() []dom.Format
	CanUndo() bool
	CanRedo() bool
}

// collaborative is the extra surface of a backend that syncs with other
// replicas.
type collaborative interface {
	ApplyRemote(ops []crdt.Op)
	TakeOutbound() []crdt.Op
	Replica() string
}
