package composer

import (
	"github.com/dshills/quill/internal/suggestion"
)

// DefaultMaxHistoryEntries caps the tree backend's undo depth.
const DefaultMaxHistoryEntries = 100

// Option configures a Composer at construction.
type Option func(*Composer)

// WithMaxHistoryEntries caps how many undo steps the tree backend
// keeps. Values below 1 are ignored.
func WithMaxHistoryEntries(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxHistory = n
		}
	}
}

// WithCRDTBackend stores the document in the replicated model instead
// of the local tree, enabling the collaboration surface.
func WithCRDTBackend() Option {
	return func(c *Composer) {
		c.useCRDT = true
	}
}

// WithReplicaID fixes the CRDT replica id instead of generating one.
// Empty ids are ignored.
func WithReplicaID(id string) Option {
	return func(c *Composer) {
		if id != "" {
			c.replica = id
		}
	}
}

// WithSuggestionRule registers a custom trigger rule alongside the
// built-in @, # and / triggers.
func WithSuggestionRule(r suggestion.Rule) Option {
	return func(c *Composer) {
		if r != nil {
			c.rules = append(c.rules, r)
		}
	}
}

// WithContentHTML seeds the document from message HTML. New returns
// the parse error if the markup cannot be read.
func WithContentHTML(markup string) Option {
	return func(c *Composer) {
		c.initHTML = markup
	}
}
