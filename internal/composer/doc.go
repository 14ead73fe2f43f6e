// Package composer is the editing engine behind a rich-text message
// input: one facade over a document tree, an edit history, menu state,
// and trigger-word suggestions.
//
// Every command runs against a backend chosen at construction. The
// default backend edits the document tree directly and snapshots it
// for undo; WithCRDTBackend swaps in a replicated model that expresses
// the same commands as mergeable operations for collaborative editing.
// Both backends rebuild structure through the same block shaping, so a
// given command sequence serializes to the same HTML on either one.
//
// Commands return an Update: what the text presentation should do
// (keep, reselect, or replace everything), the state of every menu
// action at the new selection, and any suggestion pattern found around
// the caret. Locations in and out of the package are UTF-16 code unit
// offsets into the flat document space.
package composer
