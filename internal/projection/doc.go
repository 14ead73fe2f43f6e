// Package projection flattens a document tree into the block and run
// model hosts render from.
//
// A Block is one visual line region (paragraph, quote line, code block,
// list item) with absolute code-unit offsets. Its Runs carry the inline
// content in order: text with flattened formatting attributes, mentions,
// and line breaks. Both storage backends project through this package,
// which keeps rendering and suggestion scanning independent of how the
// content is stored.
package projection
