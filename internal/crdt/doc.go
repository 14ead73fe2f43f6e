// Package crdt implements the replicated storage backend: a
// position-based list CRDT over the flattened document.
//
// Every element of the sequence is one code unit of the flat document
// space: a UTF-16 unit of text, an atomic object (line break, mention),
// or a block boundary carrying the descriptor of the block it opens.
// The first block's descriptor lives on the model head. Ordering comes
// from variable-length integer positions allocated strictly between
// neighbors (GenerateBetween), with a per-replica bias so concurrent
// inserts at one spot land on distinct, deterministic positions.
//
// Deletes tombstone; elements are never removed. Visibility, each style
// field, and block descriptors are independent last-writer registers
// stamped with a Lamport clock and replica id, which makes merging
// idempotent and order-independent. Undo is not state rewind: each
// command records the inverses of its ops, and undoing replays them
// with fresh stamps, producing ordinary ops other replicas apply like
// any edit.
//
// Queries lower the visible sequence to a document tree (Tree), sharing
// the canonical block and inline rebuild with the tree backend, so both
// backends serialize identically for the same visible content.
package crdt
