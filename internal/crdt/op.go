package crdt

// OpKind discriminates replicated operations.
type OpKind int

const (
	// OpInsert adds a new element. Duplicate positions are ignored.
	OpInsert OpKind = iota
	// OpVis writes the visibility register (delete or revive).
	OpVis
	// OpStyle writes one style register.
	OpStyle
	// OpDesc writes a boundary element's block descriptor.
	OpDesc
	// OpHead writes the head descriptor covering the first block.
	OpHead
)

// Op is one replicated operation. Every local mutation of the model is
// expressed as a series of Ops; the same series is what remote replicas
// consume, so local apply and remote apply share one code path.
type Op struct {
	Kind OpKind
	Pos  Pos

	// Insert payload.
	Elem    ElemKind
	Unit    uint16
	URL     string
	Display string
	Styles  StyleSet

	// Desc payload for boundary inserts, OpDesc, and OpHead.
	Desc BlockDesc

	// Vis payload.
	Deleted bool

	// Style payload, stamped inside the value.
	Field StyleField
	Style StyleValue

	// Stamp and Replica clock the Vis, Desc, and Head writes.
	Stamp   uint64
	Replica string
}
