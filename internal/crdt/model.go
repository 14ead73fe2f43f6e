package crdt

import (
	"sort"
	"unicode/utf16"

	"github.com/dshills/quill/internal/dom"
)

// group is one undo unit: the inverse of every op a command applied,
// plus the selection to restore after applying the inverses.
type group struct {
	inverse []Op
	sel     [2]int
}

// Model is one replica of the replicated document sequence. Local edits
// produce ops that both mutate this replica and accumulate in an
// outbound buffer for the host to broadcast; ApplyRemote merges ops
// from other replicas. All methods are single-goroutine; the composer
// facade serializes access.
type Model struct {
	replica string
	bias    int
	suffix  Pos
	clock   uint64

	// elements is ordered by position and always bounded by the two
	// deleted sentinels. Elements are never removed.
	elements []*Element

	head        BlockDesc
	headStamp   uint64
	headReplica string

	undo []*group
	redo []*group
	open *group

	outbound []Op
}

// NewModel creates an empty replica. replica must be unique across the
// session; the composer uses a UUID.
func NewModel(replica string) *Model {
	return &Model{
		replica: replica,
		bias:    siteBias(replica),
		suffix:  posSuffix(replica),
		elements: []*Element{
			{Pos: posFirst.Clone(), Vis: Visibility{Deleted: true}},
			{Pos: posLast.Clone(), Vis: Visibility{Deleted: true}},
		},
		head: BlockDesc{Kind: BlockGeneric},
	}
}

// newPos allocates a position strictly between the neighbors that no
// other replica can collide with.
func (m *Model) newPos(left, right Pos) Pos {
	return append(GenerateBetween(left, right, m.bias), m.suffix...)
}

// Replica returns the replica identifier.
func (m *Model) Replica() string { return m.replica }

// Head returns the descriptor of the first block.
func (m *Model) Head() BlockDesc { return m.head }

func (m *Model) tick() uint64 {
	m.clock++
	return m.clock
}

func (m *Model) observe(stamp uint64) {
	if stamp > m.clock {
		m.clock = stamp
	}
}

// searchIndex returns the slice index of pos, or the index it would be
// inserted at.
func (m *Model) searchIndex(pos Pos) int {
	return sort.Search(len(m.elements), func(i int) bool {
		return Compare(m.elements[i].Pos, pos) >= 0
	})
}

func (m *Model) indexOf(pos Pos) int {
	i := m.searchIndex(pos)
	if i < len(m.elements) && Compare(m.elements[i].Pos, pos) == 0 {
		return i
	}
	return -1
}

// VisibleLen returns the flat document length in code units: one per
// visible element, boundaries included.
func (m *Model) VisibleLen() int {
	n := 0
	for _, el := range m.elements {
		if !el.Vis.Deleted {
			n++
		}
	}
	return n
}

// visibleIndex returns the slice index of the loc'th visible element,
// or -1 when loc is out of range.
func (m *Model) visibleIndex(loc int) int {
	if loc < 0 {
		return -1
	}
	n := 0
	for i, el := range m.elements {
		if el.Vis.Deleted {
			continue
		}
		if n == loc {
			return i
		}
		n++
	}
	return -1
}

// insertNeighbors returns the position pair to generate between for an
// insertion at loc: the previous visible element (or the left sentinel)
// and its immediate successor in the full order, tombstones included.
// Generating between adjacent full-order positions guarantees the new
// position collides with nothing.
func (m *Model) insertNeighbors(loc int) (Pos, Pos) {
	li := 0
	if loc > 0 {
		li = m.visibleIndex(loc - 1)
		if li < 0 {
			li = len(m.elements) - 2
			if li < 0 {
				li = 0
			}
		}
	}
	return m.elements[li].Pos, m.elements[li+1].Pos
}

// applyOp applies one op to the sequence and returns its inverse. The
// second result is false when the op changed nothing (duplicate insert,
// stale write, unknown position).
func (m *Model) applyOp(op Op) (Op, bool) {
	m.observe(op.Stamp)
	m.observe(op.Style.Stamp)

	switch op.Kind {
	case OpInsert:
		if m.indexOf(op.Pos) >= 0 {
			return Op{}, false
		}
		for _, sv := range op.Styles {
			m.observe(sv.Stamp)
		}
		el := &Element{
			Pos:         op.Pos.Clone(),
			Kind:        op.Elem,
			Unit:        op.Unit,
			URL:         op.URL,
			Display:     op.Display,
			Desc:        op.Desc,
			DescStamp:   op.Stamp,
			DescReplica: op.Replica,
			Vis:         Visibility{Deleted: false, Stamp: op.Stamp, Replica: op.Replica},
			Styles:      op.Styles,
		}
		i := m.searchIndex(op.Pos)
		m.elements = append(m.elements, nil)
		copy(m.elements[i+1:], m.elements[i:])
		m.elements[i] = el
		return Op{Kind: OpVis, Pos: el.Pos, Deleted: true}, true

	case OpVis:
		i := m.indexOf(op.Pos)
		if i < 0 {
			return Op{}, false
		}
		el := m.elements[i]
		v := Visibility{Deleted: op.Deleted, Stamp: op.Stamp, Replica: op.Replica}
		if !v.newer(el.Vis) {
			return Op{}, false
		}
		inv := Op{Kind: OpVis, Pos: el.Pos, Deleted: el.Vis.Deleted}
		el.Vis = v
		return inv, true

	case OpStyle:
		i := m.indexOf(op.Pos)
		if i < 0 {
			return Op{}, false
		}
		el := m.elements[i]
		if !op.Style.newer(el.Styles[op.Field]) {
			return Op{}, false
		}
		prev := el.Styles[op.Field]
		inv := Op{Kind: OpStyle, Pos: el.Pos, Field: op.Field, Style: StyleValue{On: prev.On, URL: prev.URL}}
		el.Styles[op.Field] = op.Style
		return inv, true

	case OpDesc:
		i := m.indexOf(op.Pos)
		if i < 0 {
			return Op{}, false
		}
		el := m.elements[i]
		if el.Kind != ElemBoundary {
			return Op{}, false
		}
		incoming := StyleValue{Stamp: op.Stamp, Replica: op.Replica}
		current := StyleValue{Stamp: el.DescStamp, Replica: el.DescReplica}
		if !incoming.newer(current) {
			return Op{}, false
		}
		inv := Op{Kind: OpDesc, Pos: el.Pos, Desc: el.Desc}
		el.Desc = op.Desc
		el.DescStamp = op.Stamp
		el.DescReplica = op.Replica
		return inv, true

	case OpHead:
		incoming := StyleValue{Stamp: op.Stamp, Replica: op.Replica}
		current := StyleValue{Stamp: m.headStamp, Replica: m.headReplica}
		if !incoming.newer(current) {
			return Op{}, false
		}
		inv := Op{Kind: OpHead, Desc: m.head}
		m.head = op.Desc
		m.headStamp = op.Stamp
		m.headReplica = op.Replica
		return inv, true
	}
	return Op{}, false
}

// applyLocal applies a locally produced op, buffers it for broadcast,
// and records its inverse into the open group.
func (m *Model) applyLocal(op Op) {
	inv, ok := m.applyOp(op)
	if !ok {
		return
	}
	m.outbound = append(m.outbound, op)
	if m.open != nil {
		m.open.inverse = append(m.open.inverse, inv)
	}
}

// restamp assigns a fresh local clock to an op so a replayed inverse
// wins its last-writer registers.
func (m *Model) restamp(op Op) Op {
	s := m.tick()
	op.Stamp = s
	op.Replica = m.replica
	if op.Kind == OpStyle {
		op.Style.Stamp = s
		op.Style.Replica = m.replica
	}
	return op
}

// InsertText inserts text at loc with the given formatting.
func (m *Model) InsertText(loc int, text string, attrs dom.Attrs) {
	units := utf16.Encode([]rune(text))
	if len(units) == 0 {
		return
	}
	stamp := m.tick()
	styles := stylesFor(attrs, stamp, m.replica)
	left, right := m.insertNeighbors(loc)
	for _, u := range units {
		pos := m.newPos(left, right)
		m.applyLocal(Op{
			Kind:    OpInsert,
			Pos:     pos,
			Elem:    ElemText,
			Unit:    u,
			Styles:  styles,
			Stamp:   stamp,
			Replica: m.replica,
		})
		left = pos
	}
}

// InsertBreak inserts an atomic line break at loc carrying the given
// formatting.
func (m *Model) InsertBreak(loc int, attrs dom.Attrs) {
	stamp := m.tick()
	left, right := m.insertNeighbors(loc)
	m.applyLocal(Op{
		Kind:    OpInsert,
		Pos:     m.newPos(left, right),
		Elem:    ElemBreak,
		Styles:  stylesFor(attrs, stamp, m.replica),
		Stamp:   stamp,
		Replica: m.replica,
	})
}

// InsertMention inserts an atomic mention at loc carrying the given
// formatting.
func (m *Model) InsertMention(loc int, url, display string, attrs dom.Attrs) {
	stamp := m.tick()
	left, right := m.insertNeighbors(loc)
	m.applyLocal(Op{
		Kind:    OpInsert,
		Pos:     m.newPos(left, right),
		Elem:    ElemMention,
		URL:     url,
		Display: display,
		Styles:  stylesFor(attrs, stamp, m.replica),
		Stamp:   stamp,
		Replica: m.replica,
	})
}

// InsertBoundary splits the block at loc; desc describes the block the
// new boundary opens.
func (m *Model) InsertBoundary(loc int, desc BlockDesc) {
	left, right := m.insertNeighbors(loc)
	m.applyLocal(Op{
		Kind:    OpInsert,
		Pos:     m.newPos(left, right),
		Elem:    ElemBoundary,
		Desc:    desc,
		Stamp:   m.tick(),
		Replica: m.replica,
	})
}

// DeleteRange tombstones the visible elements in [start, end).
func (m *Model) DeleteRange(start, end int) {
	if start >= end {
		return
	}
	var targets []Pos
	n := 0
	for _, el := range m.elements {
		if el.Vis.Deleted {
			continue
		}
		if n >= start && n < end {
			targets = append(targets, el.Pos)
		}
		n++
		if n >= end {
			break
		}
	}
	stamp := m.tick()
	for _, pos := range targets {
		m.applyLocal(Op{
			Kind:    OpVis,
			Pos:     pos,
			Deleted: true,
			Stamp:   stamp,
			Replica: m.replica,
		})
	}
}

// SetStyleRange writes one style register across the visible elements
// of [start, end). Boundaries are skipped; url is meaningful only for
// FieldLink.
func (m *Model) SetStyleRange(start, end int, f StyleField, on bool, url string) {
	if start >= end {
		return
	}
	val := StyleValue{On: on, URL: url, Stamp: m.tick(), Replica: m.replica}
	n := 0
	var targets []Pos
	for _, el := range m.elements {
		if el.Vis.Deleted {
			continue
		}
		if n >= start && n < end && el.Kind != ElemBoundary {
			targets = append(targets, el.Pos)
		}
		n++
		if n >= end {
			break
		}
	}
	for _, pos := range targets {
		m.applyLocal(Op{Kind: OpStyle, Pos: pos, Field: f, Style: val})
	}
}

// FlattenRange rewrites the atomic objects in [start, end) as plain
// text, the form code block content stores: mentions become their
// display text, breaks a literal newline. Style registers across the
// range are cleared. Returns the location past the rewritten range.
func (m *Model) FlattenRange(start, end int) int {
	type swap struct {
		loc  int
		text string
	}
	var swaps []swap
	n := 0
	for _, el := range m.elements {
		if el.Vis.Deleted {
			continue
		}
		if n >= end {
			break
		}
		if n >= start {
			switch el.Kind {
			case ElemBreak:
				swaps = append(swaps, swap{n, "\n"})
			case ElemMention:
				swaps = append(swaps, swap{n, el.Display})
			}
		}
		n++
	}
	for i := len(swaps) - 1; i >= 0; i-- {
		s := swaps[i]
		m.DeleteRange(s.loc, s.loc+1)
		m.InsertText(s.loc, s.text, dom.Attrs{})
		end += dom.UTF16Len(s.text) - 1
	}
	for f := StyleField(0); f < numStyleFields; f++ {
		m.SetStyleRange(start, end, f, false, "")
	}
	return end
}

// BreakNewlines rewrites literal newline units in [start, end) as line
// break objects, the form paragraph content stores.
func (m *Model) BreakNewlines(start, end int) {
	var locs []int
	n := 0
	for _, el := range m.elements {
		if el.Vis.Deleted {
			continue
		}
		if n >= end {
			break
		}
		if n >= start && el.Kind == ElemText && el.Unit == '\n' {
			locs = append(locs, n)
		}
		n++
	}
	for i := len(locs) - 1; i >= 0; i-- {
		m.DeleteRange(locs[i], locs[i]+1)
		m.InsertBreak(locs[i], dom.Attrs{})
	}
}

// openingBoundary returns the slice index of the boundary opening the
// block containing loc, or -1 when loc is in the head block. A location
// at a boundary belongs to the block before it.
func (m *Model) openingBoundary(loc int) int {
	found := -1
	n := 0
	for i, el := range m.elements {
		if el.Vis.Deleted {
			continue
		}
		if n >= loc {
			break
		}
		if el.Kind == ElemBoundary {
			found = i
		}
		n++
	}
	return found
}

// DescAt returns the descriptor of the block containing loc.
func (m *Model) DescAt(loc int) BlockDesc {
	if i := m.openingBoundary(loc); i >= 0 {
		return m.elements[i].Desc
	}
	return m.head
}

// SetDescAt rewrites the descriptor of the block containing loc.
func (m *Model) SetDescAt(loc int, desc BlockDesc) {
	i := m.openingBoundary(loc)
	if i < 0 {
		m.applyLocal(Op{Kind: OpHead, Desc: desc, Stamp: m.tick(), Replica: m.replica})
		return
	}
	m.applyLocal(Op{Kind: OpDesc, Pos: m.elements[i].Pos, Desc: desc, Stamp: m.tick(), Replica: m.replica})
}

// SetHead rewrites the head descriptor directly.
func (m *Model) SetHead(desc BlockDesc) {
	m.applyLocal(Op{Kind: OpHead, Desc: desc, Stamp: m.tick(), Replica: m.replica})
}

// BeginGroup opens an undo unit; sel is the selection to restore when
// the unit is undone.
func (m *Model) BeginGroup(anchor, head int) {
	if m.open != nil {
		return
	}
	m.open = &group{sel: [2]int{anchor, head}}
}

// EndGroup closes the open undo unit, pushing it when it changed
// anything. Any new unit clears the redo stack.
func (m *Model) EndGroup() {
	g := m.open
	m.open = nil
	if g == nil || len(g.inverse) == 0 {
		return
	}
	m.undo = append(m.undo, g)
	m.redo = nil
}

// CancelGroup drops the open unit without recording it.
func (m *Model) CancelGroup() {
	m.open = nil
}

// CanUndo reports whether an undo unit is available.
func (m *Model) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether a redo unit is available.
func (m *Model) CanRedo() bool { return len(m.redo) > 0 }

// Undo applies the most recent unit's inverses with fresh stamps,
// recording the counter unit for redo. The caller passes its current
// selection; the returned selection is the one to restore.
func (m *Model) Undo(curAnchor, curHead int) ([2]int, bool) {
	if len(m.undo) == 0 {
		return [2]int{}, false
	}
	g := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	counter := m.applyInverse(g, curAnchor, curHead)
	m.redo = append(m.redo, counter)
	return g.sel, true
}

// Redo reverses the most recent undo.
func (m *Model) Redo(curAnchor, curHead int) ([2]int, bool) {
	if len(m.redo) == 0 {
		return [2]int{}, false
	}
	g := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]

	counter := m.applyInverse(g, curAnchor, curHead)
	m.undo = append(m.undo, counter)
	return g.sel, true
}

// applyInverse replays a unit's inverses newest-first under a fresh
// recording group, producing the unit that reverses the reversal.
func (m *Model) applyInverse(g *group, curAnchor, curHead int) *group {
	counter := &group{sel: [2]int{curAnchor, curHead}}
	prev := m.open
	m.open = counter
	for i := len(g.inverse) - 1; i >= 0; i-- {
		m.applyLocal(m.restamp(g.inverse[i]))
	}
	m.open = prev
	return counter
}

// ClearHistory drops both stacks, keeping the document.
func (m *Model) ClearHistory() {
	m.undo = nil
	m.redo = nil
	m.open = nil
}

// TakeOutbound drains the buffered local ops for broadcast. Receivers
// feed them to ApplyRemote on other replicas.
func (m *Model) TakeOutbound() []Op {
	ops := m.outbound
	m.outbound = nil
	return ops
}

// ApplyRemote merges ops from another replica. Merging is idempotent
// and order-independent across concurrent ops; it touches neither the
// outbound buffer nor the undo stacks.
func (m *Model) ApplyRemote(ops []Op) {
	for _, op := range ops {
		m.applyOp(op)
	}
}
