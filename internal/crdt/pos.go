package crdt

import "hash/fnv"

const base = 65536

// Pos is a variable-length path of integers identifying one element of
// the replicated sequence. Order is lexicographic with the shorter path
// less when it is a prefix of the longer.
type Pos []int

// Compare returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b Pos) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	if len(a) < len(b) {
		return -1
	}
	if len(a) > len(b) {
		return 1
	}
	return 0
}

// Clone returns a copy of the path.
func (p Pos) Clone() Pos {
	return append(Pos(nil), p...)
}

// GenerateBetween returns a position strictly between left and right.
// When a level has integer space the digit is spread with siteBias so
// concurrent inserts at the same place land on distinct, deterministic
// positions. Requires left < right.
//
// right stops constraining deeper levels as soon as the chosen prefix
// falls below it, which keeps the result above a left that is deeper
// than its successor (left [5 40000], right [6] must not yield [5 x]
// with x <= 40000).
func GenerateBetween(left, right Pos, siteBias int) Pos {
	half := base / 2
	if siteBias < 0 {
		siteBias = -siteBias
	}
	siteBias %= half

	prefix := make(Pos, 0, len(left)+1)
	bounded := true
	for i := 0; ; i++ {
		lv := 0
		if i < len(left) {
			lv = left[i]
		}
		rv := base
		if bounded && i < len(right) {
			rv = right[i]
		}
		if gap := rv - lv - 1; gap > 0 {
			return append(prefix, lv+1+siteBias%gap)
		}
		prefix = append(prefix, lv)
		bounded = bounded && rv == lv
	}
}

// siteBias derives a stable digit spread for a replica identifier.
func siteBias(replica string) int {
	h := fnv.New32a()
	h.Write([]byte(replica))
	return int(h.Sum32() % (base / 2))
}

// posSuffix derives the per-replica digits appended to every generated
// position. GenerateBetween never returns a prefix of its right bound,
// so appending digits keeps the position strictly between the
// neighbors while making positions from different replicas distinct
// even when their biased digits coincide.
func posSuffix(replica string) Pos {
	h := fnv.New64a()
	h.Write([]byte(replica))
	v := h.Sum64()
	return Pos{
		int(v >> 48 & 0xFFFF),
		int(v >> 32 & 0xFFFF),
		int(v >> 16 & 0xFFFF),
		int(v & 0xFFFF),
	}
}

var (
	// Sentinel positions bounding every sequence.
	posFirst = Pos{0}
	posLast  = Pos{base - 1}
)
