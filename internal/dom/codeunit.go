package dom

// The document coordinate space counts UTF-16 code units, the unit chat
// hosts (web views, mobile text stacks) speak. Go strings stay UTF-8; the
// helpers below bridge the two. An offset landing inside a surrogate pair
// resolves to the start of the pair.

// runeLen16 matches utf16.RuneLen, which requires Go 1.23: the number of
// 16-bit words encoding r, or -1 if r cannot be encoded in UTF-16.
func runeLen16(r rune) int {
	switch {
	case 0 <= r && r < 0xD800, 0xE000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= 0x10FFFF:
		return 2
	default:
		return -1
	}
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeLen16(r)
	}
	return n
}

// UTF16ByteIndex returns the byte index in s corresponding to the given
// code-unit offset. Offsets beyond the end clamp to len(s); an offset inside
// a surrogate pair resolves to the pair's first byte.
func UTF16ByteIndex(s string, units int) int {
	if units <= 0 {
		return 0
	}
	seen := 0
	for i, r := range s {
		if seen+runeLen16(r) > units {
			return i
		}
		seen += runeLen16(r)
	}
	return len(s)
}

// pairFloor returns the largest code-unit offset not above unit that does
// not split a surrogate pair, plus the width of the rune starting there
// (zero past the end of s).
func pairFloor(s string, unit int) (int, int) {
	seen := 0
	for _, r := range s {
		w := runeLen16(r)
		if seen+w > unit {
			return seen, w
		}
		seen += w
	}
	return seen, 0
}

// UTF16Slice returns the substring of s covering [start, end) in code units.
func UTF16Slice(s string, start, end int) string {
	if end <= start {
		return ""
	}
	return s[UTF16ByteIndex(s, start):UTF16ByteIndex(s, end)]
}
