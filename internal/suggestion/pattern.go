package suggestion

import "github.com/dshills/quill/internal/dom"

// Key identifies which trigger produced a suggestion.
type Key int

const (
	KeyAt Key = iota
	KeyHash
	KeySlash
	KeyCustom
)

// String returns the key name used in logs and menu actions.
func (k Key) String() string {
	switch k {
	case KeyAt:
		return "at"
	case KeyHash:
		return "hash"
	case KeySlash:
		return "slash"
	default:
		return "custom"
	}
}

// Pattern is a matched suggestion trigger. Text is the candidate with the
// trigger character trimmed for the static keys; custom rules keep the
// full candidate. Start and End span the whole match, trigger included,
// so replacing [Start, End) consumes it.
type Pattern struct {
	Key   Key
	Name  string
	Text  string
	Start dom.Location
	End   dom.Location
}
