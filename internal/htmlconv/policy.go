package htmlconv

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// composerPolicy admits exactly the markup the document model can express.
// Everything else in externally pasted content (inline styles, spans, script,
// Office and Docs decoration) is dropped before parsing.
var composerPolicy *bluemonday.Policy = bluemonday.NewPolicy()

func init() {
	composerPolicy.AllowElements(
		"strong", "b", "em", "i", "del", "s", "strike", "u", "code",
		"p", "blockquote", "pre", "br", "ol", "ul", "li",
	)
	composerPolicy.AllowAttrs("href").OnElements("a")
	composerPolicy.AllowAttrs("data-mention-type").Matching(mentionTypeRegexp).OnElements("a")
	composerPolicy.AllowStandardURLs()
	composerPolicy.AllowURLSchemes("http", "https", "mailto", "matrix")
}

var mentionTypeRegexp = regexp.MustCompile(`^(user|room)$`)
