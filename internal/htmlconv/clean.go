package htmlconv

import "regexp"

// Source tags where pasted or injected HTML came from, which decides how
// aggressively it is cleaned before parsing.
type Source int

const (
	// SourceMatrix is markup produced inside the Matrix ecosystem, already
	// shaped like the composer's own output.
	SourceMatrix Source = iota
	// SourceGoogleDoc is a Google Docs clipboard payload.
	SourceGoogleDoc
	// SourceMSDoc is a Microsoft Office clipboard payload.
	SourceMSDoc
	// SourceUnknown is any other external markup.
	SourceUnknown
)

// String returns the source name used in logs.
func (s Source) String() string {
	switch s {
	case SourceMatrix:
		return "matrix"
	case SourceGoogleDoc:
		return "google-doc"
	case SourceMSDoc:
		return "ms-doc"
	default:
		return "unknown"
	}
}

var (
	metaTagPattern = regexp.MustCompile(`(?i)<meta[^>]*>`)

	// Google Docs wraps the whole clipboard payload in a bold element tagged
	// with a docs-internal-guid id. The non-greedy body match unwraps the
	// first such wrapper only; payloads carrying several wrappers, or inner
	// bold close tags, are outside what this pattern promises.
	googleDocWrapper = regexp.MustCompile(`(?is)<b[^>]*id="docs-internal-guid-[^"]*"[^>]*>(.*?)</b>`)
)

// Clean prepares markup for parsing. Meta tags are stripped for every
// source. A Google Docs payload additionally loses its internal-guid bold
// wrapper. Anything not from the Matrix ecosystem then passes through the
// composer sanitization policy, so only markup the document model can
// express survives.
func Clean(markup string, source Source) string {
	markup = metaTagPattern.ReplaceAllString(markup, "")
	if source == SourceGoogleDoc {
		if m := googleDocWrapper.FindStringSubmatchIndex(markup); m != nil {
			markup = markup[:m[0]] + markup[m[2]:m[3]] + markup[m[1]:]
		}
	}
	if source != SourceMatrix {
		markup = composerPolicy.Sanitize(markup)
	}
	return markup
}
