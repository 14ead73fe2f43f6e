// Package htmlconv converts between message HTML and the document tree.
//
// Parse turns an HTML fragment into document nodes, recognizing the
// elements the model can express and unwrapping everything else. Serialize
// writes the tree back out. Clean runs the source-specific preparation that
// pasted markup needs before parsing: meta tags are always stripped, Google
// Docs payloads lose their internal-guid bold wrapper, and markup from
// outside the Matrix ecosystem passes through a bluemonday allowlist
// policy.
//
// Mentions travel as anchors: any anchor carrying data-mention-type, or
// whose href is a matrix.to permalink, parses into an atomic mention node
// and serializes back to the same shape.
package htmlconv
