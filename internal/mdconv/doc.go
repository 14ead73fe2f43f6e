// Package mdconv converts between markdown text and the document tree.
//
// Parse runs CommonMark (plus strikethrough) through goldmark and lowers
// the result into document nodes; constructs the model cannot hold degrade
// instead of failing. Serialize walks the tree back out through the
// markdown builder, escaping literal text so the output reparses into the
// same structure. Mentions travel as permalink links in both directions.
package mdconv
