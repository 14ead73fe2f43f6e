// Package suggestion detects trigger patterns around the selection.
//
// The engine works on projected blocks, never on the tree directly. A
// scan extends the selection outward to whitespace, a mention or line
// break, or the block edge, then matches the candidate against the
// static triggers (@ mentions, # rooms, / commands at document start)
// and any host-registered rules:
//
//	eng := NewEngine()
//	rule, _ := NewRegexpRule("emoji", `^:[a-z]+$`)
//	eng.Register(rule)
//
//	if p, ok := eng.Scan(blocks, sel.Start, sel.End); ok {
//	    // open the menu for p.Key / p.Name with query p.Text
//	}
//
// Custom rules can also be Lua predicates (NewLuaRule), evaluated in a
// sandboxed state with only the base, table, string, and math libraries.
// Candidates touching code or link content never match.
package suggestion
