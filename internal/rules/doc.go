// Package rules defines the canonical CAD-series codes of the findings cadlint reports.
//
// Every examination attached to the interpreter emits findings under one of these codes,
// so that they can be filtered by configuration, rendered by the report engine, and
// matched by tests in a stable way.
//
// # Numbering
//
//	000–009  Parsing
//	010–049  Control flow: controlling expressions, branches and reachability
//	050–099  Value conversions
//	900–999  Function metrics
//
// Codes are printed as "CAD010" and parsed back with Parse. Metrics are informational:
// they never make the analysis fail.
package rules
