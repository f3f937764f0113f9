// Package table rebuilds typed tables from flat streams of scraped text cells.
//
// Stats pages often render a roster as a grid of loose elements rather than a
// clean <table>. Extraction yields the cell text in row-major order with no
// row boundaries; this package reshapes that stream into rows using the
// schema's declared column count, splits compound cells such as "7-15",
// cleans the text, coerces it to the declared types and attaches the
// caller's identity fields.
//
// Pipeline:
//
//	cells → Reshape → SplitCompoundField → NormalizeText/CleanSpace → Coerce → Table
//
// Design Principles:
//   - The schema is authoritative: scraped headers are only cross-checked
//   - No silent truncation, padding or defaulting
//   - Stateless: a Reconstructor may be shared between goroutines
//
// Example Usage:
//
//	rec := table.NewReconstructor(table.WithRowPolicy(table.SkipRow))
//	t, err := rec.Reconstruct(cells, headers, table.WBBSchema(), table.Identity{
//		{Name: "team", Value: "Iowa"},
//		{Name: "conference", Value: "Big Ten"},
//	})
package table
