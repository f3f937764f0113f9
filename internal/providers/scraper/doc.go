// Package scraper turns a stats page into a flat, row-major stream of cell
// text for table reconstruction.
//
// Pages are decoded to UTF-8 (BOM, Content-Type, meta tag, then chardet) and
// optionally sanitized with bluemonday before goquery parses them. A Layout
// names three selectors: the data cells, the header labels and the data
// rows. Selectors come in several strategies:
//   - CSS: plain goquery selector
//   - ByIndex: the Nth container, then items inside it
//   - ByXPath: htmlquery expression, useful for positional paths
//   - ByAttribute: the container whose attribute has a given value
//   - ByTextMatch: the container whose caption or text matches a pattern
//
// Built on specialized libraries:
//   - goquery: jQuery-like CSS selectors
//   - cascadia: CSS selector validation
//   - htmlquery: XPath support for HTML
//   - bluemonday: HTML sanitization
//   - chardet: Character encoding detection
//
// Example Usage:
//
//	layout, err := scraper.LayoutSpec{
//		Cells: scraper.SelectorSpec{Container: "table", Index: 1, Items: "tbody td"},
//	}.Build()
//	doc, err := scraper.NewParser().Parse(page, "text/html")
//	ex, err := scraper.Extract(doc, layout)
package scraper
