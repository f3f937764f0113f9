package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Layout says where a page keeps its stat cells
type Layout struct {
	// Cells selects every data cell, row-major
	Cells Selector
	// Headers selects the header labels. Optional.
	Headers Selector
	// Rows selects one node per data row so the row count is observed
	// rather than derived. Optional.
	Rows Selector
}

// LayoutSpec is the declarative form of a Layout
type LayoutSpec struct {
	Cells   SelectorSpec  `json:"cells" yaml:"cells" toml:"cells"`
	Headers *SelectorSpec `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
	Rows    *SelectorSpec `json:"rows,omitempty" yaml:"rows,omitempty" toml:"rows,omitempty"`
}

// Build compiles every selector of the layout
func (s LayoutSpec) Build() (Layout, error) {
	var layout Layout
	var err error

	if layout.Cells, err = s.Cells.Build(); err != nil {
		return Layout{}, fmt.Errorf("cells: %w", err)
	}
	if s.Headers != nil {
		if layout.Headers, err = s.Headers.Build(); err != nil {
			return Layout{}, fmt.Errorf("headers: %w", err)
		}
	}
	if s.Rows != nil {
		if layout.Rows, err = s.Rows.Build(); err != nil {
			return Layout{}, fmt.Errorf("rows: %w", err)
		}
	}
	return layout, nil
}

// Extraction is the flat output of one page
type Extraction struct {
	Cells []string
	// Headers is nil when the layout has no header selector
	Headers []string
	// Rows is 0 when the layout has no row selector
	Rows int
}

// Extract pulls cell and header text from a parsed page
func Extract(doc *goquery.Document, layout Layout) (*Extraction, error) {
	if layout.Cells == nil {
		return nil, fmt.Errorf("%w: layout has no cell selector", ErrInvalidSelector)
	}

	cells, err := selectText(doc, layout.Cells)
	if err != nil {
		return nil, fmt.Errorf("cells: %w", err)
	}
	out := &Extraction{Cells: cells}

	if layout.Headers != nil {
		if out.Headers, err = selectText(doc, layout.Headers); err != nil {
			return nil, fmt.Errorf("headers: %w", err)
		}
		if out.Headers == nil {
			out.Headers = []string{}
		}
	}

	if layout.Rows != nil {
		rows, err := layout.Rows.Select(doc)
		if err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
		out.Rows = len(rows)
	}
	return out, nil
}

func selectText(doc *goquery.Document, sel Selector) ([]string, error) {
	nodes, err := sel.Select(doc)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = NodeText(n)
	}
	return texts, nil
}
