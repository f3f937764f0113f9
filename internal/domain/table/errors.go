package table

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidColumnCount = errors.New("column count must be positive")
	ErrInvalidSchema      = errors.New("invalid schema")
	ErrIdentityCollision  = errors.New("identity field collides with schema column")
	ErrUnknownPreset      = errors.New("unknown schema preset")
	ErrUnknownRowPolicy   = errors.New("unknown row policy")
)

// ShapeMismatch reports a cell stream that does not divide into whole rows
type ShapeMismatch struct {
	Cells   int
	Columns int
	// Rows is the row count reported by extraction, 0 when unknown
	Rows int
}

func (e *ShapeMismatch) Error() string {
	if e.Rows > 0 {
		return fmt.Sprintf("shape mismatch: %d cells for %d rows of %d columns", e.Cells, e.Rows, e.Columns)
	}
	return fmt.Sprintf("shape mismatch: %d cells is not a multiple of %d columns (remainder %d)",
		e.Cells, e.Columns, e.Cells%e.Columns)
}

// CompoundFieldMalformed reports a split-tagged cell without the value-delimiter-value shape
type CompoundFieldMalformed struct {
	Row       int
	Column    string
	Token     string
	Delimiter string
}

func (e *CompoundFieldMalformed) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("compound field %q is not two values joined by %q", e.Token, e.Delimiter)
	}
	return fmt.Sprintf("row %d column %s: compound field %q is not two values joined by %q",
		e.Row, e.Column, e.Token, e.Delimiter)
}

// CoercionError reports a value that cannot be converted to its declared type
type CoercionError struct {
	Row    int
	Column string
	Type   ColumnType
	Raw    string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("row %d column %s: cannot read %q as %s", e.Row, e.Column, e.Raw, e.Type)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// RowError wraps every per-row failure with the row it came from
type RowError struct {
	Row   int
	Cells []string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// HeaderMismatch is a non-fatal warning about the scraped header row
type HeaderMismatch struct {
	Expected int
	Got      int
	// Column and Label are set when a single header label disagrees
	Column string
	Label  string
}

func (w HeaderMismatch) String() string {
	if w.Column != "" {
		return fmt.Sprintf("header for column %s reads %q", w.Column, w.Label)
	}
	return fmt.Sprintf("header has %d labels, schema declares %d columns", w.Got, w.Expected)
}
