package table

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// RowPolicy decides what a per-row failure does to the reconstruction
type RowPolicy string

const (
	// AbortPage stops at the first failing row and returns its error
	AbortPage RowPolicy = "abort"
	// SkipRow drops the failing row, records it and continues
	SkipRow RowPolicy = "skip"
)

// ParseRowPolicy reads a policy name, defaulting to AbortPage
func ParseRowPolicy(s string) (RowPolicy, error) {
	switch RowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AbortPage:
		return AbortPage, nil
	case SkipRow:
		return SkipRow, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownRowPolicy, s)
	}
}

// Reconstructor turns cell streams into tables. It holds only configuration.
type Reconstructor struct {
	policy RowPolicy
	logger *zap.Logger
}

// Option configures a Reconstructor
type Option func(*Reconstructor)

// WithRowPolicy sets the per-row failure policy
func WithRowPolicy(p RowPolicy) Option {
	return func(r *Reconstructor) {
		r.policy = p
	}
}

// WithLogger sets the logger used for warnings and skipped rows
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconstructor) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconstructor creates a reconstructor, aborting on row errors by default
func NewReconstructor(opts ...Option) *Reconstructor {
	r := &Reconstructor{
		policy: AbortPage,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the configured row policy
func (r *Reconstructor) Policy() RowPolicy {
	return r.policy
}

// Reconstruct runs the default reconstructor
func Reconstruct(cells, headerCells []string, schema *Schema, identity Identity) (*Table, error) {
	return NewReconstructor().Reconstruct(cells, headerCells, schema, identity)
}

// Reconstruct reshapes cells into rows, splits, normalizes and coerces each
// row, and attaches identity as leading columns. headerCells are only
// cross-checked against the schema.
func (r *Reconstructor) Reconstruct(cells, headerCells []string, schema *Schema, identity Identity) (*Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if err := checkIdentity(schema, identity); err != nil {
		return nil, err
	}

	rows, err := Reshape(cells, schema.FlatCount())
	if err != nil {
		return nil, err
	}

	t := NewTable(schema, identity)
	t.Warnings = CheckHeaders(headerCells, schema)
	for _, w := range t.Warnings {
		r.logger.Warn("Header mismatch",
			zap.String("schema", schema.Name),
			zap.String("warning", w.String()),
		)
	}

	t.Records = make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := r.reconstructRow(row, schema, i)
		if err != nil {
			rowErr := &RowError{Row: i, Cells: row, Err: err}
			if r.policy != SkipRow {
				return nil, rowErr
			}
			r.logger.Warn("Skipping row",
				zap.String("schema", schema.Name),
				zap.Int("row", i),
				zap.Error(err),
			)
			t.Skipped = append(t.Skipped, rowErr)
			continue
		}

		for _, f := range identity {
			rec[f.Name] = f.Value
		}
		t.Records = append(t.Records, rec)
	}

	r.logger.Debug("Table reconstructed",
		zap.String("schema", schema.Name),
		zap.Int("rows", len(rows)),
		zap.Int("records", len(t.Records)),
		zap.Int("skipped", len(t.Skipped)),
	)
	return t, nil
}

func (r *Reconstructor) reconstructRow(row []string, schema *Schema, index int) (Record, error) {
	split, err := splitRow(row, schema, index)
	if err != nil {
		return nil, err
	}
	return Coerce(split, schema, index)
}

// CheckHeaders compares scraped header labels with the schema. It never fails.
func CheckHeaders(headerCells []string, schema *Schema) []HeaderMismatch {
	if headerCells == nil {
		return nil
	}
	if len(headerCells) != schema.FlatCount() {
		return []HeaderMismatch{{Expected: schema.FlatCount(), Got: len(headerCells)}}
	}

	var warnings []HeaderMismatch
	for i, col := range schema.Columns {
		if col.Header == "" {
			continue
		}
		label := CleanSpace(headerCells[i])
		if !strings.EqualFold(label, col.Header) {
			warnings = append(warnings, HeaderMismatch{
				Expected: schema.FlatCount(),
				Got:      len(headerCells),
				Column:   col.Name,
				Label:    label,
			})
		}
	}
	return warnings
}

func checkIdentity(schema *Schema, identity Identity) error {
	taken := make(map[string]bool)
	for _, name := range schema.FinalNames() {
		taken[name] = true
	}
	for _, f := range identity {
		if f.Name == "" {
			return fmt.Errorf("%w: identity field has no name", ErrInvalidSchema)
		}
		if taken[f.Name] {
			return fmt.Errorf("%w: %q", ErrIdentityCollision, f.Name)
		}
		taken[f.Name] = true
	}
	return nil
}
