package table

import "fmt"

// Field is one identity name/value pair
type Field struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// Identity is caller-supplied metadata attached to every record, in order
type Identity []Field

// Names returns the identity field names in order
func (id Identity) Names() []string {
	names := make([]string, len(id))
	for i, f := range id {
		names[i] = f.Name
	}
	return names
}

// Record is one reconstructed entity, keyed by column name.
// Values are int64, float64 or string.
type Record map[string]any

// Int returns an integer column value
func (r Record) Int(column string) (int64, error) {
	v, ok := r[column].(int64)
	if !ok {
		return 0, fmt.Errorf("column %s is %T, not an integer", column, r[column])
	}
	return v, nil
}

// Float returns a real column value
func (r Record) Float(column string) (float64, error) {
	v, ok := r[column].(float64)
	if !ok {
		return 0, fmt.Errorf("column %s is %T, not a real", column, r[column])
	}
	return v, nil
}

// String returns a string column value
func (r Record) String(column string) (string, error) {
	v, ok := r[column].(string)
	if !ok {
		return "", fmt.Errorf("column %s is %T, not a string", column, r[column])
	}
	return v, nil
}

// Number returns any numeric column value as float64
func (r Record) Number(column string) (float64, bool) {
	switch v := r[column].(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Table is an ordered sequence of records sharing one column set
type Table struct {
	// Columns lists identity fields first, then the schema's final columns
	Columns  []string              `json:"columns"`
	Types    map[string]ColumnType `json:"types"`
	Records  []Record              `json:"records"`
	Skipped  []*RowError           `json:"-"`
	Warnings []HeaderMismatch      `json:"-"`
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Records)
}

// Row returns a record's values in column order
func (t *Table) Row(i int) []any {
	rec := t.Records[i]
	row := make([]any, len(t.Columns))
	for j, col := range t.Columns {
		row[j] = rec[col]
	}
	return row
}

// Append adds the records of other, which must share the same columns
func (t *Table) Append(other *Table) error {
	if len(t.Columns) == 0 {
		t.Columns = append([]string(nil), other.Columns...)
		t.Types = other.Types
	} else if !sameColumns(t.Columns, other.Columns) {
		return fmt.Errorf("cannot append table with columns %v to %v", other.Columns, t.Columns)
	}
	t.Records = append(t.Records, other.Records...)
	t.Skipped = append(t.Skipped, other.Skipped...)
	t.Warnings = append(t.Warnings, other.Warnings...)
	return nil
}

// NewTable creates an empty table laid out for schema and identity
func NewTable(schema *Schema, identity Identity) *Table {
	final := schema.Final()
	t := &Table{
		Columns: make([]string, 0, len(identity)+len(final)),
		Types:   make(map[string]ColumnType, len(identity)+len(final)),
	}
	for _, f := range identity {
		t.Columns = append(t.Columns, f.Name)
		t.Types[f.Name] = String
	}
	for _, col := range final {
		t.Columns = append(t.Columns, col.Name)
		t.Types[col.Name] = col.Type
	}
	return t
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
