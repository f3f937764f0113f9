package table

import (
	"fmt"
	"strings"
)

// ColumnType is the semantic type of a column
type ColumnType string

const (
	Integer ColumnType = "integer"
	Real    ColumnType = "real"
	String  ColumnType = "string"
)

// Kind selects the normalization rules applied to a column's text
type Kind string

const (
	KindPlain Kind = ""
	KindName  Kind = "name"
)

// SplitRule describes a compound cell holding two values joined by a delimiter
type SplitRule struct {
	Delimiter string `json:"delimiter" yaml:"delimiter" toml:"delimiter"`
	Left      string `json:"left" yaml:"left" toml:"left"`
	Right     string `json:"right" yaml:"right" toml:"right"`
}

// Column is a single declared column of a schema
type Column struct {
	Name   string     `json:"name" yaml:"name" toml:"name"`
	Type   ColumnType `json:"type" yaml:"type" toml:"type"`
	Kind   Kind       `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Header string     `json:"header,omitempty" yaml:"header,omitempty" toml:"header,omitempty"`
	Split  *SplitRule `json:"split,omitempty" yaml:"split,omitempty" toml:"split,omitempty"`

	// Default fills a missing value for this column only. Nil means a
	// missing value is a CoercionError.
	Default any `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
}

// Schema is the ordered list of declared columns
type Schema struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Columns []Column `json:"columns" yaml:"columns" toml:"columns"`
}

// FinalColumn is a post-split column
type FinalColumn struct {
	Name    string
	Type    ColumnType
	Kind    Kind
	Default any
	Source  int // index of the declared column it comes from
}

// FlatCount returns the number of scraped cells per row, before splitting
func (s *Schema) FlatCount() int {
	return len(s.Columns)
}

// Final returns the post-split column list
func (s *Schema) Final() []FinalColumn {
	out := make([]FinalColumn, 0, len(s.Columns)+s.splitCount())
	for i, col := range s.Columns {
		if col.Split != nil {
			out = append(out,
				FinalColumn{Name: col.Split.Left, Type: col.Type, Kind: col.Kind, Source: i},
				FinalColumn{Name: col.Split.Right, Type: col.Type, Kind: col.Kind, Source: i},
			)
			continue
		}
		out = append(out, FinalColumn{Name: col.Name, Type: col.Type, Kind: col.Kind, Default: col.Default, Source: i})
	}
	return out
}

// FinalNames returns the post-split column names in order
func (s *Schema) FinalNames() []string {
	final := s.Final()
	names := make([]string, len(final))
	for i, col := range final {
		names[i] = col.Name
	}
	return names
}

func (s *Schema) splitCount() int {
	n := 0
	for _, col := range s.Columns {
		if col.Split != nil {
			n++
		}
	}
	return n
}

// Validate checks the schema is usable for reconstruction
func (s *Schema) Validate() error {
	if s == nil || len(s.Columns) == 0 {
		return fmt.Errorf("%w: no columns declared", ErrInvalidSchema)
	}

	for i, col := range s.Columns {
		if strings.TrimSpace(col.Name) == "" {
			return fmt.Errorf("%w: column %d has no name", ErrInvalidSchema, i)
		}
		switch col.Type {
		case Integer, Real, String:
		default:
			return fmt.Errorf("%w: column %q has unknown type %q", ErrInvalidSchema, col.Name, col.Type)
		}
		if col.Split != nil {
			if col.Split.Delimiter == "" || col.Split.Left == "" || col.Split.Right == "" {
				return fmt.Errorf("%w: column %q has an incomplete split rule", ErrInvalidSchema, col.Name)
			}
			if col.Type == String {
				return fmt.Errorf("%w: column %q splits into string values", ErrInvalidSchema, col.Name)
			}
			if col.Default != nil {
				return fmt.Errorf("%w: column %q declares a default on a compound field", ErrInvalidSchema, col.Name)
			}
		}
		if col.Default != nil {
			if _, err := normalizeDefault(col.Type, col.Default); err != nil {
				return fmt.Errorf("%w: column %q: %v", ErrInvalidSchema, col.Name, err)
			}
		}
	}

	seen := make(map[string]bool)
	for _, name := range s.FinalNames() {
		if seen[name] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, name)
		}
		seen[name] = true
	}
	return nil
}

// normalizeDefault converts a declared default into the column's value type.
// Defaults decoded from YAML/JSON arrive as int, uint64, float64 and so on.
func normalizeDefault(typ ColumnType, v any) (any, error) {
	switch typ {
	case Integer:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case uint64:
			return int64(n), nil
		case float64:
			if n != float64(int64(n)) {
				return nil, fmt.Errorf("default %v is not an integer", v)
			}
			return int64(n), nil
		}
	case Real:
		switch n := v.(type) {
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case uint64:
			return float64(n), nil
		case float64:
			return n, nil
		}
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("default %v (%T) does not fit type %s", v, v, typ)
}
