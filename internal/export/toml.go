package export

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/pelletier/go-toml/v2"
)

// TOMLSink writes a columns array and one [[records]] table per record.
// TOML tables have no key order, so columns carries it.
type TOMLSink struct{}

type tomlTable struct {
	Columns []string         `toml:"columns"`
	Records []map[string]any `toml:"records"`
}

// Write implements Sink
func (TOMLSink) Write(w io.Writer, t *table.Table) error {
	doc := tomlTable{
		Columns: t.Columns,
		Records: make([]map[string]any, len(t.Records)),
	}
	for i, rec := range t.Records {
		doc.Records[i] = map[string]any(rec)
	}

	enc := toml.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}
