package export

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/goccy/go-yaml"
)

// YAMLSink writes columns and records, keeping column order in each record
type YAMLSink struct{}

// Write implements Sink
func (YAMLSink) Write(w io.Writer, t *table.Table) error {
	records := make([]yaml.MapSlice, len(t.Records))
	for i, rec := range t.Records {
		item := make(yaml.MapSlice, len(t.Columns))
		for j, col := range t.Columns {
			item[j] = yaml.MapItem{Key: col, Value: rec[col]}
		}
		records[i] = item
	}

	doc := yaml.MapSlice{
		{Key: "columns", Value: t.Columns},
		{Key: "records", Value: records},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return nil
}
