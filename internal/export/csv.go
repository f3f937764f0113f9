package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
)

// CSVSink writes a header row followed by one row per record
type CSVSink struct {
	Comma rune
}

// Write implements Sink
func (s CSVSink) Write(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if s.Comma != 0 {
		cw.Comma = s.Comma
	}

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for i := range t.Records {
		for j, v := range t.Row(i) {
			row[j] = FormatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a CSV written by CSVSink back into a typed table. Columns
// of schema are typed by it; any other column is an identity string.
func ReadCSV(r io.Reader, schema *table.Schema) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := &table.Table{
		Columns: append([]string(nil), header...),
		Types:   make(map[string]table.ColumnType, len(header)),
	}
	for _, name := range header {
		t.Types[name] = table.String
	}
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	for _, col := range schema.Final() {
		if !present[col.Name] {
			return nil, fmt.Errorf("read csv: column %q missing from header", col.Name)
		}
		t.Types[col.Name] = col.Type
	}

	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rec := make(table.Record, len(header))
		for i, name := range t.Columns {
			v, err := table.ParseValue(t.Types[name], fields[i])
			if err != nil {
				return nil, &table.CoercionError{Row: line - 2, Column: name, Type: t.Types[name], Raw: fields[i], Err: err}
			}
			rec[name] = v
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}
