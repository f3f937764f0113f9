package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/bytedance/sonic"
)

// JSONSink writes {"columns": [...], "records": [{...}]} with record keys
// in column order
type JSONSink struct {
	Indent string
}

type jsonTable struct {
	Columns []string      `json:"columns"`
	Records []orderedJSON `json:"records"`
}

type orderedJSON struct {
	columns []string
	record  table.Record
}

func (o orderedJSON) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range o.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := sonic.Marshal(o.record[col])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Write implements Sink
func (s JSONSink) Write(w io.Writer, t *table.Table) error {
	doc := jsonTable{
		Columns: t.Columns,
		Records: make([]orderedJSON, len(t.Records)),
	}
	for i, rec := range t.Records {
		doc.Records[i] = orderedJSON{columns: t.Columns, record: rec}
	}

	var (
		data []byte
		err  error
	)
	if s.Indent != "" {
		data, err = sonic.ConfigStd.MarshalIndent(doc, "", s.Indent)
	} else {
		data, err = sonic.ConfigStd.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
