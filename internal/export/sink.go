package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Sink serializes a table
type Sink interface {
	Write(w io.Writer, t *table.Table) error
}

// Format is an output encoding
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// Compression is an optional output wrapper
type Compression string

const (
	None Compression = ""
	Gzip Compression = "gz"
	Zstd Compression = "zst"
)

// Formats lists the supported encodings
func Formats() []Format {
	return []Format{CSV, JSON, YAML, TOML}
}

// ParseFormat reads a format name such as "csv" or "yml"
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFor picks the format and compression from a path such as
// "wbb-2024.csv.zst"
func FormatFor(path string) (Format, Compression, error) {
	comp := None
	switch {
	case strings.HasSuffix(path, ".gz"):
		comp = Gzip
		path = strings.TrimSuffix(path, ".gz")
	case strings.HasSuffix(path, ".zst"):
		comp = Zstd
		path = strings.TrimSuffix(path, ".zst")
	}
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return "", None, err
	}
	return format, comp, nil
}

// SinkFor returns the sink for a format
func SinkFor(format Format) (Sink, error) {
	switch format {
	case CSV:
		return CSVSink{}, nil
	case JSON:
		return JSONSink{Indent: "  "}, nil
	case YAML:
		return YAMLSink{}, nil
	case TOML:
		return TOMLSink{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// FormatValue renders a record value as text. Floats use the shortest
// representation that parses back to the same value.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
