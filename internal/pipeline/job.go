package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/providers/scraper"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrInvalidJob    = errors.New("invalid job")
	ErrUnknownFormat = errors.New("unknown job file format")
)

// Page is one page of a job: a URL or a saved file, plus its identity
type Page struct {
	URL      string         `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	File     string         `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Identity table.Identity `json:"identity,omitempty" yaml:"identity,omitempty" toml:"identity,omitempty"`
}

// Ref returns the URL or file the page loads from
func (p Page) Ref() string {
	if p.URL != "" {
		return p.URL
	}
	return p.File
}

// SchemaRef names a preset or declares columns inline
type SchemaRef struct {
	Preset  string         `json:"preset,omitempty" yaml:"preset,omitempty" toml:"preset,omitempty"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Columns []table.Column `json:"columns,omitempty" yaml:"columns,omitempty" toml:"columns,omitempty"`
}

// Resolve returns the schema the reference describes
func (s SchemaRef) Resolve() (*table.Schema, error) {
	switch {
	case s.Preset != "" && len(s.Columns) > 0:
		return nil, fmt.Errorf("%w: declares both preset %q and inline columns", table.ErrInvalidSchema, s.Preset)
	case s.Preset != "":
		return table.Preset(s.Preset)
	}
	schema := &table.Schema{Name: s.Name, Columns: s.Columns}
	if schema.Name == "" {
		schema.Name = "inline"
	}
	return schema, nil
}

// Job describes a batch of pages sharing one layout and schema
type Job struct {
	Name      string             `json:"name" yaml:"name" toml:"name"`
	Schema    SchemaRef          `json:"schema" yaml:"schema" toml:"schema"`
	Layout    scraper.LayoutSpec `json:"layout" yaml:"layout" toml:"layout"`
	RowPolicy string             `json:"row_policy,omitempty" yaml:"row_policy,omitempty" toml:"row_policy,omitempty"`
	Pages     []Page             `json:"pages" yaml:"pages" toml:"pages"`
}

// Plan is a validated job ready to run
type Plan struct {
	Job    *Job
	Schema *table.Schema
	Layout scraper.Layout
	// Policy is empty when the job leaves the choice to the runner
	Policy table.RowPolicy
}

// Format is a job file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadJob reads and decodes a job file
func LoadJob(path string) (*Job, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	job, err := ParseJob(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// ParseJob decodes a job in the given format
func ParseJob(data []byte, format Format) (*Job, error) {
	var job Job
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &job)
	case FormatTOML:
		err = toml.Unmarshal(data, &job)
	case FormatJSON:
		err = sonic.Unmarshal(data, &job)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s job: %w", format, err)
	}
	return &job, nil
}

// Compile validates the job and builds its schema, selectors and policy
func (j *Job) Compile() (*Plan, error) {
	if len(j.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidJob)
	}

	schema, err := j.Schema.Resolve()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}

	layout, err := j.Layout.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: layout %w", ErrInvalidJob, err)
	}

	var policy table.RowPolicy
	if j.RowPolicy != "" {
		if policy, err = table.ParseRowPolicy(j.RowPolicy); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
		}
	}

	if err := j.checkPages(schema); err != nil {
		return nil, err
	}

	return &Plan{Job: j, Schema: schema, Layout: layout, Policy: policy}, nil
}

// checkPages requires one ref per page and the same identity fields on every
// page so that page tables merge into one
func (j *Job) checkPages(schema *table.Schema) error {
	columns := make(map[string]bool)
	for _, name := range schema.FinalNames() {
		columns[name] = true
	}

	first := j.Pages[0].Identity.Names()
	for i, p := range j.Pages {
		if (p.URL == "") == (p.File == "") {
			return fmt.Errorf("%w: page %d needs exactly one of url or file", ErrInvalidJob, i)
		}
		names := p.Identity.Names()
		if strings.Join(names, "\x00") != strings.Join(first, "\x00") {
			return fmt.Errorf("%w: page %d identity fields %v differ from %v", ErrInvalidJob, i, names, first)
		}
		for _, name := range names {
			if columns[name] {
				return fmt.Errorf("%w: page %d: %w: %s", ErrInvalidJob, i, table.ErrIdentityCollision, name)
			}
		}
	}
	return nil
}
