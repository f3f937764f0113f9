package http

import (
	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/pipeline"
	"github.com/GriffinCanCode/statscrape/internal/stats"
)

// ReconstructRequest is the body of POST /reconstruct
type ReconstructRequest struct {
	Cells    []string           `json:"cells" binding:"required"`
	Headers  []string           `json:"headers,omitempty"`
	Schema   pipeline.SchemaRef `json:"schema"`
	Identity table.Identity     `json:"identity,omitempty"`
	// Policy is abort or skip; empty uses the server default
	Policy string `json:"policy,omitempty"`
}

// ReconstructResponse is the body returned by POST /reconstruct
type ReconstructResponse struct {
	Schema   string          `json:"schema"`
	Policy   table.RowPolicy `json:"policy"`
	Table    *table.Table    `json:"table"`
	Skipped  []SkippedRow    `json:"skipped,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Summary  []stats.Summary `json:"summary"`
}

// SkippedRow is one row dropped under the skip policy
type SkippedRow struct {
	Row   int      `json:"row"`
	Cells []string `json:"cells"`
	Error string   `json:"error"`
}

// JobResponse is the body returned by POST /jobs
type JobResponse struct {
	RunID      string          `json:"run_id"`
	Job        string          `json:"job"`
	Status     string          `json:"status"`
	Schema     string          `json:"schema"`
	Table      *table.Table    `json:"table"`
	Pages      []PageSummary   `json:"pages"`
	Summary    []stats.Summary `json:"summary"`
	DurationMs int64           `json:"duration_ms"`
}

// PageSummary is the outcome of one job page
type PageSummary struct {
	ID       string       `json:"id"`
	Ref      string       `json:"ref"`
	Records  int          `json:"records"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Stage    string       `json:"stage,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// SchemaResponse is the body returned by GET /schemas/:name
type SchemaResponse struct {
	Schema       *table.Schema `json:"schema"`
	FlatCount    int           `json:"flat_count"`
	FinalColumns []string      `json:"final_columns"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Row    *int   `json:"row,omitempty"`
	Column string `json:"column,omitempty"`
}

func skippedRows(errs []*table.RowError) []SkippedRow {
	if len(errs) == 0 {
		return nil
	}
	out := make([]SkippedRow, len(errs))
	for i, e := range errs {
		out[i] = SkippedRow{Row: e.Row, Cells: e.Cells, Error: e.Err.Error()}
	}
	return out
}

func warningStrings(warnings []table.HeaderMismatch) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

// summarize rounds the numeric summaries for display
func summarize(t *table.Table) []stats.Summary {
	summaries := stats.Describe(t)
	for i := range summaries {
		summaries[i] = summaries[i].Round(3)
	}
	return summaries
}

// tableView makes an empty table encode its records as [] rather than null
func tableView(t *table.Table) *table.Table {
	if t.Records == nil {
		t.Records = []table.Record{}
	}
	return t
}
