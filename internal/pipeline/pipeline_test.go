package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statscrape/internal/providers/scraper"
	"github.com/GriffinCanCode/statscrape/internal/providers/source"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func statsHTML(rows ...[]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="stats"><thead><tr>`)
	b.WriteString(`<th>#</th><th>Player</th><th>GS</th><th>FG-FGA</th><th>FG%</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

var (
	iowaPage = statsHTML(
		[]string{"22", "Caitlin Clark", "30", "300-650", "46.2"},
		[]string{"20", "KateMartin", "", "150-320", "46.9"},
	)
	uconnPage = statsHTML(
		[]string{"5", "Paige Bueckers", "28", "250-470", "53.2"},
	)
	badRowPage = statsHTML(
		[]string{"3", "Good Row", "1", "10-20", "50.0"},
		[]string{"4", "Bad Row", "1", "10/20", "50.0"},
	)
)

type memSource struct {
	pages map[string]string
	delay time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
}

func (m *memSource) Load(ctx context.Context, ref string) (*source.Document, error) {
	m.mu.Lock()
	m.active++
	if m.active > m.maxActive {
		m.maxActive = m.active
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, ok := m.pages[ref]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, os.ErrNotExist)
	}
	return &source.Document{Ref: ref, Body: []byte(body), ContentType: "text/html"}, nil
}

func (m *memSource) Name() string { return "mem" }

func miniSchema() SchemaRef {
	return SchemaRef{
		Name: "mini",
		Columns: []table.Column{
			{Name: "number", Type: table.Integer, Header: "#"},
			{Name: "player", Type: table.String, Kind: table.KindName, Header: "Player"},
			{Name: "gs", Type: table.Integer, Header: "GS", Default: int64(0)},
			{Name: "fg", Type: table.Integer, Header: "FG-FGA", Split: &table.SplitRule{Delimiter: "-", Left: "fgm", Right: "fga"}},
			{Name: "fg_pct", Type: table.Real, Header: "FG%"},
		},
	}
}

func miniLayout() scraper.LayoutSpec {
	return scraper.LayoutSpec{
		Cells:   scraper.SelectorSpec{CSS: "#stats tbody td"},
		Headers: &scraper.SelectorSpec{CSS: "#stats thead th"},
		Rows:    &scraper.SelectorSpec{CSS: "#stats tbody tr"},
	}
}

func teamPage(file, team string) Page {
	return Page{File: file, Identity: table.Identity{{Name: "team", Value: team}, {Name: "season", Value: "2024"}}}
}

func miniJob(pages ...Page) *Job {
	return &Job{Name: "big-ten", Schema: miniSchema(), Layout: miniLayout(), Pages: pages}
}

func TestRunMergesPagesInOrder(t *testing.T) {
	src := &memSource{pages: map[string]string{"iowa.html": iowaPage, "uconn.html": uconnPage}}
	runner := NewRunner(src, WithConcurrency(2))

	res, err := runner.Run(context.Background(), miniJob(teamPage("iowa.html", "Iowa"), teamPage("uconn.html", "UConn")))
	require.NoError(t, err)
	require.NoError(t, res.Err())

	assert.True(t, strings.HasPrefix(res.RunID.String(), "run_"))
	assert.Equal(t, "big-ten", res.Job)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t,
		[]string{"team", "season", "number", "player", "gs", "fgm", "fga", "fg_pct"},
		res.Table.Columns)
	require.Equal(t, 3, res.Table.Len())

	players := make([]string, res.Table.Len())
	for i, rec := range res.Table.Records {
		players[i] = rec["player"].(string)
	}
	assert.Equal(t, []string{"Caitlin Clark", "Kate Martin", "Paige Bueckers"}, players)

	martin := res.Table.Records[1]
	assert.Equal(t, "Iowa", martin["team"])
	assert.Equal(t, int64(0), martin["gs"])
	assert.Equal(t, int64(150), martin["fgm"])
	assert.Equal(t, int64(320), martin["fga"])
	assert.Equal(t, 46.9, martin["fg_pct"])

	require.Len(t, res.Pages, 2)
	assert.Equal(t, "iowa.html", res.Pages[0].Ref)
	assert.Equal(t, 2, res.Pages[0].Records)
	assert.True(t, strings.HasPrefix(res.Pages[1].ID.String(), "page_"))
	assert.Empty(t, res.Pages[0].Warnings)
}

func TestRunRecordsPageFailures(t *testing.T) {
	src := &memSource{pages: map[string]string{
		"iowa.html": iowaPage,
		"bad.html":  badRowPage,
		"ragged.html": strings.Replace(uconnPage,
			"<td>53.2</td>", "<td>53.2</td><td>extra</td>", 1),
	}}
	job := miniJob(
		teamPage("iowa.html", "Iowa"),
		teamPage("missing.html", "Nebraska"),
		teamPage("bad.html", "Purdue"),
		teamPage("ragged.html", "UConn"),
	)

	res, err := NewRunner(src).Run(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Table.Len(), "successful pages are still merged")
	assert.Equal(t, "partial", res.Status)
	require.Len(t, res.Failed(), 3)

	tests := []struct {
		page  int
		stage Stage
		check func(t *testing.T, err error)
	}{
		{1, StageLoad, func(t *testing.T, err error) { assert.ErrorIs(t, err, os.ErrNotExist) }},
		{2, StageReconstruct, func(t *testing.T, err error) {
			var malformed *table.CompoundFieldMalformed
			assert.ErrorAs(t, err, &malformed)
			var rowErr *table.RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, 1, rowErr.Row)
		}},
		{3, StageExtract, func(t *testing.T, err error) {
			var shape *table.ShapeMismatch
			require.ErrorAs(t, err, &shape)
			assert.Equal(t, 1, shape.Rows)
			assert.Equal(t, 6, shape.Cells)
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			err := res.Pages[tt.page].Err
			var pageErr *PageError
			require.ErrorAs(t, err, &pageErr)
			assert.Equal(t, tt.stage, pageErr.Stage)
			assert.Equal(t, job.Pages[tt.page].File, pageErr.Ref)
			tt.check(t, err)
		})
	}

	assert.ErrorIs(t, res.Err(), os.ErrNotExist)
}

func TestRunRowSelectorMatchingNothing(t *testing.T) {
	src := &memSource{pages: map[string]string{
		"flat.html": `<html><body><div id="stats"><span>1</span></div>
			<table id="stats"><tbody></tbody></table></body></html>`,
	}}
	job := miniJob(teamPage("flat.html", "Iowa"))
	job.Layout.Cells = scraper.SelectorSpec{CSS: "#stats span"}

	res, err := NewRunner(src).Run(context.Background(), job)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Pages[0].Err, ErrNoRows)
}

func TestRunSkipPolicy(t *testing.T) {
	src := &memSource{pages: map[string]string{"bad.html": badRowPage}}
	job := miniJob(teamPage("bad.html", "Purdue"))
	job.RowPolicy = "skip"

	core, logs := observer.New(zapcore.WarnLevel)
	res, err := NewRunner(src, WithLogger(zap.New(core))).Run(context.Background(), job)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	assert.Equal(t, 1, res.Table.Len())
	require.Len(t, res.Pages[0].Skipped, 1)
	assert.Equal(t, 1, res.Pages[0].Skipped[0].Row)

	skipped := logs.FilterMessage("Skipping row").All()
	require.Len(t, skipped, 1)
	assert.NotEmpty(t, skipped[0].ContextMap()["run_id"])
	assert.Equal(t, "bad.html", skipped[0].ContextMap()["ref"])
}

func TestRunnerDefaultPolicy(t *testing.T) {
	src := &memSource{pages: map[string]string{"bad.html": badRowPage}}

	res, err := NewRunner(src, WithRowPolicy(table.SkipRow)).Run(context.Background(), miniJob(teamPage("bad.html", "Purdue")))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Len())

	job := miniJob(teamPage("bad.html", "Purdue"))
	job.RowPolicy = "abort"
	res, err = NewRunner(src, WithRowPolicy(table.SkipRow)).Run(context.Background(), job)
	require.NoError(t, err)
	assert.Error(t, res.Pages[0].Err, "the job's policy wins over the runner default")
}

func TestRunBoundsConcurrency(t *testing.T) {
	src := &memSource{pages: map[string]string{}, delay: 20 * time.Millisecond}
	var pages []Page
	for i := 0; i < 8; i++ {
		ref := fmt.Sprintf("team-%d.html", i)
		src.pages[ref] = uconnPage
		pages = append(pages, teamPage(ref, fmt.Sprintf("Team %d", i)))
	}

	res, err := NewRunner(src, WithConcurrency(3)).Run(context.Background(), miniJob(pages...))
	require.NoError(t, err)
	require.NoError(t, res.Err())

	assert.LessOrEqual(t, src.maxActive, 3)
	assert.Greater(t, src.maxActive, 1)
	for i, rec := range res.Table.Records {
		assert.Equal(t, fmt.Sprintf("Team %d", i), rec["team"])
	}
}

func TestRunCancelled(t *testing.T) {
	src := &memSource{pages: map[string]string{"iowa.html": iowaPage}, delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewRunner(src).Run(ctx, miniJob(teamPage("iowa.html", "Iowa")))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, "cancelled", res.Status)
	assert.ErrorIs(t, res.Pages[0].Err, context.Canceled)
}

func TestRunRecordsMetrics(t *testing.T) {
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	src := &memSource{pages: map[string]string{"iowa.html": iowaPage}}

	_, err := NewRunner(src, WithMetrics(m)).Run(context.Background(),
		miniJob(teamPage("iowa.html", "Iowa"), teamPage("gone.html", "Ohio State")))
	require.NoError(t, err)

	read := func(c prometheus.Counter) float64 {
		var metric dto.Metric
		require.NoError(t, c.Write(&metric))
		return metric.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, read(m.RecordsTotal.WithLabelValues("mini")))
	assert.Equal(t, 1.0, read(m.PageFetches.WithLabelValues("mem", "ok")))
	assert.Equal(t, 1.0, read(m.PageFetches.WithLabelValues("mem", "error")))
	assert.Equal(t, 1.0, read(m.JobsTotal.WithLabelValues("partial")))
}

func TestCompileRejectsInvalidJobs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(j *Job)
	}{
		{"no pages", func(j *Job) { j.Pages = nil }},
		{"url and file", func(j *Job) { j.Pages[0].URL = "https://example.edu/stats" }},
		{"neither url nor file", func(j *Job) { j.Pages[0].File = "" }},
		{"identity fields differ", func(j *Job) {
			j.Pages[1].Identity = table.Identity{{Name: "team", Value: "UConn"}}
		}},
		{"identity collides with column", func(j *Job) {
			for i := range j.Pages {
				j.Pages[i].Identity = table.Identity{{Name: "player", Value: "x"}}
			}
		}},
		{"unknown preset", func(j *Job) { j.Schema = SchemaRef{Preset: "nope"} }},
		{"preset and columns", func(j *Job) { j.Schema.Preset = "wbb" }},
		{"invalid schema", func(j *Job) { j.Schema.Columns[0].Type = "decimal" }},
		{"bad selector", func(j *Job) { j.Layout.Cells = scraper.SelectorSpec{CSS: "td["} }},
		{"bad row policy", func(j *Job) { j.RowPolicy = "retry" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := miniJob(teamPage("iowa.html", "Iowa"), teamPage("uconn.html", "UConn"))
			tt.mutate(job)
			_, err := job.Compile()
			assert.ErrorIs(t, err, ErrInvalidJob)
		})
	}
}

func TestCompilePreset(t *testing.T) {
	job := miniJob(teamPage("iowa.html", "Iowa"))
	job.Schema = SchemaRef{Preset: "wbb"}

	plan, err := job.Compile()
	require.NoError(t, err)
	assert.Equal(t, 32, plan.Schema.FlatCount())
	assert.Empty(t, plan.Policy)
}

const yamlJob = `
name: big-ten
schema:
  name: mini
  columns:
    - {name: number, type: integer, header: "#"}
    - {name: player, type: string, kind: name, header: Player}
    - {name: gs, type: integer, header: GS, default: 0}
    - {name: fg, type: integer, header: FG-FGA, split: {delimiter: "-", left: fgm, right: fga}}
    - {name: fg_pct, type: real, header: FG%}
layout:
  cells: {css: "#stats tbody td"}
  headers: {css: "#stats thead th"}
  rows: {css: "#stats tbody tr"}
row_policy: abort
pages:
  - file: iowa.html
    identity: [{name: team, value: Iowa}, {name: season, value: "2024"}]
`

const tomlJob = `
name = "big-ten"
row_policy = "abort"

[schema]
name = "mini"

[[schema.columns]]
name = "number"
type = "integer"
header = "#"

[[schema.columns]]
name = "player"
type = "string"
kind = "name"
header = "Player"

[[schema.columns]]
name = "gs"
type = "integer"
header = "GS"
default = 0

[[schema.columns]]
name = "fg"
type = "integer"
header = "FG-FGA"
split = { delimiter = "-", left = "fgm", right = "fga" }

[[schema.columns]]
name = "fg_pct"
type = "real"
header = "FG%"

[layout.cells]
css = "#stats tbody td"

[layout.headers]
css = "#stats thead th"

[layout.rows]
css = "#stats tbody tr"

[[pages]]
file = "iowa.html"
identity = [{ name = "team", value = "Iowa" }, { name = "season", value = "2024" }]
`

const jsonJob = `{
  "name": "big-ten",
  "row_policy": "abort",
  "schema": {"name": "mini", "columns": [
    {"name": "number", "type": "integer", "header": "#"},
    {"name": "player", "type": "string", "kind": "name", "header": "Player"},
    {"name": "gs", "type": "integer", "header": "GS", "default": 0},
    {"name": "fg", "type": "integer", "header": "FG-FGA", "split": {"delimiter": "-", "left": "fgm", "right": "fga"}},
    {"name": "fg_pct", "type": "real", "header": "FG%"}
  ]},
  "layout": {
    "cells": {"css": "#stats tbody td"},
    "headers": {"css": "#stats thead th"},
    "rows": {"css": "#stats tbody tr"}
  },
  "pages": [{"file": "iowa.html", "identity": [{"name": "team", "value": "Iowa"}, {"name": "season", "value": "2024"}]}]
}`

func TestLoadJobFormats(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"job.yaml", yamlJob},
		{"job.yml", yamlJob},
		{"job.toml", tomlJob},
		{"job.json", jsonJob},
	}

	src := &memSource{pages: map[string]string{"iowa.html": iowaPage}}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			job, err := LoadJob(path)
			require.NoError(t, err)
			assert.Equal(t, "big-ten", job.Name)
			require.Len(t, job.Pages, 1)
			assert.Equal(t, "Iowa", job.Pages[0].Identity[0].Value)

			res, err := NewRunner(src).Run(context.Background(), job)
			require.NoError(t, err)
			require.NoError(t, res.Err())
			require.Equal(t, 2, res.Table.Len())
			assert.Equal(t, int64(0), res.Table.Records[1]["gs"])
			assert.Equal(t, "2024", res.Table.Records[0]["season"])
		})
	}
}

func TestLoadJobErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadJob(filepath.Join(dir, "job.ini"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = LoadJob(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = [unclosed"), 0o644))
	_, err = LoadJob(path)
	assert.Error(t, err)
}

func TestPageRef(t *testing.T) {
	assert.Equal(t, "https://example.edu/stats", Page{URL: "https://example.edu/stats"}.Ref())
	assert.Equal(t, "iowa.html", Page{File: "iowa.html"}.Ref())
}
