package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/statscrape/internal/providers/scraper"
	"github.com/GriffinCanCode/statscrape/internal/providers/source"
	"github.com/GriffinCanCode/statscrape/internal/shared/id"
	"go.uber.org/zap"
)

// DefaultConcurrency bounds page fan-out when no option is given
const DefaultConcurrency = 4

// ErrNoRows reports a row selector that matched nothing on a page with cells
var ErrNoRows = errors.New("row selector matched no rows")

// Stage names the step a page failed at
type Stage string

const (
	StageLoad        Stage = "load"
	StageParse       Stage = "parse"
	StageExtract     Stage = "extract"
	StageReconstruct Stage = "reconstruct"
	StageMerge       Stage = "merge"
)

// PageError is a failure of one page
type PageError struct {
	Ref   string
	Stage Stage
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %s: %v", e.Ref, e.Stage, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// PageResult is the outcome of one page
type PageResult struct {
	ID       id.PageID
	Ref      string
	Identity table.Identity
	Records  int
	Skipped  []*table.RowError
	Warnings []table.HeaderMismatch
	Err      error
	Duration time.Duration

	table *table.Table
}

// Result is the outcome of a run
type Result struct {
	RunID  id.RunID
	Job    string
	Schema *table.Schema
	Table  *table.Table
	Pages  []PageResult
	// Status is ok, partial, failed or cancelled
	Status   string
	Started  time.Time
	Duration time.Duration
}

// Failed returns the pages that produced no table
func (r *Result) Failed() []PageResult {
	var failed []PageResult
	for _, p := range r.Pages {
		if p.Err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// Err joins every page error, nil when all pages succeeded
func (r *Result) Err() error {
	var errs []error
	for _, p := range r.Failed() {
		errs = append(errs, p.Err)
	}
	return errors.Join(errs...)
}

// Runner executes jobs. It is safe for concurrent use.
type Runner struct {
	source      source.Source
	parser      *scraper.Parser
	logger      *zap.Logger
	metrics     *monitoring.Metrics
	tracer      *tracing.Tracer
	concurrency int
	policy      table.RowPolicy
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the run logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records page and reconstruction metrics
func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracer records a span per run and per page
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithConcurrency bounds how many pages are processed at once
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithParser replaces the default HTML parser
func WithParser(p *scraper.Parser) Option {
	return func(r *Runner) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithRowPolicy sets the policy for jobs that do not choose one
func WithRowPolicy(p table.RowPolicy) Option {
	return func(r *Runner) {
		r.policy = p
	}
}

// NewRunner creates a runner loading pages from src
func NewRunner(src source.Source, opts ...Option) *Runner {
	r := &Runner{
		source:      src,
		parser:      scraper.NewParser(),
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
		policy:      table.AbortPage,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every page of job. Page failures are reported in the
// result and do not stop other pages; the merged table keeps job page
// order. The returned error is only set for an invalid job or a cancelled
// context.
func (r *Runner) Run(ctx context.Context, job *Job) (*Result, error) {
	plan, err := job.Compile()
	if err != nil {
		return nil, err
	}
	return r.RunPlan(ctx, plan)
}

// RunPlan runs an already compiled job
func (r *Runner) RunPlan(ctx context.Context, plan *Plan) (*Result, error) {
	res := &Result{
		RunID:   id.NewRunID(),
		Job:     plan.Job.Name,
		Schema:  plan.Schema,
		Pages:   make([]PageResult, len(plan.Job.Pages)),
		Started: time.Now(),
	}
	policy := plan.Policy
	if policy == "" {
		policy = r.policy
	}

	log := r.logger.With(
		zap.String("run_id", res.RunID.String()),
		zap.String("job", plan.Job.Name),
	)
	span, ctx := r.tracer.StartSpan(ctx, "run")
	span.SetTag("run_id", res.RunID.String())
	span.SetTag("job", plan.Job.Name)

	log.Info("Starting run",
		zap.Int("pages", len(plan.Job.Pages)),
		zap.String("schema", plan.Schema.Name),
		zap.String("row_policy", string(policy)),
	)

	work := make(chan int, len(plan.Job.Pages))
	for i := range plan.Job.Pages {
		work <- i
	}
	close(work)

	workers := r.concurrency
	if workers > len(plan.Job.Pages) {
		workers = len(plan.Job.Pages)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				// each worker owns distinct indexes of res.Pages
				res.Pages[i] = r.runPage(ctx, log, plan, policy, plan.Job.Pages[i])
			}
		}()
	}
	wg.Wait()

	res.Table = r.merge(plan, res.Pages)
	res.Duration = time.Since(res.Started)

	status := "ok"
	switch failed := len(res.Failed()); {
	case ctx.Err() != nil:
		status = "cancelled"
	case failed == len(res.Pages):
		status = "failed"
	case failed > 0:
		status = "partial"
	}
	res.Status = status
	r.metrics.RecordJob(status, res.Duration)

	log.Info("Run finished",
		zap.String("status", status),
		zap.Int("records", res.Table.Len()),
		zap.Int("failed_pages", len(res.Failed())),
		zap.Duration("duration", res.Duration),
	)
	span.SetTag("status", status)
	r.tracer.End(span, ctx.Err())

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) runPage(ctx context.Context, log *zap.Logger, plan *Plan, policy table.RowPolicy, page Page) PageResult {
	pr := PageResult{
		ID:       id.NewPageID(),
		Ref:      page.Ref(),
		Identity: page.Identity,
	}
	start := time.Now()

	r.metrics.PageStarted()
	defer r.metrics.PageDone()

	log = log.With(zap.String("page_id", pr.ID.String()), zap.String("ref", pr.Ref))
	span, ctx := r.tracer.StartSpan(ctx, "page")
	span.SetTag("page_id", pr.ID.String())
	span.SetTag("ref", pr.Ref)

	t, err := r.processPage(ctx, log, plan, policy, pr.Ref, page.Identity)
	pr.Duration = time.Since(start)
	r.tracer.End(span, err)

	if err != nil {
		pr.Err = err
		log.Error("Page failed", zap.Error(err), zap.Duration("duration", pr.Duration))
		return pr
	}

	pr.table = t
	pr.Records = t.Len()
	pr.Skipped = t.Skipped
	pr.Warnings = t.Warnings
	log.Debug("Page processed",
		zap.Int("records", pr.Records),
		zap.Int("skipped", len(pr.Skipped)),
		zap.Duration("duration", pr.Duration),
	)
	return pr
}

func (r *Runner) processPage(ctx context.Context, log *zap.Logger, plan *Plan, policy table.RowPolicy, ref string, identity table.Identity) (*table.Table, error) {
	fail := func(stage Stage, err error) error {
		return &PageError{Ref: ref, Stage: stage, Err: err}
	}

	fetchTimer := monitoring.NewTimer(r.metrics)
	doc, err := r.source.Load(ctx, ref)
	fetchTimer.StopFetch(r.sourceName(ref), err)
	if err != nil {
		return nil, fail(StageLoad, err)
	}

	timer := monitoring.NewTimer(r.metrics)
	schemaName := plan.Schema.Name

	parsed, err := r.parser.Parse(doc.Body, doc.ContentType)
	if err != nil {
		timer.StopReconstruct(schemaName, 0, 0, 0, err)
		return nil, fail(StageParse, err)
	}

	ext, err := scraper.Extract(parsed, plan.Layout)
	if err == nil {
		err = checkRowCount(ext, plan)
	}
	if err != nil {
		timer.StopReconstruct(schemaName, 0, 0, 0, err)
		return nil, fail(StageExtract, err)
	}

	rec := table.NewReconstructor(table.WithRowPolicy(policy), table.WithLogger(log))
	t, err := rec.Reconstruct(ext.Cells, ext.Headers, plan.Schema, identity)
	if err != nil {
		timer.StopReconstruct(schemaName, 0, 0, 0, err)
		return nil, fail(StageReconstruct, err)
	}
	timer.StopReconstruct(schemaName, t.Len(), len(t.Skipped), len(t.Warnings), nil)
	return t, nil
}

// checkRowCount compares the cell count with the rows found by the layout's
// row selector, when it has one
func checkRowCount(ext *scraper.Extraction, plan *Plan) error {
	if plan.Layout.Rows == nil {
		return nil
	}
	if ext.Rows == 0 {
		if len(ext.Cells) > 0 {
			return fmt.Errorf("%w: %d cells extracted", ErrNoRows, len(ext.Cells))
		}
		return nil
	}
	return table.CheckRows(ext.Cells, plan.Schema.FlatCount(), ext.Rows)
}

func (r *Runner) sourceName(ref string) string {
	if router, ok := r.source.(*source.Router); ok {
		if src, err := router.Pick(ref); err == nil {
			return src.Name()
		}
	}
	return r.source.Name()
}

// merge concatenates successful page tables in job page order
func (r *Runner) merge(plan *Plan, pages []PageResult) *table.Table {
	merged := table.NewTable(plan.Schema, plan.Job.Pages[0].Identity)
	for i := range pages {
		if pages[i].table == nil {
			continue
		}
		if err := merged.Append(pages[i].table); err != nil {
			pages[i].Err = &PageError{Ref: pages[i].Ref, Stage: StageMerge, Err: err}
			pages[i].Records = 0
		}
		pages[i].table = nil
	}
	return merged
}
