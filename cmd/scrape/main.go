package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/statscrape/internal/app"
	"github.com/GriffinCanCode/statscrape/internal/export"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/config"
	"github.com/GriffinCanCode/statscrape/internal/pipeline"
	"github.com/GriffinCanCode/statscrape/internal/stats"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.LoadOrDefault()

	jobPath := flag.String("job", "", "Job file (.yaml, .yml, .toml or .json)")
	out := flag.String("out", "", "Output file; format and compression follow the extension. Empty writes JSON to stdout")
	format := flag.String("format", string(export.JSON), "Format for stdout output")
	dir := flag.String("dir", cfg.Pipeline.PagesDir, "Directory of saved pages")
	glob := flag.String("glob", "", "Run every saved page under -dir matching this pattern instead of the job's pages")
	policy := flag.String("policy", "", "Row policy override: abort or skip")
	summary := flag.Bool("summary", false, "Print per-column statistics to stderr")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	if *jobPath == "" {
		fmt.Fprintln(os.Stderr, "scrape: -job is required")
		flag.Usage()
		return 2
	}

	cfg.Pipeline.PagesDir = *dir
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer a.Close()
	log := a.Logger.Component("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job, err := pipeline.LoadJob(*jobPath)
	if err != nil {
		log.Error("Failed to load job", zap.Error(err))
		return 1
	}
	if *policy != "" {
		job.RowPolicy = *policy
	}

	if *glob != "" {
		if err := discoverPages(ctx, a, job, *glob); err != nil {
			log.Error("Failed to discover pages", zap.Error(err))
			return 1
		}
	}

	res, err := a.Runner.Run(ctx, job)
	if err != nil && res == nil {
		log.Error("Job rejected", zap.String("job", job.Name), zap.Error(err))
		return 1
	}

	for _, p := range res.Failed() {
		log.Warn("Page failed", zap.String("ref", p.Ref), zap.Error(p.Err))
	}

	if err := writeTable(res, *out, *format); err != nil {
		log.Error("Failed to write table", zap.Error(err))
		return 1
	}

	if *summary {
		if err := printSummary(res); err != nil {
			log.Error("Failed to write summary", zap.Error(err))
			return 1
		}
	}

	log.Info("Job finished",
		zap.String("job", res.Job),
		zap.String("run_id", res.RunID.String()),
		zap.String("status", res.Status),
		zap.Int("pages", len(res.Pages)),
		zap.Int("records", res.Table.Len()),
		zap.Duration("duration", res.Duration),
	)

	switch res.Status {
	case "ok":
		return 0
	case "partial":
		return 3
	default:
		return 1
	}
}

// discoverPages replaces the job's pages with every saved page under the
// pages directory matching pattern. Each page takes the identity of the
// job's first page.
func discoverPages(ctx context.Context, a *app.App, job *pipeline.Job, pattern string) error {
	if a.Local == nil {
		return errors.New("-glob needs a pages directory (-dir)")
	}
	files, err := a.Local.Discover(ctx, pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no pages under %s match %q", a.Local.Root(), pattern)
	}

	var template pipeline.Page
	if len(job.Pages) > 0 {
		template = job.Pages[0]
	}
	pages := make([]pipeline.Page, 0, len(files))
	for _, f := range files {
		pages = append(pages, pipeline.Page{File: f, Identity: template.Identity})
	}
	job.Pages = pages
	return nil
}

func writeTable(res *pipeline.Result, out, format string) error {
	if out != "" {
		return export.WriteFile(out, res.Table)
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(os.Stdout, res.Table, f, export.None)
}

func printSummary(res *pipeline.Result) error {
	summaries := stats.Describe(res.Table)
	for i := range summaries {
		summaries[i] = summaries[i].Round(3)
	}
	data, err := sonic.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stderr, string(data))
	return err
}
