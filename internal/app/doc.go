// Package app wires the shared statscrape components from configuration.
//
// Both entry points build one App: the page fetcher (resty, retries, rate
// limit and per-host circuit breakers), a source router over the web and an
// optional pages directory, and a pipeline runner carrying the configured row
// policy, concurrency, metrics and tracer.
//
// Example Usage:
//
//	a, err := app.New(config.LoadOrDefault())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//	res, err := a.Runner.Run(ctx, job)
package app
