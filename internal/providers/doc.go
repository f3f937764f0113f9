// Package providers groups the adapters that bring pages into the pipeline.
//
// Available Providers:
//   - http/client: Polite page fetching with rate limiting, retries and a circuit breaker
//   - source: Page loading from the web or a directory of saved pages
//   - scraper: HTML decoding and cell extraction by CSS or XPath selectors
//
// Example Usage:
//
//	fetcher := client.NewClient(cfg.Fetch)
//	router := &source.Router{Web: source.NewHTTP(fetcher)}
//	doc, err := router.Load(ctx, "https://example.edu/stats/2024")
//	root, err := scraper.NewParser().Parse(doc.Body, doc.ContentType)
package providers
