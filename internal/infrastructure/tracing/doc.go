/*
Package tracing provides lightweight request and pipeline tracing.

Spans are created per API request and per pipeline page, carry a trace ID
shared by everything done on behalf of one request or run, and are logged
through zap by a buffered background collector when submitted.

# Usage

	tracer := tracing.New("statscrape", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "page")
	span.SetTag("ref", ref)
	defer tracer.End(span, err)

# Propagation

X-Trace-ID and X-Span-ID request headers continue an existing trace; the
response always carries the IDs in use. The page fetcher sends the trace ID
upstream as X-Trace-ID.

A nil *Tracer is valid: spans are still created for context propagation
but never submitted.
*/
package tracing
