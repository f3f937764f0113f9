package source

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/statscrape/internal/providers/http/client"
)

// HTTP loads pages from the web
type HTTP struct {
	client *client.Client
}

// NewHTTP wraps a page fetching client
func NewHTTP(c *client.Client) *HTTP {
	return &HTTP{client: c}
}

// Load fetches ref, which must be an absolute http(s) URL
func (h *HTTP) Load(ctx context.Context, ref string) (*Document, error) {
	if !IsURL(ref) {
		return nil, fmt.Errorf("%w: %q is not an http(s) url", ErrInvalidRef, ref)
	}
	page, err := h.client.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &Document{Ref: ref, Body: page.Body, ContentType: page.ContentType}, nil
}

// Name returns "http"
func (h *HTTP) Name() string {
	return "http"
}
