package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidRef = errors.New("invalid page reference")
	ErrNoSource   = errors.New("no source configured for reference")
)

// Document is a raw page as loaded from a source
type Document struct {
	Ref         string
	Body        []byte
	ContentType string
}

// Source loads a page by reference
type Source interface {
	Load(ctx context.Context, ref string) (*Document, error)
	Name() string
}

// IsURL reports whether ref is an absolute http(s) URL
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Router sends URLs to the web source and everything else to the directory source
type Router struct {
	Web   Source
	Local Source
}

// Pick returns the source responsible for ref
func (r *Router) Pick(ref string) (Source, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRef)
	}
	src := r.Local
	if IsURL(ref) {
		src = r.Web
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, ref)
	}
	return src, nil
}

// Load loads ref from the source responsible for it
func (r *Router) Load(ctx context.Context, ref string) (*Document, error) {
	src, err := r.Pick(ref)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx, ref)
}

// Name returns the router name
func (r *Router) Name() string {
	return "router"
}
