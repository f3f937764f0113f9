package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultPattern matches saved pages, compressed or not
const DefaultPattern = "**/*.{html,htm,html.gz,htm.gz,html.zst,htm.zst}"

var ErrBadPattern = errors.New("invalid glob pattern")

// Dir loads saved pages from a directory tree
type Dir struct {
	root     string
	maxBytes int64
}

// NewDir creates a directory source rooted at root
func NewDir(root string, maxBytes int64) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return &Dir{root: abs, maxBytes: maxBytes}, nil
}

// Root returns the absolute root directory
func (d *Dir) Root() string {
	return d.root
}

// Name returns "dir"
func (d *Dir) Name() string {
	return "dir"
}

// Load reads ref relative to the root. Files ending in .gz or .zst are
// decompressed.
func (d *Dir) Load(ctx context.Context, ref string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := d.resolve(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", ref, err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd %s: %w", ref, err)
		}
		defer zr.Close()
		r = zr
	}

	if d.maxBytes > 0 {
		r = io.LimitReader(r, d.maxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	if d.maxBytes > 0 && int64(len(body)) > d.maxBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", ref, d.maxBytes)
	}

	// Charset parameters are left to the parser, which reads meta tags
	mediaType, _, _ := strings.Cut(mimetype.Detect(body).String(), ";")
	return &Document{
		Ref:         ref,
		Body:        body,
		ContentType: mediaType,
	}, nil
}

func (d *Dir) resolve(ref string) (string, error) {
	rel := ref
	if filepath.IsAbs(ref) {
		r, err := filepath.Rel(d.root, ref)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidRef, ref)
		}
		rel = r
	}
	rel = filepath.Clean(rel)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s escapes %s", ErrInvalidRef, ref, d.root)
	}
	return filepath.Join(d.root, rel), nil
}

// Discover lists the files under the root whose slash-separated relative
// path matches pattern, sorted. An empty pattern means DefaultPattern.
func (d *Dir) Discover(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, d.root, func(p string, de os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || de.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(pattern, rel); ok {
			mu.Lock()
			matches = append(matches, rel)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover in %s: %w", d.root, err)
	}

	sort.Strings(matches)
	return matches, nil
}
