package source

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/statscrape/internal/infrastructure/config"
	"github.com/GriffinCanCode/statscrape/internal/providers/http/client"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html><body><table><tr><td>22</td></tr></table></body></html>`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func gzipped(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, data string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(data), nil)
}

func pageTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2023", "iowa.html"), []byte(page))
	writeFile(t, filepath.Join(root, "2024", "iowa.html.gz"), gzipped(t, page))
	writeFile(t, filepath.Join(root, "2024", "uconn.htm.zst"), zstded(t, page))
	writeFile(t, filepath.Join(root, "2024", "notes.txt"), []byte("not a page"))
	return root
}

func TestDirLoad(t *testing.T) {
	root := pageTree(t)
	dir, err := NewDir(root, 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  string
	}{
		{"plain", "2023/iowa.html"},
		{"gzip", "2024/iowa.html.gz"},
		{"zstd", "2024/uconn.htm.zst"},
		{"absolute inside root", filepath.Join(root, "2023", "iowa.html")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := dir.Load(context.Background(), tt.ref)
			require.NoError(t, err)
			assert.Equal(t, page, string(doc.Body))
			assert.Equal(t, tt.ref, doc.Ref)
			assert.Equal(t, "text/html", doc.ContentType)
		})
	}
}

func TestDirLoadErrors(t *testing.T) {
	root := pageTree(t)
	dir, err := NewDir(root, 0)
	require.NoError(t, err)

	_, err = dir.Load(context.Background(), "../outside.html")
	assert.ErrorIs(t, err, ErrInvalidRef)

	_, err = dir.Load(context.Background(), "2023/missing.html")
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dir.Load(ctx, "2023/iowa.html")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirLoadSizeLimit(t *testing.T) {
	root := pageTree(t)
	dir, err := NewDir(root, 10)
	require.NoError(t, err)

	_, err = dir.Load(context.Background(), "2024/iowa.html.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 10 bytes")
}

func TestNewDirRejectsFile(t *testing.T) {
	root := pageTree(t)
	_, err := NewDir(filepath.Join(root, "2023", "iowa.html"), 0)
	assert.Error(t, err)

	_, err = NewDir(filepath.Join(root, "nope"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDirDiscover(t *testing.T) {
	dir, err := NewDir(pageTree(t), 0)
	require.NoError(t, err)

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"default pattern", "", []string{"2023/iowa.html", "2024/iowa.html.gz", "2024/uconn.htm.zst"}},
		{"one season", "2024/**", []string{"2024/iowa.html.gz", "2024/notes.txt", "2024/uconn.htm.zst"}},
		{"one team", "**/iowa.*", []string{"2023/iowa.html", "2024/iowa.html.gz"}},
		{"no match", "**/*.pdf", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.Discover(context.Background(), tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirDiscoverBadPattern(t *testing.T) {
	dir, err := NewDir(pageTree(t), 0)
	require.NoError(t, err)

	_, err = dir.Discover(context.Background(), "2024/[")
	assert.ErrorIs(t, err, ErrBadPattern)
}

func TestHTTPLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	cfg := config.Default().Fetch
	cfg.Retries = 0
	cfg.RPS = 0
	cfg.BlockPrivate = false
	src := NewHTTP(client.NewClient(cfg))

	doc, err := src.Load(context.Background(), srv.URL+"/stats")
	require.NoError(t, err)
	assert.Equal(t, page, string(doc.Body))
	assert.Equal(t, "text/html; charset=iso-8859-1", doc.ContentType)

	_, err = src.Load(context.Background(), "stats/iowa.html")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

type stubSource struct{ name string }

func (s stubSource) Load(_ context.Context, ref string) (*Document, error) {
	return &Document{Ref: ref, Body: []byte(s.name)}, nil
}

func (s stubSource) Name() string { return s.name }

func TestRouter(t *testing.T) {
	r := &Router{Web: stubSource{"http"}, Local: stubSource{"dir"}}

	tests := []struct {
		ref  string
		want string
	}{
		{"https://example.edu/stats", "http"},
		{"http://example.edu/stats", "http"},
		{"2024/iowa.html", "dir"},
		{"ftp://example.edu/stats", "dir"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			doc, err := r.Load(context.Background(), tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(doc.Body))
		})
	}

	_, err := r.Load(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidRef)

	_, err = (&Router{Local: stubSource{"dir"}}).Load(context.Background(), "https://example.edu")
	assert.ErrorIs(t, err, ErrNoSource)
}
