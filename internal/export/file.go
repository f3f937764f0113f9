package export

import (
	"fmt"
	"io"
	"os"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compress wraps w for the given compression. Closing the result flushes
// the compressor but not w.
func Compress(w io.Writer, comp Compression) (io.WriteCloser, error) {
	switch comp {
	case None:
		return nopCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	}
	return nil, fmt.Errorf("unknown compression %q", comp)
}

// Decompress wraps r for the given compression
func Decompress(r io.Reader, comp Compression) (io.ReadCloser, error) {
	switch comp {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return nil, fmt.Errorf("unknown compression %q", comp)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Write encodes t in format with optional compression
func Write(w io.Writer, t *table.Table, format Format, comp Compression) error {
	sink, err := SinkFor(format)
	if err != nil {
		return err
	}
	cw, err := Compress(w, comp)
	if err != nil {
		return err
	}
	if err := sink.Write(cw, t); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// WriteFile writes t to path, choosing format and compression from the
// extension, e.g. "out.json" or "out.csv.gz"
func WriteFile(path string, t *table.Table) (err error) {
	format, comp, err := FormatFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := Write(f, t, format, comp); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadCSVFile reads a CSV export, decompressing .gz and .zst files
func ReadCSVFile(path string, schema *table.Schema) (*table.Table, error) {
	format, comp, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	if format != CSV {
		return nil, fmt.Errorf("%w: %s is not csv", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := Decompress(f, comp)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	return ReadCSV(r, schema)
}
