package records

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Options configures Open.
type Options struct {
	// Format overrides detection by extension: "auto", "jsonl", "json",
	// "yaml" or "sqlite".
	Format string

	// Driver, Table: see SQLOptions.
	Driver string
	Table  string

	// Limit caps the number of records read. Zero means no limit.
	Limit int
}

// Open opens the records at path. "-" reads standard input, which must be
// JSON Lines unless Format says otherwise.
//
// Files ending in .gz or .zst are decompressed; the extension before it
// selects the format.
func Open(path string, opts Options) (Source, error) {
	format, compression := DetectFormat(path)
	if opts.Format != "" && opts.Format != "auto" {
		format = opts.Format
	}
	if path == "-" && format == "" {
		format = KindJSONL
	}
	if format == "" {
		return nil, fmt.Errorf("%w: cannot detect format of %q", ErrUnsupportedFormat, path)
	}

	if format == KindSQLite {
		if compression != "" {
			return nil, fmt.Errorf("%w: compressed sqlite database %q", ErrUnsupportedFormat, path)
		}
		src, err := OpenSQLite(path, SQLOptions{Driver: opts.Driver, Table: opts.Table, Limit: opts.Limit})
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	var r io.ReadCloser = io.NopCloser(os.Stdin)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r = f
	}

	r, err := decompress(r, compression)
	if err != nil {
		return nil, &SourceError{Kind: format, Path: path, Cause: err}
	}

	src, err := OpenReader(r, path, format)
	if err != nil {
		r.Close()
		return nil, err
	}
	return Limit(src, opts.Limit), nil
}

// OpenReader reads records of the given format from r.
func OpenReader(r io.Reader, path, format string) (Source, error) {
	switch format {
	case KindJSONL:
		return NewJSONLSource(r, path), nil
	case KindJSON:
		return NewJSONSource(r, path), nil
	case KindYAML:
		return NewYAMLSource(r, path), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// DetectFormat guesses the format and compression ("gz", "zst" or "")
// of path from its extensions. The format is "" when unknown.
func DetectFormat(path string) (format, compression string) {
	name := strings.ToLower(filepath.Base(path))
	switch ext := filepath.Ext(name); ext {
	case ".gz", ".zst":
		compression = ext[1:]
		name = strings.TrimSuffix(name, ext)
	}

	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson":
		format = KindJSONL
	case ".json":
		format = KindJSON
	case ".yaml", ".yml":
		format = KindYAML
	case ".db", ".sqlite", ".sqlite3":
		format = KindSQLite
	}
	return format, compression
}

// decompressor closes both the decoder and the underlying file.
type decompressor struct {
	io.Reader
	closeFn func() error
}

func (d *decompressor) Close() error { return d.closeFn() }

func decompress(r io.ReadCloser, compression string) (io.ReadCloser, error) {
	switch compression {
	case "":
		return r, nil
	case "gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			r.Close()
			return nil, err
		}
		return &decompressor{Reader: zr, closeFn: func() error {
			zr.Close()
			return r.Close()
		}}, nil
	case "zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			r.Close()
			return nil, err
		}
		return &decompressor{Reader: zr, closeFn: func() error {
			zr.Close()
			return r.Close()
		}}, nil
	}
	r.Close()
	return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, compression)
}
